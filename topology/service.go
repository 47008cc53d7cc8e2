package topology

import (
	"github.com/khklau/gridstore/topology/regionset"
)

// Service answers the fixed topology instruction set (ListRegions,
// Terminate) against a static, config-loaded region list.
type Service struct {
	names map[uint32]string
	known regionset.RegionSet
}

// NewService builds a service from a loaded Config.
func NewService(cfg Config) *Service {
	s := &Service{names: make(map[uint32]string, len(cfg.Regions))}
	for _, r := range cfg.Regions {
		s.names[r.ID] = r.Name
		if r.ID < 32 {
			s.known |= regionset.Of(r.ID)
		}
	}
	return s
}

// RegionInfo is one entry in a ListRegions reply.
type RegionInfo struct {
	ID   uint32
	Name string
}

// ListRegions returns every configured region with an id below 32,
// ascending by id; regions with larger ids are not listed.
func (s *Service) ListRegions() []RegionInfo {
	out := make([]RegionInfo, 0, len(s.names))
	for id := range s.known.Iter() {
		out = append(out, RegionInfo{ID: id, Name: s.names[id]})
	}
	return out
}
