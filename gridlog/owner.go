package gridlog

// About reports a log's identity and occupancy, mirroring
// griddb.OwnerHandle.About for the log's own region kind.
type About struct {
	Tag      string
	Version  string
	Length   uint64
	Capacity uint64
}

// About returns the log's current identity and occupancy.
func (l *Log) About() About {
	return About{
		Tag:      StoreTag,
		Version:  l.region.Header.Version.String(),
		Length:   l.Len(),
		Capacity: l.Capacity(),
	}
}
