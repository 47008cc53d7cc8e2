// Command gridtopo is the topology service placeholder daemon
// (spec.md §1): it tracks a fixed, YAML-configured set of regions and
// serves a tiny instruction set (ListRegions, Terminate) over the same
// length-delimited framing gridowner uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/khklau/gridstore/common/go/logging"
	"github.com/khklau/gridstore/common/go/xcmd"
	"github.com/khklau/gridstore/topology"
)

// Cmd is the command line arguments.
type Cmd struct {
	ConfigPath string
	Port       int
}

var cmd Cmd

var rootCmd = &cobra.Command{
	Use:   "gridtopo",
	Short: "Serve the configured set of gridstore regions",
	Run: func(_ *cobra.Command, _ []string) {
		if err := run(cmd); err != nil {
			var interrupted xcmd.Interrupted
			if errors.As(err, &interrupted) {
				return
			}
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "path to the topology configuration file (required)")
	rootCmd.MarkFlagRequired("config")
	rootCmd.Flags().IntVar(&cmd.Port, "port", 7832, "topology service listen port")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd Cmd) error {
	log, _, err := logging.Init(&logging.Config{Level: zapcore.InfoLevel})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	cfg, err := topology.LoadConfig(cmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load topology config: %w", err)
	}

	service := topology.NewService(cfg)
	log.Infow("loaded topology", "regions", len(cfg.Regions))

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cmd.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cmd.Port, err)
	}
	srv := topology.NewServer(service, log.With("component", "topology"))

	ctx := context.Background()
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return srv.Serve(ctx, ln)
	})
	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infof("caught signal: %v", err)
		return err
	})

	return wg.Wait()
}
