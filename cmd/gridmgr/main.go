// Command gridmgr is the manager placeholder daemon (spec.md §1): it
// loads configuration, attaches to an existing region as a reader, logs
// the store's About once, and then waits for SIGINT/SIGTERM; it serves no
// requests. It never creates a region and never writes to one.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/khklau/gridstore/common/go/logging"
	"github.com/khklau/gridstore/common/go/xcmd"
	"github.com/khklau/gridstore/griddb"
	"github.com/khklau/gridstore/internal/config"
	"github.com/khklau/gridstore/region"
)

// Cmd is the command line arguments.
type Cmd struct {
	IPC        string
	Name       string
	ConfigPath string
}

var cmd Cmd

var rootCmd = &cobra.Command{
	Use:   "gridmgr <ipc> <name>",
	Short: "Attach as a read-only manager to a gridstore region",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		cmd.IPC = args[0]
		cmd.Name = args[1]
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
	rootCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "path to the configuration file")
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

	cfg, err := config.LoadConfig(cmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	shared := cmd.IPC == "shm"
	store, err := griddb.Open(cmd.Name+".region", uint64(cfg.RegionSize), region.RoleReader, shared, log.With("component", "griddb"))
	if err != nil {
		return fmt.Errorf("failed to attach to region %q: %w", cmd.Name, err)
	}
	defer store.Close()

	owner := store.OpenOwner()
	log.Infow("attached to region", "about", owner.About())

	ctx := context.Background()
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infof("caught signal: %v", err)
		return err
	})
	return wg.Wait()
}
