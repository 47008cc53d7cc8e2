// Command gridowner owns a backing region (file-mapped or POSIX shared
// memory): it creates or attaches the MVCC store and append-only log,
// serves the request/reply instruction set, and runs the periodic owner
// maintenance loop (collect_garbage, flush).
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/khklau/gridstore/common/go/logging"
	"github.com/khklau/gridstore/common/go/xcmd"
	"github.com/khklau/gridstore/griddb"
	"github.com/khklau/gridstore/gridlog"
	"github.com/khklau/gridstore/gridsvc"
	"github.com/khklau/gridstore/region"
)

// Cmd is the command line arguments.
type Cmd struct {
	IPC         string
	Name        string
	Port        int
	Size        datasize.ByteSize
	LogCapacity uint64
	GCInterval  time.Duration
}

var cmd Cmd

var rootCmd = &cobra.Command{
	Use:   "gridowner <ipc> <name>",
	Short: "Own and serve a gridstore MVCC region and its append-only log",
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
	cmd.Size = 64 * datasize.MB
	rootCmd.Flags().IntVar(&cmd.Port, "port", 7831, "request/reply listen port")
	rootCmd.Flags().Var(byteSizeFlag{&cmd.Size}, "size", "region size, e.g. 64MB")
	rootCmd.Flags().Uint64Var(&cmd.LogCapacity, "log-capacity", 1<<16, "append-only log entry capacity")
	rootCmd.Flags().DurationVar(&cmd.GCInterval, "gc-interval", 30*time.Second, "owner maintenance loop interval")
}

// byteSizeFlag adapts datasize.ByteSize to pflag.Value, since the
// library itself only implements encoding.TextUnmarshaler.
type byteSizeFlag struct {
	v *datasize.ByteSize
}

func (f byteSizeFlag) String() string {
	if f.v == nil {
		return ""
	}
	return f.v.String()
}

func (f byteSizeFlag) Set(s string) error {
	return f.v.UnmarshalText([]byte(s))
}

func (byteSizeFlag) Type() string { return "byteSize" }

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

	shared, err := parseIPC(cmd.IPC)
	if err != nil {
		return err
	}

	store, err := griddb.Open(cmd.Name+".region", uint64(cmd.Size), region.RoleOwner, shared, log.With("component", "griddb"))
	if err != nil {
		return fmt.Errorf("failed to open region %q: %w", cmd.Name, err)
	}
	defer store.Close()

	appendLog, err := gridlog.Open(cmd.Name+".log", cmd.LogCapacity, region.RoleOwner, shared, log.With("component", "gridlog"))
	if err != nil {
		return fmt.Errorf("failed to open log %q: %w", cmd.Name, err)
	}
	defer appendLog.Close()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cmd.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cmd.Port, err)
	}

	srv := gridsvc.New(store, log.With("component", "gridsvc"))

	ctx := context.Background()
	wg, ctx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		return srv.Serve(ctx, ln)
	})
	wg.Go(func() error {
		return ownerMaintenanceLoop(ctx, store, cmd.GCInterval, log)
	})
	wg.Go(func() error {
		err := xcmd.WaitInterrupted(ctx)
		log.Infof("caught signal: %v", err)
		return err
	})

	return wg.Wait()
}

// ownerMaintenanceLoop periodically walks the key space reclaiming
// versions no reader can still observe, and flushes the backing region.
func ownerMaintenanceLoop(ctx context.Context, store *griddb.Store, interval time.Duration, log *zap.SugaredLogger) error {
	owner := store.OpenOwner()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var resume griddb.Key
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			next, reclaimed, more := owner.CollectGarbageBatch(resume, 256)
			if reclaimed > 0 {
				log.Debugw("collected garbage", "reclaimed", reclaimed, "more", more)
			}
			resume = next
			if err := owner.Flush(); err != nil {
				log.Warnw("flush failed", "error", err)
			}
		}
	}
}

func parseIPC(ipc string) (shared bool, err error) {
	switch ipc {
	case "shm":
		return true, nil
	case "mmap":
		return false, nil
	default:
		return false, fmt.Errorf("unknown ipc kind %q, want shm or mmap", ipc)
	}
}
