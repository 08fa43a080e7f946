package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"go.dita.xyz/dita"
	"go.dita.xyz/dita/cmd/internal/ditaflag"
	"go.dita.xyz/dita/fileutil"
	"go.dita.xyz/dita/notifications"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <path>...\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

const numWorkers = 4

func main() {
	defer ditaflag.ExitError()
	var (
		cfg      = ditaflag.Config()
		interval = flag.Duration("interval", 0, "Max duration a release should be left unsynced")
		dryRun   = flag.Bool("dry-run", false, "Do a dry run of imports")
	)
	ditaflag.Parse()
	ditaflag.DefaultClient()

	// walk the whole root dir by default, or some user provided dirs
	var dirs = []string{cfg.PathFormat.Root()}
	if flag.NArg() > 0 {
		dirs = flag.Args()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	leaves := make(chan string)

	var group errgroup.Group
	group.Go(func() error {
		defer close(leaves)
		for _, d := range dirs {
			d, _ = filepath.Abs(d)
			err := fileutil.WalkLeaves(d, func(path string, _ fs.DirEntry) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case leaves <- path:
					return nil
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("walking paths", "err", err)
			}
		}
		return nil
	})

	operation := dita.Move{DryRun: *dryRun}

	var knownDests sync.Map
	var doneN, errN atomic.Uint32
	for range numWorkers {
		group.Go(func() error {
			for dir := range leaves {
				if err := processDir(ctx, &knownDests, *interval, cfg, operation, dir); err != nil {
					slog.ErrorContext(ctx, "processing dir", "dir", dir, "err", err)
					errN.Add(1)
					continue
				}
				doneN.Add(1)
			}
			return nil
		})
	}

	_ = group.Wait()

	slog := slog.With("took", time.Since(start), "dirs", doneN.Load(), "errs", errN.Load())
	if errN.Load() > 0 {
		cfg.Notifications.Send(ctx, notifications.SyncError, "sync finished with errors")
		slog.Error("sync finished with errors")
		return
	}
	cfg.Notifications.Send(ctx, notifications.SyncComplete, "sync finished")
	slog.Info("sync finished")
}

func processDir(
	ctx context.Context,
	knownDests *sync.Map, interval time.Duration,
	cfg *dita.Config,
	op dita.FileSystemOperation, srcDir string,
) error {
	{
		// make sure we don't try process a dir that was created while walking
		srcDir, _ := filepath.Abs(srcDir)
		if _, ok := knownDests.Load(srcDir); ok {
			return nil
		}
	}

	if interval > 0 {
		info, err := os.Stat(srcDir)
		if err != nil {
			return fmt.Errorf("stat dir: %w", err)
		}
		if time.Since(info.ModTime()) < interval {
			return nil
		}
	}

	r, err := dita.ProcessDir(ctx, cfg, op, srcDir, dita.HighScore, "")
	if err != nil {
		return err
	}
	{
		destDir, _ := filepath.Abs(r.DestDir)
		knownDests.Store(destDir, nil)
	}

	if err := os.Chtimes(srcDir, time.Time{}, time.Now()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("chtimes %q: %v", srcDir, err)
	}

	slog.InfoContext(ctx, "processed dir", "dir", srcDir)
	return nil
}
