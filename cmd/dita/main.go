package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.senan.xyz/table/table"

	"go.dita.xyz/dita"
	"go.dita.xyz/dita/cmd/internal/ditaflag"
	"go.dita.xyz/dita/notifications"
	"go.dita.xyz/dita/store"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] move [-dry-run] [-yes] [-release <id/url>] <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] copy [-dry-run] [-yes] [-release <id/url>] <path>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

var dmp = diffmatchpatch.New()

func main() {
	defer ditaflag.ExitError()
	var (
		cfg    = ditaflag.Config()
		dbPath = ditaflag.DBPath()
	)
	ditaflag.Parse()
	ditaflag.DefaultClient()

	if flag.NArg() == 0 {
		slog.Error("no command provided")
		return
	}

	command := flag.Arg(0)
	if _, err := ditaflag.OperationByName(command, false); err != nil {
		slog.Error("unknown command", "command", command)
		return
	}

	subflag := flag.NewFlagSet(command, flag.ExitOnError)
	dryRun := subflag.Bool("dry-run", false, "Do a dry run of imports")
	yes := subflag.Bool("yes", false, "Use the found release anyway despite a low score")
	useReleaseID := subflag.String("release", "", "Overwrite matched Discogs release with an id or url")
	subflag.Parse(flag.Args()[1:])

	op, _ := ditaflag.OperationByName(command, *dryRun)

	dir := subflag.Arg(0)
	if dir == "" {
		slog.Error("need a dir")
		return
	}

	if *dbPath != "" {
		db, err := store.New(*dbPath)
		if err != nil {
			slog.Error("open database", "err", err)
			return
		}
		defer db.Close()
		cfg.Store = db
	}

	cond := dita.HighScoreOrID
	if *yes {
		cond = dita.Always
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r, err := dita.ProcessDir(ctx, cfg, op, dir, cond, *useReleaseID)
	if err != nil && r == nil {
		slog.Error("processing dir", "dir", dir, "err", err)
		return
	}

	slog.Info("matched",
		"score", fmt.Sprintf("%.2f%%", r.Score),
		"url", fmt.Sprintf("https://www.discogs.com/release/%d", r.Release.DiscogsID))

	t := table.NewStringWriter()
	for _, d := range r.Diff {
		fmt.Fprintf(t, "%s\t%s\t%s\n", d.Field, fmtDiff(d.Before), fmtDiff(d.After))
	}
	for _, row := range strings.Split(strings.TrimRight(t.String(), "\n"), "\n") {
		fmt.Fprintln(os.Stderr, row)
	}

	for _, link := range r.ResearchLinks {
		slog.Info("research link", "name", link.Name, "url", link.URL)
	}

	if err != nil {
		if errors.Is(err, dita.ErrScoreTooLow) || errors.Is(err, dita.ErrDurationMismatch) {
			cfg.Notifications.Sendf(ctx, notifications.NeedsInput, "%s needs manual review: %v", dir, err)
			slog.Error("not importing", "err", err)
			return
		}
		slog.Error("processing dir", "dir", dir, "err", err)
		return
	}

	if r.Queued > 0 {
		slog.Info("queued new albums", "n", r.Queued)
	}
	cfg.Notifications.Sendf(ctx, notifications.Complete, "imported %s", r.DestDir)
}

func fmtDiff(diff []diffmatchpatch.Diff) string {
	if d := dmp.DiffPrettyText(diff); d != "" {
		return d
	}
	return "[empty]"
}
