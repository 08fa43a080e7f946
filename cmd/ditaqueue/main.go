package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"
	"time"

	"github.com/araddon/dateparse"
	"go.senan.xyz/natcmp"

	"go.dita.xyz/dita/cmd/internal/ditaflag"
	"go.dita.xyz/dita/store"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] add <artist/album>...\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] list [-sort] [-since <date>]\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] pop\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] sample <n>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] len\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer ditaflag.ExitError()
	dbPath := ditaflag.DBPath()
	ditaflag.Parse()

	db, err := store.New(*dbPath)
	if err != nil {
		slog.Error("open database", "err", err)
		return
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if flag.NArg() == 0 {
		flag.Usage()
		slog.Error("no command provided")
		return
	}

	command := flag.Arg(0)
	rest := flag.Args()[1:]

	if err := run(ctx, db, command, rest); err != nil {
		slog.Error("run", "command", command, "err", err)
	}
}

func run(ctx context.Context, db *store.Store, command string, args []string) error {
	switch command {
	case "add":
		if len(args) == 0 {
			return fmt.Errorf("need at least one artist/album path")
		}
		n, err := db.QueueAdd(ctx, args...)
		if err != nil {
			return err
		}
		fmt.Printf("%d added\n", n)
		return nil

	case "list":
		subflag := flag.NewFlagSet(command, flag.ExitOnError)
		sortNat := subflag.Bool("sort", false, "Sort naturally instead of by queue order")
		sinceRaw := subflag.String("since", "", "Only show entries added after this date")
		subflag.Parse(args)

		var since time.Time
		if *sinceRaw != "" {
			var err error
			if since, err = dateparse.ParseAny(*sinceRaw); err != nil {
				return fmt.Errorf("parse since: %w", err)
			}
		}

		entries, err := db.Queue(ctx)
		if err != nil {
			return err
		}
		if *sortNat {
			slices.SortFunc(entries, func(a, b store.QueueEntry) int {
				return natcmp.Compare(a.Relpath, b.Relpath)
			})
		}
		for _, e := range entries {
			if !since.IsZero() && e.Added.Before(since) {
				continue
			}
			fmt.Println(e.Relpath)
		}
		return nil

	case "pop":
		entry, err := db.QueuePop(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("queue is empty")
		}
		if err != nil {
			return err
		}
		fmt.Println(entry.Relpath)
		return nil

	case "sample":
		n := 1
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil {
				return fmt.Errorf("parse n: %w", err)
			}
		}
		entries, err := db.QueueSample(ctx, n)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Println(e.Relpath)
		}
		return nil

	case "len":
		n, err := db.QueueLen(ctx)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
