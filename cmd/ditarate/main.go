package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.dita.xyz/dita/cmd/internal/ditaflag"
	"go.dita.xyz/dita/discogs"
	"go.dita.xyz/dita/release"
	"go.dita.xyz/dita/store"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <release id/url> <rating 1-5>\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer ditaflag.ExitError()
	var (
		cfg     = ditaflag.Config()
		dbPath  = ditaflag.DBPath()
		collect = flag.Bool("collection", true, "Also add the release to the Discogs collection")
	)
	ditaflag.Parse()
	ditaflag.DefaultClient()

	if flag.NArg() != 2 {
		slog.Error("need a release id and a rating")
		return
	}

	id, ok := discogs.ReleaseIDFromURL(flag.Arg(0))
	if !ok {
		var err error
		if id, err = strconv.Atoi(flag.Arg(0)); err != nil {
			slog.Error("parse release id", "arg", flag.Arg(0))
			return
		}
	}
	rating, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		slog.Error("parse rating", "arg", flag.Arg(1))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rate(ctx, cfg.Discogs, *dbPath, id, rating, *collect); err != nil {
		slog.Error("rate release", "id", id, "err", err)
	}
}

func rate(ctx context.Context, client *discogs.Client, dbPath string, id, rating int, collect bool) error {
	rel, err := client.GetRelease(ctx, id)
	if err != nil {
		return fmt.Errorf("get release: %w", err)
	}
	rec, err := release.FromDiscogs(rel, 0)
	if err != nil {
		return fmt.Errorf("reconcile release: %w", err)
	}

	if prev, err := client.GetRating(ctx, id); err != nil {
		return fmt.Errorf("get rating: %w", err)
	} else if prev > 0 {
		slog.Info("replacing previous rating", "prev", prev)
	}

	if err := client.PutRating(ctx, id, rating); err != nil {
		return fmt.Errorf("put rating: %w", err)
	}
	if collect {
		if err := client.AddToCollection(ctx, id); err != nil {
			return fmt.Errorf("add to collection: %w", err)
		}
	}

	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRating(ctx, id, rec.Artist, rec.Album, rating, rec.Genre); err != nil {
		return fmt.Errorf("save rating: %w", err)
	}

	mean, err := db.ArtistMeanRating(ctx, rec.Artist)
	if err != nil {
		return fmt.Errorf("mean rating: %w", err)
	}

	slog.Info("rated", "artist", rec.Artist, "album", rec.Album, "rating", rating, "artist_mean", mean)
	return nil
}
