package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.dita.xyz/dita/bandcamp"
	"go.dita.xyz/dita/cmd/internal/ditaflag"
	"go.dita.xyz/dita/release"
)

func init() {
	flag := flag.CommandLine
	flag.Usage = func() {
		fmt.Fprintf(flag.Output(), "Usage:\n")
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] <label>...\n", flag.Name())
		fmt.Fprintf(flag.Output(), "  $ %s [<options>] -wantlist\n", flag.Name())
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Print recent releases from bandcamp label pages, or the Discogs wantlist\n")
		fmt.Fprintf(flag.Output(), "\n")
		fmt.Fprintf(flag.Output(), "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	defer ditaflag.ExitError()
	var (
		discogsClient = ditaflag.Discogs()
		wantlist      = flag.Bool("wantlist", false, "Print the Discogs wantlist instead of scraping labels")
		maxAge        = flag.Duration("max-age", 28*24*time.Hour, "How far back to look on each label page")
		rateLimit     = flag.Duration("rate-limit", 1*time.Second, "Time to wait between requests")
	)
	ditaflag.Parse()
	ditaflag.DefaultClient()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *wantlist {
		wants, err := discogsClient.Wantlist(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "fetch wantlist", "err", err)
			return
		}
		for _, want := range wants {
			var artist string
			if len(want.BasicInfo.Artists) > 0 {
				artist = release.CleanArtist(want.BasicInfo.Artists[0].Name)
			}
			fmt.Printf("%s\t%s - %s (%d)\n", want.DateAdded.Format(time.DateOnly), artist, want.BasicInfo.Title, want.BasicInfo.Year)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		slog.Error("no labels provided")
		return
	}

	client := bandcamp.Client{RateLimit: *rateLimit}
	for _, label := range flag.Args() {
		albums, err := client.LabelAlbums(ctx, label, *maxAge)
		if err != nil {
			slog.ErrorContext(ctx, "scrape label", "label", label, "err", err)
			continue
		}
		for _, album := range albums {
			fmt.Printf("%s\t%s\n", album.Released.Format(time.DateOnly), album.URL)
		}
	}
}
