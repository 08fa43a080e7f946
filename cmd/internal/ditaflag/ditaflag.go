package ditaflag

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.senan.xyz/flagconf"

	"go.dita.xyz/dita"
	"go.dita.xyz/dita/clientutil"
	"go.dita.xyz/dita/discogs"
	"go.dita.xyz/dita/notifications"
	"go.dita.xyz/dita/pathformat"
	"go.dita.xyz/dita/researchlink"
	"go.dita.xyz/dita/tagmap"
)

func DefaultClient() {
	chain := clientutil.Chain(
		clientutil.WithLogging(slog.Default()),
		clientutil.WithUserAgent(fmt.Sprintf(`%s/%s`, dita.Name, dita.Version)),
	)

	http.DefaultTransport = chain(http.DefaultTransport)
}

func Parse() {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}

	defaultConfigPath := filepath.Join(userConfig, dita.Name, "config")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")

	printVersion := flag.Bool("version", false, "Print the version and exit")
	printConfig := flag.Bool("config", false, "Print the parsed config and exit")

	flag.Parse()
	flagconf.ReadEnvPrefix = func(_ *flag.FlagSet) string { return dita.Name }
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	if *printVersion {
		fmt.Printf("%s %s\n", flag.CommandLine.Name(), dita.Version)
		os.Exit(0)
	}
	if *printConfig {
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("%-16s %s\n", f.Name, f.Value)
		})
		os.Exit(0)
	}
}

func Config() *dita.Config {
	var cfg dita.Config

	flag.Var(&pathFormatParser{&cfg.PathFormat}, "path-format", "Path to root music directory including path format rules (see [Path format](#path-format))")
	flag.Var(&hooksParser{&cfg.Hooks}, "hook", "Define a command to run after a release is imported (stackable)")

	cfg.KeepFiles = map[string]struct{}{}
	flag.Var(&stringSetParser{cfg.KeepFiles}, "keep-file", "Define an extra file path to keep when moving/copying to root dir (stackable)")

	cfg.Genres = map[string]struct{}{}
	flag.Var(&stringSetParser{cfg.Genres}, "genre", "Add a genre to the known genre whitelist, empty to accept any (stackable)")

	cfg.TagWeights = tagmap.TagWeights{}
	flag.Var(&tagWeightsParser{cfg.TagWeights}, "tag-weight", "Adjust distance weighting for a tag (0 to ignore) (stackable)")

	flag.Var(&notificationsParser{&cfg.Notifications}, "notification-uri", "Add a shoutrrr notification URI for an event (stackable)")
	flag.Var(&researchLinkParser{&cfg.ResearchLinkQuerier}, "research-link", "Define a helper URL to help find information about an unmatched release (stackable)")

	cfg.Discogs = Discogs()

	return &cfg
}

// Discogs defines the flags for a Discogs API client.
func Discogs() *discogs.Client {
	c := discogs.NewClient()
	flag.StringVar(&c.BaseURL, "discogs-base-url", c.BaseURL, "Discogs API base URL")
	flag.StringVar(&c.Token, "discogs-token", "", "Discogs personal access token")
	flag.StringVar(&c.Username, "discogs-username", "", "Discogs username, needed for collection and rating calls")
	flag.DurationVar(&c.RateLimit, "discogs-rate-limit", c.RateLimit, "Discogs rate limit duration")
	return c
}

// DBPath defines the flag for the queue and ratings database location.
func DBPath() *string {
	userConfig, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	return flag.String("db-path", filepath.Join(userConfig, dita.Name, dita.Name+".db"), "Path to queue and ratings database")
}

func OperationByName(name string, dryRun bool) (dita.FileSystemOperation, error) {
	switch name {
	case "copy":
		return dita.Copy{DryRun: dryRun}, nil
	case "move":
		return dita.Move{DryRun: dryRun}, nil
	default:
		return nil, fmt.Errorf("unknown operation")
	}
}

var _ flag.Value = (*pathFormatParser)(nil)
var _ flag.Value = (*researchLinkParser)(nil)
var _ flag.Value = (*notificationsParser)(nil)
var _ flag.Value = (*tagWeightsParser)(nil)
var _ flag.Value = (*stringSetParser)(nil)
var _ flag.Value = (*hooksParser)(nil)

type pathFormatParser struct{ *pathformat.Format }

func (pf *pathFormatParser) Set(value string) error {
	value, err := filepath.Abs(value)
	if err != nil {
		return fmt.Errorf("make abs: %w", err)
	}
	return pf.Parse(value)
}
func (pf pathFormatParser) String() string {
	if pf.Format == nil || pf.Root() == "" {
		return ""
	}
	return fmt.Sprintf("%s/...", pf.Root())
}

type researchLinkParser struct{ *researchlink.Builder }

func (r *researchLinkParser) Set(value string) error {
	name, value, _ := strings.Cut(value, " ")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	return r.AddSource(name, value)
}
func (r researchLinkParser) String() string {
	if r.Builder == nil {
		return ""
	}
	var names []string
	for s := range r.Builder.IterSources() {
		names = append(names, s)
	}
	return strings.Join(names, ", ")
}

type notificationsParser struct{ *notifications.Notifications }

func (n *notificationsParser) Set(value string) error {
	eventsRaw, uri, ok := strings.Cut(value, " ")
	if !ok {
		return fmt.Errorf("invalid notification uri format. expected eg \"ev1,ev2 uri\"")
	}
	var lineErrs []error
	for _, ev := range strings.Split(eventsRaw, ",") {
		ev, uri = strings.TrimSpace(ev), strings.TrimSpace(uri)
		err := n.AddURI(notifications.Event(ev), uri)
		lineErrs = append(lineErrs, err)
	}
	return errors.Join(lineErrs...)
}
func (n notificationsParser) String() string {
	if n.Notifications == nil {
		return ""
	}
	var parts []string
	n.Notifications.IterMappings(func(e notifications.Event, uri string) {
		url, _ := url.Parse(uri)
		parts = append(parts, fmt.Sprintf("%s: %s://%s/...", e, url.Scheme, url.Host))
	})
	return strings.Join(parts, ", ")
}

type tagWeightsParser struct{ tagmap.TagWeights }

func (tw tagWeightsParser) Set(value string) error {
	const sep = " "
	i := strings.LastIndex(value, sep)
	if i < 0 {
		return fmt.Errorf("invalid tag weight format. expected eg \"tag name 0.5\"")
	}
	tag := strings.TrimSpace(value[:i])
	weightStr := strings.TrimSpace(value[i+len(sep):])
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		return fmt.Errorf("parse weight: %w", err)
	}
	tw.TagWeights[tag] = weight
	return nil
}
func (tw tagWeightsParser) String() string {
	var parts []string
	for a, b := range tw.TagWeights {
		parts = append(parts, fmt.Sprintf("%s: %.2f", a, b))
	}
	return strings.Join(parts, ", ")
}

type stringSetParser struct{ m map[string]struct{} }

func (ss stringSetParser) Set(value string) error {
	ss.m[value] = struct{}{}
	return nil
}
func (ss *stringSetParser) String() string {
	var parts []string
	for k := range ss.m {
		parts = append(parts, k)
	}
	return strings.Join(parts, ", ")
}

type hooksParser struct{ hooks *[]dita.Hook }

func (h *hooksParser) Set(value string) error {
	hook, err := dita.NewHook(value)
	if err != nil {
		return err
	}
	*h.hooks = append(*h.hooks, hook)
	return nil
}
func (h hooksParser) String() string {
	if h.hooks == nil {
		return ""
	}
	var parts []string
	for _, hook := range *h.hooks {
		parts = append(parts, fmt.Sprint(hook))
	}
	return strings.Join(parts, ", ")
}
