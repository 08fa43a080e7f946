// Package dita imports music releases into a curated library. A source
// directory is matched against Discogs, its tags are reconciled, and the
// files are laid out as <root>/<artist>/<album> (<year>)/<num> <title>.<ext>
// with cross-artist symlinks for compilations.
package dita

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.senan.xyz/natcmp"

	"go.dita.xyz/dita/coverparse"
	"go.dita.xyz/dita/discogs"
	"go.dita.xyz/dita/linker"
	"go.dita.xyz/dita/notifications"
	"go.dita.xyz/dita/originfile"
	"go.dita.xyz/dita/pathformat"
	"go.dita.xyz/dita/release"
	"go.dita.xyz/dita/researchlink"
	"go.dita.xyz/dita/store"
	"go.dita.xyz/dita/tagmap"
	"go.dita.xyz/dita/tags"
)

var (
	ErrScoreTooLow        = errors.New("score too low")
	ErrTrackCountMismatch = errors.New("track count mismatch")
	ErrDurationMismatch   = errors.New("track durations don't match")
	ErrUnknownGenre       = errors.New("unknown genre")
	ErrNonASCIIArtist     = errors.New("artist is not ascii")
)

const minScore = 95

type Config struct {
	PathFormat          pathformat.Format
	TagWeights          tagmap.TagWeights
	ResearchLinkQuerier researchlink.Builder
	KeepFiles           map[string]struct{}
	Genres              map[string]struct{}
	Notifications       notifications.Notifications
	Discogs             *discogs.Client
	Store               *store.Store
	Hooks               []Hook
}

type ImportCondition uint8

const (
	HighScore ImportCondition = iota
	HighScoreOrID
	Always
)

type SearchResult struct {
	Release       *release.Release
	Score         float64
	Diff          []tagmap.Diff
	ResearchLinks []researchlink.SearchResult
	OriginFile    *originfile.OriginFile
	DestDir       string
	Queued        int
}

// ProcessDir matches one source directory against Discogs and, if the match
// is good enough for cond, writes the reconciled tags and imports the files
// with op. A partial SearchResult is returned alongside ErrScoreTooLow so
// callers can render the diff and research links.
func ProcessDir(
	ctx context.Context, cfg *Config, op FileSystemOperation,
	srcDir string, cond ImportCondition, useReleaseID string,
) (*SearchResult, error) {
	srcDir, err := filepath.Abs(srcDir)
	if err != nil {
		return nil, fmt.Errorf("abs src dir: %w", err)
	}

	srcPaths, files, err := ReadReleaseDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	if err := checkGenres(cfg, srcPaths, files); err != nil {
		return nil, err
	}

	searchFile, _ := originfile.Find(srcDir)

	rel, err := findRelease(ctx, cfg, files, searchFile, useReleaseID)
	if err != nil {
		return nil, err
	}
	masterYear, err := cfg.Discogs.MasterYear(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("master year: %w", err)
	}
	releaseTags, err := release.FromDiscogs(rel, masterYear)
	if err != nil {
		return nil, fmt.Errorf("reconcile release %d: %w", rel.ID, err)
	}

	if !release.IsASCII(releaseTags.Artist) {
		return nil, fmt.Errorf("%w: %q, try %q", ErrNonASCIIArtist,
			releaseTags.Artist, release.Transliterate(releaseTags.Artist))
	}
	if len(releaseTags.Tracks) != len(files) {
		return nil, fmt.Errorf("%w: %d/%d", ErrTrackCountMismatch, len(files), len(releaseTags.Tracks))
	}

	score, diff := tagmap.DiffRelease(cfg.TagWeights, releaseTags, files)

	var res SearchResult
	res.Release = releaseTags
	res.Score = score
	res.Diff = diff
	res.OriginFile = searchFile

	if !durationsOK(files, releaseTags) {
		res.ResearchLinks, _ = cfg.ResearchLinkQuerier.Build(researchQuery(releaseTags))
		return &res, fmt.Errorf("%w (%d tracks)", ErrDurationMismatch, len(files))
	}
	if !importOK(cond, useReleaseID, score) {
		res.ResearchLinks, _ = cfg.ResearchLinkQuerier.Build(researchQuery(releaseTags))
		return &res, fmt.Errorf("%w: %.2f%%", ErrScoreTooLow, score)
	}

	destPaths, err := DestinationPaths(&cfg.PathFormat, releaseTags, srcPaths)
	if err != nil {
		return nil, fmt.Errorf("gen dest paths: %w", err)
	}
	res.DestDir = filepath.Dir(destPaths[0])

	// plan the compilation symlink network before touching anything so an
	// ambiguous album name fails the import while it is still intact
	var links map[string][]string
	if releaseTags.Compilation {
		links, err = linker.Plan(destPaths, nil)
		if err != nil {
			return nil, fmt.Errorf("plan links: %w", err)
		}
	}

	for i := range files {
		if op.ReadOnly() {
			continue
		}
		err := files[i].Update(func(f *tags.File) {
			tagmap.WriteFile(releaseTags, i, f)
		})
		if err != nil {
			return nil, fmt.Errorf("write tags %q: %w", srcPaths[i], err)
		}
		if missing := files[i].MissingRequired(); len(missing) > 0 {
			slog.WarnContext(ctx, "tags still incomplete", "path", srcPaths[i], "missing", missing)
		}
	}
	for i := range srcPaths {
		if err := op.ProcessPath(srcPaths[i], destPaths[i]); err != nil {
			return nil, fmt.Errorf("process path %q: %w", srcPaths[i], err)
		}
	}

	if err := processExtraFiles(cfg, op, srcDir, res.DestDir); err != nil {
		return nil, err
	}

	if !op.ReadOnly() {
		root := cfg.PathFormat.Root()
		for _, src := range slices.Sorted(maps.Keys(links)) {
			for _, dst := range links[src] {
				if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
					return nil, fmt.Errorf("create link dir: %w", err)
				}
				if err := linker.RelativeLink(root, src, dst); err != nil {
					return nil, fmt.Errorf("link %q: %w", dst, err)
				}
			}
		}
	}

	if mv, ok := op.(Move); ok && !mv.DryRun && srcDir != res.DestDir {
		if err := cleanupSource(srcDir); err != nil {
			slog.ErrorContext(ctx, "cleaning up source", "dir", srcDir, "err", err)
		}
	}

	if cfg.Store != nil && !op.ReadOnly() {
		res.Queued, err = queueNewAlbums(ctx, cfg, destPaths)
		if err != nil {
			return nil, fmt.Errorf("queue albums: %w", err)
		}
	}

	if !op.ReadOnly() {
		for _, h := range cfg.Hooks {
			if err := h.ProcessRelease(ctx, destPaths); err != nil {
				slog.ErrorContext(ctx, "running hook", "hook", h, "err", err)
			}
		}
	}

	return &res, nil
}

// ReadReleaseDir reads the audio files of one release directory in natural
// order, so that "2" sorts before "10".
func ReadReleaseDir(dir string) ([]string, []*tags.File, error) {
	allPaths, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, nil, fmt.Errorf("glob dir: %w", err)
	}
	slices.SortFunc(allPaths, natcmp.Compare)

	var paths []string
	var files []*tags.File
	for _, path := range allPaths {
		if !tags.CanRead(path) {
			continue
		}
		file, err := tags.Read(path)
		if err != nil {
			for _, f := range files {
				f.Close()
			}
			return nil, nil, fmt.Errorf("read track %q: %w", path, err)
		}
		paths = append(paths, path)
		files = append(files, file)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no tracks in dir")
	}
	return paths, files, nil
}

// DestinationPaths renders one destination path per source path, shortening
// any that would exceed the filesystem-safe limit.
func DestinationPaths(pf *pathformat.Format, rel *release.Release, srcPaths []string) ([]string, error) {
	paths := make([]string, 0, len(srcPaths))
	for i, t := range rel.Tracks {
		data := pathformat.Data{Release: *rel, Track: t, TrackNum: i + 1, Ext: filepath.Ext(srcPaths[i])}
		path, err := pf.Execute(data)
		if err != nil {
			return nil, fmt.Errorf("execute path format: %w", err)
		}
		if len(path) > pathformat.MaxPathLen {
			if path = pathformat.Truncate(path); path == "" {
				return nil, fmt.Errorf("can't truncate %q, fix the artist name", srcPaths[i])
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func findRelease(
	ctx context.Context, cfg *Config, files []*tags.File,
	searchFile *originfile.OriginFile, useReleaseID string,
) (*discogs.Release, error) {
	if useReleaseID != "" {
		id, ok := discogs.ReleaseIDFromURL(useReleaseID)
		if !ok {
			var err error
			if id, err = strconv.Atoi(useReleaseID); err != nil {
				return nil, fmt.Errorf("parse release id %q", useReleaseID)
			}
		}
		rel, err := cfg.Discogs.GetRelease(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get release: %w", err)
		}
		return rel, nil
	}

	var query discogs.SearchQuery
	if searchFile != nil {
		query = searchFile.Query()
	} else {
		f := files[0]
		query.Artist = f.Read(tags.Artist)
		query.Release = f.Read(tags.Album)
		query.Year = release.Year(f.Read(tags.Date))
		query.CatNum = f.Read(tags.CatalogueNum)
	}

	rel, err := cfg.Discogs.SearchRelease(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search release: %w", err)
	}
	return rel, nil
}

func importOK(cond ImportCondition, useReleaseID string, score float64) bool {
	switch cond {
	case Always:
		return true
	case HighScoreOrID:
		if useReleaseID != "" {
			return true
		}
	}
	return score >= minScore
}

func durationsOK(files []*tags.File, rel *release.Release) bool {
	trackDurations := make([]int, 0, len(rel.Tracks))
	var known bool
	for _, t := range rel.Tracks {
		trackDurations = append(trackDurations, t.Duration)
		known = known || t.Duration > 0
	}
	if !known {
		return true
	}
	fileDurations := make([]int, 0, len(files))
	for _, f := range files {
		fileDurations = append(fileDurations, int(f.Length().Seconds()))
	}
	return release.DurationsMatch(fileDurations, trackDurations)
}

func checkGenres(cfg *Config, paths []string, files []*tags.File) error {
	if len(cfg.Genres) == 0 {
		return nil
	}
	var errs []error
	for i, f := range files {
		genre := f.Read(tags.Genre)
		if _, ok := cfg.Genres[genre]; !ok {
			errs = append(errs, fmt.Errorf("%w %q: %s", ErrUnknownGenre, genre, paths[i]))
		}
	}
	return errors.Join(errs...)
}

func researchQuery(rel *release.Release) researchlink.Query {
	return researchlink.Query{
		Artist: rel.Artist,
		Album:  rel.Album,
		Year:   release.Year(rel.Date),
	}
}

func processExtraFiles(cfg *Config, op FileSystemOperation, srcDir, destDir string) error {
	if cover := coverparse.BestInDir(srcDir); cover != "" {
		dst := filepath.Join(destDir, "cover"+strings.ToLower(filepath.Ext(cover)))
		if err := op.ProcessPath(cover, dst); err != nil {
			return fmt.Errorf("process cover: %w", err)
		}
	}
	for name := range cfg.KeepFiles {
		src := filepath.Join(srcDir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := op.ProcessPath(src, filepath.Join(destDir, name)); err != nil {
			return fmt.Errorf("process keep file: %w", err)
		}
	}
	return nil
}

func queueNewAlbums(ctx context.Context, cfg *Config, destPaths []string) (int, error) {
	root := cfg.PathFormat.Root()

	seen := map[string]struct{}{}
	var relpaths []string
	for _, p := range destPaths {
		relpath := strings.TrimPrefix(filepath.Dir(p), root+"/")
		if _, ok := seen[relpath]; ok {
			continue
		}
		seen[relpath] = struct{}{}
		relpaths = append(relpaths, relpath)
	}

	// oldest first, by the trailing "(year)" of the album segment
	slices.SortStableFunc(relpaths, func(a, b string) int {
		return strings.Compare(a[strings.LastIndex(a, " ")+1:], b[strings.LastIndex(b, " ")+1:])
	})

	return cfg.Store.QueueAdd(ctx, relpaths...)
}

var leftoverExpr = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|tif|cue|pdf|log|txt)$`)

// leftover dirs smaller than this are junk, not music
const leftoverSizeLimit = 5_000_000

// cleanupSource removes what remains of a moved source directory: stray
// images and rip logs, empty directories, and directories too small to hold
// actual music.
func cleanupSource(srcDir string) error {
	var dirs []string
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if leftoverExpr.MatchString(d.Name()) {
			return os.Remove(path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("walk: %w", err)
	}

	// deepest first
	slices.Reverse(dirs)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read dir: %w", err)
		}
		if len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				return err
			}
			continue
		}
		if size, ok := filesOnlySize(dir, entries); ok && size < leftoverSizeLimit {
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
		}
	}

	// when the whole batch came from one parent, drop that too
	parent := filepath.Dir(srcDir)
	if entries, err := os.ReadDir(parent); err == nil && len(entries) == 0 {
		return os.Remove(parent)
	}
	return nil
}

func filesOnlySize(dir string, entries []fs.DirEntry) (int64, bool) {
	var size int64
	for _, e := range entries {
		if e.IsDir() {
			return 0, false
		}
		info, err := os.Lstat(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		size += info.Size()
	}
	return size, true
}
