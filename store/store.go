// Package store keeps the listening queue and the local rating cache in a
// single SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var ErrBadRelpath = errors.New("relpath should be artist/album")

const schema = `
create table if not exists queue (
	relpath   text primary key,
	artist    text not null,
	album     text not null,
	added_at  timestamp not null default current_timestamp,
	played_at timestamp
);
create table if not exists ratings (
	release_id integer primary key,
	artist     text not null,
	album      text not null,
	rating     integer not null,
	genre      text not null default '',
	rated_at   timestamp not null default current_timestamp
);
`

type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the store at path. Pass ":memory:" for a
// throwaway store.
func New(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type QueueEntry struct {
	Relpath string
	Artist  string
	Album   string
	Added   time.Time
	Played  bool
}

// QueueAdd appends relpaths ("artist/album (year)") to the queue. Within one
// batch only the first entry per artist and per album is taken, so moving a
// discography doesn't flood the queue. Already queued relpaths are skipped.
// Returns the number of entries actually added.
func (s *Store) QueueAdd(ctx context.Context, relpaths ...string) (int, error) {
	seenArtists := map[string]struct{}{}
	seenAlbums := map[string]struct{}{}

	var added int
	for _, relpath := range relpaths {
		artist, album, ok := strings.Cut(relpath, "/")
		if !ok || artist == "" || album == "" || strings.Contains(album, "/") {
			return added, fmt.Errorf("%w: %q", ErrBadRelpath, relpath)
		}
		if _, ok := seenArtists[artist]; ok {
			continue
		}
		if _, ok := seenAlbums[album]; ok {
			continue
		}
		seenArtists[artist] = struct{}{}
		seenAlbums[album] = struct{}{}

		res, err := s.db.ExecContext(ctx,
			`insert or ignore into queue (relpath, artist, album) values (?, ?, ?)`,
			relpath, artist, album)
		if err != nil {
			return added, fmt.Errorf("insert queue entry: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// Queue lists unplayed entries, oldest first.
func (s *Store) Queue(ctx context.Context) ([]QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`select relpath, artist, album, added_at, played_at is not null
		 from queue where played_at is null order by added_at, relpath`)
	if err != nil {
		return nil, fmt.Errorf("query queue: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// QueueSample picks up to n random unplayed entries.
func (s *Store) QueueSample(ctx context.Context, n int) ([]QueueEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`select relpath, artist, album, added_at, played_at is not null
		 from queue where played_at is null order by random() limit ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query queue sample: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// QueuePop marks the oldest unplayed entry played and returns it.
func (s *Store) QueuePop(ctx context.Context) (QueueEntry, error) {
	entries, err := s.Queue(ctx)
	if err != nil {
		return QueueEntry{}, err
	}
	if len(entries) == 0 {
		return QueueEntry{}, sql.ErrNoRows
	}
	entry := entries[0]
	if err := s.MarkPlayed(ctx, entry.Relpath); err != nil {
		return QueueEntry{}, err
	}
	entry.Played = true
	return entry, nil
}

func (s *Store) MarkPlayed(ctx context.Context, relpath string) error {
	res, err := s.db.ExecContext(ctx,
		`update queue set played_at = current_timestamp where relpath = ?`, relpath)
	if err != nil {
		return fmt.Errorf("mark played: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mark played: %w", sql.ErrNoRows)
	}
	return nil
}

// QueueLen counts unplayed entries.
func (s *Store) QueueLen(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(1) from queue where played_at is null`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]QueueEntry, error) {
	var entries []QueueEntry
	for rows.Next() {
		var e QueueEntry
		if err := rows.Scan(&e.Relpath, &e.Artist, &e.Album, &e.Added, &e.Played); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveRating records a rating locally, mirroring what was sent to Discogs.
func (s *Store) SaveRating(ctx context.Context, releaseID int, artist, album string, rating int, genre string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into ratings (release_id, artist, album, rating, genre)
		 values (?, ?, ?, ?, ?)
		 on conflict (release_id) do update
		 set rating = excluded.rating, genre = excluded.genre, rated_at = current_timestamp`,
		releaseID, artist, album, rating, genre)
	if err != nil {
		return fmt.Errorf("save rating: %w", err)
	}
	return nil
}

// Rated looks a release up by exact artist and front matched album, so
// "Album" finds the row saved as "Album (1981)" and vice versa.
func (s *Store) Rated(ctx context.Context, artist, album string) (int, bool, error) {
	var rating int
	err := s.db.QueryRowContext(ctx,
		`select rating from ratings
		 where artist = ? and (album = ? or album like ? || ' (%' or ? like album || ' (%')
		 limit 1`,
		artist, album, album, album).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query rating: %w", err)
	}
	return rating, true, nil
}

// ArtistMeanRating averages all saved ratings for an artist. Zero with no
// error means no ratings yet.
func (s *Store) ArtistMeanRating(ctx context.Context, artist string) (float64, error) {
	var mean sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`select avg(rating) from ratings where artist = ?`, artist).Scan(&mean)
	if err != nil {
		return 0, fmt.Errorf("query mean rating: %w", err)
	}
	return mean.Float64, nil
}
