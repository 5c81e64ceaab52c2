package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"xr-archive/internal/archive"
	database "xr-archive/internal/db"
	"xr-archive/internal/models"
)

var (
	ErrTrackNotFound = errors.New("session: track not found")
	ErrEmptyLibrary  = errors.New("session: no tracks imported")
)

// Origin tells where an import came from.
type Origin string

const (
	OriginUpload  Origin = "upload"
	OriginLibrary Origin = "library"
)

// Catalog is the subset of the database client the library needs.
type Catalog interface {
	ReplaceTracks(ctx context.Context, tracks []models.Track) error
	ListTracks(ctx context.Context) ([]models.Track, error)
	GetTrack(ctx context.Context, id string) (models.Track, error)
	Stats(ctx context.Context) (database.Stats, error)
}

type ImportResult struct {
	Accepted int             `json:"accepted"`
	Ignored  int             `json:"ignored"`
	Tracks   []archive.Track `json:"tracks"`
}

// Library is the current import collection. One import replaces the previous
// one entirely, releasing every URL it handed out.
type Library struct {
	parser      *archive.Parser
	categorizer archive.Categorizer
	registry    *Registry
	catalog     Catalog

	// mu orders imports and releases against readers so nobody sees half a swap.
	mu sync.RWMutex
}

func NewLibrary(vocab archive.Vocabulary, registry *Registry, catalog Catalog) *Library {
	return &Library{
		parser:      archive.NewParser(vocab, registry),
		categorizer: archive.NewCategorizer(vocab),
		registry:    registry,
		catalog:     catalog,
	}
}

// Import keeps the importable sources, parses them and replaces the collection.
// Ignored files are counted, never reported as errors. If the catalog write
// fails the previous collection and its URLs are left untouched.
func (l *Library) Import(ctx context.Context, origin Origin, sources []archive.Source) (ImportResult, error) {
	accepted := make([]archive.Source, 0, len(sources))
	for _, src := range sources {
		if archive.IsImportable(src.Name) {
			accepted = append(accepted, src)
		}
	}
	ignored := len(sources) - len(accepted)
	importFiles.WithLabelValues("accepted").Add(float64(len(accepted)))
	importFiles.WithLabelValues("ignored").Add(float64(ignored))

	l.mu.Lock()
	defer l.mu.Unlock()

	// The previous collection stays playable until the new one is committed.
	previous := l.registry.URLs()
	tracks := l.parseAll(accepted)

	rows := make([]models.Track, len(tracks))
	minted := make([]string, 0, len(tracks))
	for i, t := range tracks {
		rows[i] = toRow(t, origin)
		if t.URL != "" {
			minted = append(minted, t.URL)
		}
	}
	if err := l.catalog.ReplaceTracks(ctx, rows); err != nil {
		l.registry.Revoke(minted...)
		return ImportResult{}, fmt.Errorf("session: store import: %w", err)
	}

	if n := l.registry.Revoke(previous...); n > 0 {
		slog.Info("released previous import", "urls", n)
	}

	imports.WithLabelValues(string(origin)).Inc()
	libraryTracks.Set(float64(len(tracks)))
	slog.Info("import complete", "origin", origin, "accepted", len(accepted), "ignored", ignored)

	return ImportResult{Accepted: len(accepted), Ignored: ignored, Tracks: tracks}, nil
}

// parseAll parses every source on its own goroutine; output order matches input.
func (l *Library) parseAll(sources []archive.Source) []archive.Track {
	tracks := make([]archive.Track, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src archive.Source) {
			defer wg.Done()
			timer := prometheus.NewTimer(parseDuration)
			tracks[i] = l.parser.Parse(src)
			timer.ObserveDuration()
		}(i, src)
	}
	wg.Wait()

	return tracks
}

// Release discards the collection and revokes every URL.
func (l *Library) Release(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.registry.RevokeAll()
	libraryTracks.Set(0)
	if err := l.catalog.ReplaceTracks(ctx, nil); err != nil {
		return n, fmt.Errorf("session: clear catalog: %w", err)
	}
	return n, nil
}

// Tracks returns the collection in import order.
func (l *Library) Tracks(ctx context.Context) ([]archive.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.catalog.ListTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: list tracks: %w", err)
	}
	tracks := make([]archive.Track, len(rows))
	for i, row := range rows {
		tracks[i] = l.fromRow(row)
	}
	return tracks, nil
}

func (l *Library) Track(ctx context.Context, id string) (archive.Track, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	row, err := l.catalog.GetTrack(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return archive.Track{}, ErrTrackNotFound
	}
	if err != nil {
		return archive.Track{}, fmt.Errorf("session: load track: %w", err)
	}
	return l.fromRow(row), nil
}

func (l *Library) Categories(ctx context.Context) (archive.Categories, error) {
	tracks, err := l.Tracks(ctx)
	if err != nil {
		return archive.Categories{}, err
	}
	return l.categorizer.Categorize(tracks), nil
}

// Filter returns the visible tracks and the size of the whole collection.
func (l *Library) Filter(ctx context.Context, q archive.Query) ([]archive.Track, int, error) {
	tracks, err := l.Tracks(ctx)
	if err != nil {
		return nil, 0, err
	}
	return archive.Filter(tracks, q), len(tracks), nil
}

// Next and Prev walk the whole collection, not the filtered view.
func (l *Library) Next(ctx context.Context, currentID string) (archive.Track, error) {
	return l.step(ctx, currentID, archive.Next)
}

func (l *Library) Prev(ctx context.Context, currentID string) (archive.Track, error) {
	return l.step(ctx, currentID, archive.Prev)
}

func (l *Library) step(ctx context.Context, currentID string, move func([]archive.Track, string) (archive.Track, bool)) (archive.Track, error) {
	tracks, err := l.Tracks(ctx)
	if err != nil {
		return archive.Track{}, err
	}
	t, ok := move(tracks, currentID)
	if !ok {
		return archive.Track{}, ErrEmptyLibrary
	}
	return t, nil
}

func (l *Library) Stats(ctx context.Context) (database.Stats, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.Stats(ctx)
}

// Media resolves a URL (or bare token) minted for the current import.
func (l *Library) Media(url string) (archive.Payload, error) {
	return l.registry.Resolve(url)
}

func toRow(t archive.Track, origin Origin) models.Track {
	var size int64
	if t.Blob != nil {
		size = t.Blob.Size()
	}
	return models.Track{
		ID:       t.ID,
		FileName: t.FileName,
		Title:    t.Title,
		Features: t.Features,
		URL:      t.URL,
		Gradient: t.Gradient,
		Size:     size,
		Source:   string(origin),
	}
}

func (l *Library) fromRow(row models.Track) archive.Track {
	features := row.Features
	if features == nil {
		features = []string{}
	}
	t := archive.Track{
		ID:       row.ID,
		FileName: row.FileName,
		Title:    row.Title,
		Features: features,
		URL:      row.URL,
		Gradient: row.Gradient,
	}
	// A revoked URL leaves Blob nil; callers treat that as gone.
	if p, err := l.registry.Resolve(row.URL); err == nil {
		t.Blob = p
	}
	return t
}
