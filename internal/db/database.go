package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"xr-archive/internal/models"
)

var ErrNotFound = errors.New("catalog: track not found")

// Client is the session catalog: an in-memory SQLite database that lives as
// long as the process and is emptied whenever an import is replaced.
type Client struct {
	DB *gorm.DB
}

func New() (*Client, error) {
	// Each catalog gets its own named in-memory database so tests and
	// processes never share rows.
	dsn := fmt.Sprintf("file:xr-archive-%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	// A single connection keeps the in-memory database alive and serializes writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to reach catalog pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &Client{DB: db}, nil
}

// AutoMigrate creates/updates tables based on struct definitions
func (c *Client) AutoMigrate() error {
	log.Println("Running Catalog Migrations...")
	if err := c.DB.AutoMigrate(&models.Track{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("✅ Migrations Complete")
	return nil
}

func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceTracks swaps the whole catalog for tracks in one transaction.
// Positions are rewritten to the slice order.
func (c *Client) ReplaceTracks(ctx context.Context, tracks []models.Track) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Track{}).Error; err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
		if len(tracks) == 0 {
			return nil
		}
		for i := range tracks {
			tracks[i].Position = i
		}
		if err := tx.CreateInBatches(tracks, 200).Error; err != nil {
			return fmt.Errorf("failed to store tracks: %w", err)
		}
		return nil
	})
}

// ListTracks returns the catalog in import order.
func (c *Client) ListTracks(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := c.DB.WithContext(ctx).Order("position ASC").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

func (c *Client) GetTrack(ctx context.Context, id string) (models.Track, error) {
	var track models.Track
	err := c.DB.WithContext(ctx).First(&track, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Track{}, ErrNotFound
	}
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to load track: %w", err)
	}
	return track, nil
}

// Stats is a summary of the current import.
type Stats struct {
	TotalTracks int64 `json:"total_tracks"`
	TotalBytes  int64 `json:"total_bytes"`
	Uploaded    int64 `json:"uploaded"`
	FromLibrary int64 `json:"from_library"`
}

func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := c.DB.WithContext(ctx).Model(&models.Track{})

	row := db.Select(
		"COUNT(*), COALESCE(SUM(size), 0), " +
			"COALESCE(SUM(CASE WHEN source = 'upload' THEN 1 ELSE 0 END), 0), " +
			"COALESCE(SUM(CASE WHEN source = 'library' THEN 1 ELSE 0 END), 0)",
	).Row()
	if err := row.Scan(&s.TotalTracks, &s.TotalBytes, &s.Uploaded, &s.FromLibrary); err != nil {
		return Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	return s, nil
}

// Clear empties the catalog.
func (c *Client) Clear(ctx context.Context) error {
	return c.ReplaceTracks(ctx, nil)
}
