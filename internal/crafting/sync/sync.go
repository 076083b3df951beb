// Package sync imports catalog documents into the SQLite store.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rsned/crafting-optimizer/internal/crafting/catalog"
	"github.com/rsned/crafting-optimizer/internal/crafting/db"
	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// Metadata keys written after an import.
const (
	KeyCatalogLastSync   = "catalog_last_sync"
	KeyCatalogItemsCount = "catalog_items_count"
	KeyCatalogSource     = "catalog_source"
)

// Syncer handles catalog imports.
type Syncer struct {
	db     *db.DB
	items  *db.ItemStore
	logger *slog.Logger
	now    func() time.Time
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Syncer{
		db:     database,
		items:  db.NewItemStore(database),
		logger: logger,
		now:    time.Now,
	}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Items  int
	Issues []catalog.Issue
}

// ImportCatalogFromFile imports a catalog file or s3:// object.
// With replace set, the existing items are swapped out in the same
// transaction that writes the new ones.
func (s *Syncer) ImportCatalogFromFile(ctx context.Context, location string, replace bool) (*ImportResult, error) {
	src, format, err := catalog.OpenSource(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.ImportCatalog(ctx, src, format, location, replace)
}

// ImportCatalog validates a catalog document and writes it to the store.
// A document that fails validation writes nothing.
func (s *Syncer) ImportCatalog(ctx context.Context, src catalog.Source, format catalog.Format, label string, replace bool) (*ImportResult, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	items, err := catalog.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	cat, issues, err := catalog.New(items)
	if err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	for _, issue := range issues {
		s.logger.Warn("catalog issue", "kind", issue.Kind, "item", issue.ItemID, "detail", issue.Detail)
	}

	// Store the normalized form so a reload sees the same requirements.
	normalized := make([]crafting.Item, 0, cat.Len())
	for _, id := range cat.IDs() {
		it, _ := cat.Item(id)
		normalized = append(normalized, it)
	}

	store := s.items.BulkInsertItems
	if replace {
		store = s.items.ReplaceItems
	}
	if err := store(ctx, normalized); err != nil {
		return nil, fmt.Errorf("storing items: %w", err)
	}

	total, err := s.items.CountItems(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, KeyCatalogLastSync, s.now().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, KeyCatalogItemsCount, strconv.Itoa(total)); err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, KeyCatalogSource, label); err != nil {
		return nil, err
	}

	s.logger.Info("catalog imported", "source", label, "items", len(normalized), "total", total, "replace", replace)
	return &ImportResult{Items: len(normalized), Issues: issues}, nil
}

// ClearAll removes all catalog data from the database.
func (s *Syncer) ClearAll(ctx context.Context) error {
	return s.items.ClearItems(ctx)
}
