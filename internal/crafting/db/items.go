package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rsned/crafting-optimizer/pkg/crafting"
)

// ItemStore handles catalog item data access.
type ItemStore struct {
	db *DB
}

// NewItemStore creates a new ItemStore.
func NewItemStore(db *DB) *ItemStore {
	return &ItemStore{db: db}
}

// GetItem retrieves a single item with its requirements.
// Returns nil, nil if the item does not exist.
func (s *ItemStore) GetItem(ctx context.Context, id string) (*crafting.Item, error) {
	item := &crafting.Item{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT item_group, sell_price FROM items WHERE id = ?
	`, id).Scan(&item.Group, &item.SellPrice)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying item: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT requirement_id, quantity
		FROM item_requirements
		WHERE item_id = ?
		ORDER BY requirement_id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying item requirements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r crafting.Requirement
		if err := rows.Scan(&r.ItemID, &r.Quantity); err != nil {
			return nil, fmt.Errorf("scanning requirement: %w", err)
		}
		item.Requirements = append(item.Requirements, r)
	}
	return item, rows.Err()
}

// GetAllItems retrieves every item with its requirements, ordered by ID.
func (s *ItemStore) GetAllItems(ctx context.Context) ([]crafting.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_group, sell_price FROM items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all items: %w", err)
	}
	var items []crafting.Item
	index := make(map[string]int)
	for rows.Next() {
		var it crafting.Item
		if err := rows.Scan(&it.ID, &it.Group, &it.SellPrice); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		index[it.ID] = len(items)
		items = append(items, it)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Requirements are loaded in one pass after the item cursor is closed
	// so a single-connection pool does not block.
	reqRows, err := s.db.QueryContext(ctx, `
		SELECT item_id, requirement_id, quantity
		FROM item_requirements
		ORDER BY item_id, requirement_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying all requirements: %w", err)
	}
	defer func() { _ = reqRows.Close() }()

	for reqRows.Next() {
		var itemID string
		var r crafting.Requirement
		if err := reqRows.Scan(&itemID, &r.ItemID, &r.Quantity); err != nil {
			return nil, fmt.Errorf("scanning requirement: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].Requirements = append(items[i].Requirements, r)
		}
	}
	return items, reqRows.Err()
}

// FindItemsUsing returns the IDs of items that require the given item.
func (s *ItemStore) FindItemsUsing(ctx context.Context, requirementID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT item_id
		FROM item_requirements
		WHERE requirement_id = ?
		ORDER BY item_id
	`, requirementID)
	if err != nil {
		return nil, fmt.Errorf("finding items using %s: %w", requirementID, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountItems returns the total number of items.
func (s *ItemStore) CountItems(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return count, nil
}

// BulkInsertItems inserts or replaces multiple items in a transaction.
// A replaced item's old requirements are removed first.
func (s *ItemStore) BulkInsertItems(ctx context.Context, items []crafting.Item) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		return insertItems(ctx, tx, items)
	})
}

// ReplaceItems swaps the whole catalog for items in one transaction. If any
// insert fails the previous catalog is left in place.
func (s *ItemStore) ReplaceItems(ctx context.Context, items []crafting.Item) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
			return fmt.Errorf("clearing items: %w", err)
		}
		return insertItems(ctx, tx, items)
	})
}

func insertItems(ctx context.Context, tx *sql.Tx, items []crafting.Item) error {
	itemStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (id, item_group, sell_price)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_group = excluded.item_group,
			sell_price = excluded.sell_price
	`)
	if err != nil {
		return fmt.Errorf("preparing item statement: %w", err)
	}
	defer func() { _ = itemStmt.Close() }()

	clearStmt, err := tx.PrepareContext(ctx, `DELETE FROM item_requirements WHERE item_id = ?`)
	if err != nil {
		return fmt.Errorf("preparing requirement cleanup statement: %w", err)
	}
	defer func() { _ = clearStmt.Close() }()

	reqStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO item_requirements (item_id, requirement_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(item_id, requirement_id) DO UPDATE SET
			quantity = quantity + excluded.quantity
	`)
	if err != nil {
		return fmt.Errorf("preparing requirement statement: %w", err)
	}
	defer func() { _ = reqStmt.Close() }()

	for _, it := range items {
		if _, err := itemStmt.ExecContext(ctx, it.ID, it.Group, it.SellPrice); err != nil {
			return fmt.Errorf("inserting item %s: %w", it.ID, err)
		}
		if _, err := clearStmt.ExecContext(ctx, it.ID); err != nil {
			return fmt.Errorf("clearing requirements for %s: %w", it.ID, err)
		}
		for _, r := range it.Requirements {
			if _, err := reqStmt.ExecContext(ctx, it.ID, r.ItemID, r.Quantity); err != nil {
				return fmt.Errorf("inserting requirement for %s: %w", it.ID, err)
			}
		}
	}
	return nil
}

// ClearItems removes all item data (for re-import).
func (s *ItemStore) ClearItems(ctx context.Context) error {
	return s.db.InTransaction(ctx, func(tx *sql.Tx) error {
		// Foreign keys cascade to item_requirements.
		_, err := tx.ExecContext(ctx, `DELETE FROM items`)
		return err
	})
}
