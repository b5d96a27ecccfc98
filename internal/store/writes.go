package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreateContent inserts a content row and returns its id. Intended for
// seeding mirrors and tests; reconciliation never creates content rows.
func (s *Store) CreateContent(ctx context.Context, row *ContentRow) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var typeID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM content_types WHERE name = ?`, row.ContentType,
		).Scan(&typeID); err != nil {
			return fmt.Errorf("resolve content type %q: %w", row.ContentType, err)
		}

		var published any
		if row.PublishedAt != nil {
			published = row.PublishedAt.Format(time.RFC3339)
		}
		created := row.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		status := row.Status
		if status == "" {
			status = "published"
		}

		result, err := tx.ExecContext(ctx, `INSERT INTO contents
            (title, slug, category_id, source, content_type_id, status, content, created_at, published_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.Title, row.Slug, row.CategoryID, nullString(row.Source), typeID,
			status, nullString(row.Content), created.Format(time.RFC3339), published)
		if err != nil {
			return fmt.Errorf("insert content: %w", err)
		}
		id, err = result.LastInsertId()
		return err
	})
	return id, err
}

// CreateTag inserts a tag and returns it. The slug carries a UNIQUE
// constraint; callers handle conflicts via IsUniqueViolation.
func (s *Store) CreateTag(ctx context.Context, name, slug string) (*TagEntity, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (name, slug, usage_count) VALUES (?, ?, 0)`, name, slug)
	if err != nil {
		return nil, fmt.Errorf("insert tag %q: %w", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &TagEntity{ID: id, Name: name, Slug: slug}, nil
}

// CreateCategory inserts a category and returns it.
func (s *Store) CreateCategory(ctx context.Context, name, slug string) (*CategoryEntity, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, usage_count) VALUES (?, ?, 0)`, name, slug)
	if err != nil {
		return nil, fmt.Errorf("insert category %q: %w", name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &CategoryEntity{ID: id, Name: name, Slug: slug}, nil
}

// ReplaceAssociations swaps a content row's tag set for exactly tagIDs in
// one transaction. Passing the current set is a no-op in effect, which keeps
// the repair path idempotent.
func (s *Store) ReplaceAssociations(ctx context.Context, contentID int64, tagIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM content_tags WHERE content_id = ?`, contentID); err != nil {
			return fmt.Errorf("clear associations: %w", err)
		}
		for _, tagID := range tagIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO content_tags (content_id, tag_id) VALUES (?, ?)`,
				contentID, tagID); err != nil {
				return fmt.Errorf("link tag %d: %w", tagID, err)
			}
		}
		return nil
	})
}

// MergeTag folds the source tag into the target: every association is
// repointed (duplicates collapse via the join table's primary key) and the
// source row is deleted, all in one transaction. Usage counts are not
// touched here; RecomputeUsageCounts runs after a repair batch.
func (s *Store) MergeTag(ctx context.Context, sourceID, targetID int64) error {
	if sourceID == targetID {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE OR IGNORE content_tags SET tag_id = ? WHERE tag_id = ?`,
			targetID, sourceID); err != nil {
			return fmt.Errorf("repoint tag associations: %w", err)
		}
		// Rows whose repoint would duplicate an existing (content, target)
		// pair are left behind by OR IGNORE; drop them.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM content_tags WHERE tag_id = ?`, sourceID); err != nil {
			return fmt.Errorf("drop leftover associations: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM tags WHERE id = ?`, sourceID); err != nil {
			return fmt.Errorf("delete source tag: %w", err)
		}
		return nil
	})
}

// MergeCategory folds the source category into the target by repointing
// every content row's category_id, then deletes the source.
func (s *Store) MergeCategory(ctx context.Context, sourceID, targetID int64) error {
	if sourceID == targetID {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE contents SET category_id = ? WHERE category_id = ?`,
			targetID, sourceID); err != nil {
			return fmt.Errorf("repoint category: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM categories WHERE id = ?`, sourceID); err != nil {
			return fmt.Errorf("delete source category: %w", err)
		}
		return nil
	})
}

// syncableFields limits SyncContentField to columns reconciliation is
// allowed to overwrite from file metadata.
var syncableFields = map[string]string{
	"title":        "title",
	"source":       "source",
	"status":       "status",
	"published_at": "published_at",
}

// SyncContentField writes value into the named column only when the stored
// value differs. The returned bool reports whether a write happened.
func (s *Store) SyncContentField(ctx context.Context, contentID int64, field, value string) (bool, error) {
	column, ok := syncableFields[field]
	if !ok {
		return false, fmt.Errorf("field %q is not syncable", field)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE contents SET `+column+` = ? WHERE id = ? AND (`+column+` IS NULL OR `+column+` <> ?)`,
		value, contentID, value)
	if err != nil {
		return false, fmt.Errorf("sync %s: %w", field, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SyncContentCategory points a content row at categoryID. A nil categoryID
// clears the link.
func (s *Store) SyncContentCategory(ctx context.Context, contentID int64, categoryID *int64) (bool, error) {
	var result sql.Result
	var err error
	if categoryID == nil {
		result, err = s.db.ExecContext(ctx,
			`UPDATE contents SET category_id = NULL WHERE id = ? AND category_id IS NOT NULL`, contentID)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE contents SET category_id = ? WHERE id = ? AND (category_id IS NULL OR category_id <> ?)`,
			*categoryID, contentID, *categoryID)
	}
	if err != nil {
		return false, fmt.Errorf("sync category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RecomputeUsageCounts rewrites every tag and category usage_count from the
// true association counts. Safe to run any number of times.
func (s *Store) RecomputeUsageCounts(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE tags SET usage_count = (
            SELECT COUNT(1) FROM content_tags WHERE content_tags.tag_id = tags.id
        )`); err != nil {
			return fmt.Errorf("recompute tag counts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET usage_count = (
            SELECT COUNT(1) FROM contents WHERE contents.category_id = categories.id
        )`); err != nil {
			return fmt.Errorf("recompute category counts: %w", err)
		}
		return nil
	})
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
