package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

const contentColumns = `c.id, c.title, c.slug, c.category_id, c.source, t.name, c.status, c.content, c.created_at, c.published_at`

// ListContents returns all content rows ordered by id, optionally filtered
// by content type name ("weekly", "blog"). An empty contentType matches all.
func (s *Store) ListContents(ctx context.Context, contentType string) ([]*ContentRow, error) {
	query := `SELECT ` + contentColumns + `
        FROM contents c JOIN content_types t ON t.id = c.content_type_id`
	args := []any{}
	if contentType != "" {
		query += ` WHERE t.name = ?`
		args = append(args, contentType)
	}
	query += ` ORDER BY c.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	var contents []*ContentRow
	for rows.Next() {
		row, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, row)
	}
	return contents, rows.Err()
}

// GetContentByID fetches a single content row, or nil when absent.
func (s *Store) GetContentByID(ctx context.Context, id int64) (*ContentRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contentColumns+`
        FROM contents c JOIN content_types t ON t.id = c.content_type_id
        WHERE c.id = ?`, id)
	content, err := scanContent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return content, nil
}

// ListTags returns all tags ordered by id.
func (s *Store) ListTags(ctx context.Context) ([]*TagEntity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, usage_count FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []*TagEntity
	for rows.Next() {
		var tag TagEntity
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.UsageCount); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

// GetTagBySlug returns the tag with the given slug, or nil when absent.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*TagEntity, error) {
	var tag TagEntity
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, usage_count FROM tags WHERE slug = ?`, slug,
	).Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.UsageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return &tag, nil
}

// ListCategories returns all categories ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]*CategoryEntity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, usage_count FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*CategoryEntity
	for rows.Next() {
		var category CategoryEntity
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.UsageCount); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

// GetCategoryBySlug returns the category with the given slug, or nil when absent.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*CategoryEntity, error) {
	var category CategoryEntity
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, usage_count FROM categories WHERE slug = ?`, slug,
	).Scan(&category.ID, &category.Name, &category.Slug, &category.UsageCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return &category, nil
}

// ListAssociations returns every (content, tag) pair ordered by content then
// tag id.
func (s *Store) ListAssociations(ctx context.Context) ([]Association, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content_id, tag_id FROM content_tags ORDER BY content_id, tag_id`)
	if err != nil {
		return nil, fmt.Errorf("list associations: %w", err)
	}
	defer rows.Close()

	var associations []Association
	for rows.Next() {
		var assoc Association
		if err := rows.Scan(&assoc.ContentID, &assoc.TagID); err != nil {
			return nil, err
		}
		associations = append(associations, assoc)
	}
	return associations, rows.Err()
}

// TagsForContent returns the tag ids associated with a content row, sorted.
func (s *Store) TagsForContent(ctx context.Context, contentID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id FROM content_tags WHERE content_id = ? ORDER BY tag_id`, contentID)
	if err != nil {
		return nil, fmt.Errorf("tags for content: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Lookup is a per-run snapshot of the mirror built once and threaded through
// the matcher, diagnoser, and repair executor. It replaces the per-script
// global tag/category maps the migration scripts used to rebuild everywhere.
type Lookup struct {
	Contents         []*ContentRow
	TagsByID         map[int64]*TagEntity
	TagsBySlug       map[string]*TagEntity
	CategoriesByID   map[int64]*CategoryEntity
	CategoriesBySlug map[string]*CategoryEntity
	// Associations maps content id to its sorted tag ids.
	Associations map[int64][]int64
}

// BuildLookup loads the full mirror state in one pass.
func (s *Store) BuildLookup(ctx context.Context, contentType string) (*Lookup, error) {
	contents, err := s.ListContents(ctx, contentType)
	if err != nil {
		return nil, err
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	associations, err := s.ListAssociations(ctx)
	if err != nil {
		return nil, err
	}

	lookup := &Lookup{
		Contents:         contents,
		TagsByID:         make(map[int64]*TagEntity, len(tags)),
		TagsBySlug:       make(map[string]*TagEntity, len(tags)),
		CategoriesByID:   make(map[int64]*CategoryEntity, len(categories)),
		CategoriesBySlug: make(map[string]*CategoryEntity, len(categories)),
		Associations:     make(map[int64][]int64),
	}
	for _, tag := range tags {
		lookup.TagsByID[tag.ID] = tag
		lookup.TagsBySlug[tag.Slug] = tag
	}
	for _, category := range categories {
		lookup.CategoriesByID[category.ID] = category
		lookup.CategoriesBySlug[category.Slug] = category
	}
	for _, assoc := range associations {
		lookup.Associations[assoc.ContentID] = append(lookup.Associations[assoc.ContentID], assoc.TagID)
	}
	return lookup, nil
}

// TagNames returns all tag display names sorted for deterministic iteration.
func (l *Lookup) TagNames() []string {
	names := make([]string, 0, len(l.TagsByID))
	for _, tag := range l.TagsByID {
		names = append(names, tag.Name)
	}
	sort.Strings(names)
	return names
}

// AssociationCount returns the true number of associations for a tag.
func (l *Lookup) AssociationCount(tagID int64) int {
	count := 0
	for _, tagIDs := range l.Associations {
		for _, id := range tagIDs {
			if id == tagID {
				count++
			}
		}
	}
	return count
}

func scanContent(scanner interface{ Scan(dest ...any) error }) (*ContentRow, error) {
	var (
		id           int64
		title        string
		slug         string
		categoryID   sql.NullInt64
		source       sql.NullString
		contentType  string
		status       string
		body         sql.NullString
		createdRaw   string
		publishedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &slug, &categoryID, &source, &contentType, &status, &body, &createdRaw, &publishedRaw); err != nil {
		return nil, err
	}

	row := &ContentRow{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Source:      source.String,
		ContentType: contentType,
		Status:      status,
		Content:     body.String,
	}
	if categoryID.Valid {
		value := categoryID.Int64
		row.CategoryID = &value
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		row.CreatedAt = created
	}
	if publishedRaw.Valid {
		if published, err := parseTimeString(publishedRaw.String); err == nil {
			row.PublishedAt = &published
		}
	}
	return row, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
