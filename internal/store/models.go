package store

import "time"

// ContentRow is one row in the contents table. The id is the only stable
// join key across runs; title serves as the practical natural key when
// matching against files, because files carry no persisted store identity.
type ContentRow struct {
	ID          int64
	Title       string
	Slug        string
	CategoryID  *int64
	Source      string
	ContentType string
	Status      string
	Content     string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// TagEntity is one row in the tags table. UsageCount is denormalized and
// must equal the true association count; RecomputeUsageCounts enforces it.
type TagEntity struct {
	ID         int64
	Name       string
	Slug       string
	UsageCount int
}

// CategoryEntity is one row in the categories table. Unlike tags, a content
// row links at most one category via its category_id column.
type CategoryEntity struct {
	ID         int64
	Name       string
	Slug       string
	UsageCount int
}

// Association is one (content, tag) pair from the join table.
type Association struct {
	ContentID int64
	TagID     int64
}
