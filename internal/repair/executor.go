package repair

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"inksync/internal/config"
	"inksync/internal/logging"
	"inksync/internal/match"
	"inksync/internal/store"
	"inksync/internal/taxonomy"
)

// Tally summarizes what a repair run changed. Every counter reflects actual
// writes; a second run over a repaired mirror produces an all-zero tally.
type Tally struct {
	TagsCreated       int `json:"tags_created"`
	TagsMerged        int `json:"tags_merged"`
	CategoriesCreated int `json:"categories_created"`
	CategoriesMerged  int `json:"categories_merged"`
	ItemsRelinked     int `json:"items_relinked"`
	FieldsSynced      int `json:"fields_synced"`
	ItemsFailed       int `json:"items_failed"`
}

// Failure records one content item whose repair did not complete. The batch
// continues past failures.
type Failure struct {
	Path  string
	RowID int64
	Err   string
}

// Executor applies idempotent corrective writes to the mirror. It is the
// only component that mutates the store during a run.
type Executor struct {
	store      *store.Store
	normalizer *taxonomy.Normalizer
	workers    int
	logger     *slog.Logger

	mu       sync.Mutex
	tagCache map[string]*store.TagEntity
	tally    Tally
	failures []Failure
}

// New constructs an Executor.
func New(s *store.Store, normalizer *taxonomy.Normalizer, cfg config.Repair, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		store:      s,
		normalizer: normalizer,
		workers:    workers,
		logger:     logging.NewComponentLogger(logger, "repair"),
		tagCache:   map[string]*store.TagEntity{},
	}
}

// Run repairs the mirror against the matched pairs: synonym-driven entity
// merges first, then per-item tag relinks and field syncs with a bounded
// worker pool, then a usage-count recompute. Item failures are recorded and
// the batch continues.
func (e *Executor) Run(ctx context.Context, matched []match.Pair, lookup *store.Lookup) (Tally, []Failure, error) {
	e.mu.Lock()
	e.tally = Tally{}
	e.failures = nil
	e.tagCache = make(map[string]*store.TagEntity, len(lookup.TagsBySlug))
	for slug, tag := range lookup.TagsBySlug {
		e.tagCache[slug] = tag
	}
	e.mu.Unlock()

	if err := e.mergeSynonymEntities(ctx, lookup); err != nil {
		return e.snapshotTally(), e.snapshotFailures(), err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for _, pair := range matched {
		pair := pair
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if err := e.repairItem(groupCtx, pair, lookup); err != nil {
				e.recordFailure(pair, err)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return e.snapshotTally(), e.snapshotFailures(), err
	}

	if err := e.store.RecomputeUsageCounts(ctx); err != nil {
		return e.snapshotTally(), e.snapshotFailures(), fmt.Errorf("recompute usage counts: %w", err)
	}

	tally := e.snapshotTally()
	e.logger.Info("repair complete",
		logging.Int("tags_created", tally.TagsCreated),
		logging.Int("tags_merged", tally.TagsMerged),
		logging.Int("items_relinked", tally.ItemsRelinked),
		logging.Int("fields_synced", tally.FieldsSynced),
		logging.Int("items_failed", tally.ItemsFailed))
	return tally, e.snapshotFailures(), nil
}

// mergeSynonymEntities folds every tag and category whose name is a known
// synonym variant into its canonical entity. Similarity scores never reach
// this code path; only the curated synonym table drives merges.
func (e *Executor) mergeSynonymEntities(ctx context.Context, lookup *store.Lookup) error {
	tagIDs := make([]int64, 0, len(lookup.TagsByID))
	for id := range lookup.TagsByID {
		tagIDs = append(tagIDs, id)
	}
	sort.Slice(tagIDs, func(i, j int) bool { return tagIDs[i] < tagIDs[j] })

	for _, id := range tagIDs {
		tag := lookup.TagsByID[id]
		if !e.normalizer.IsSynonym(tag.Name) {
			continue
		}
		target, _, err := e.ensureTag(ctx, e.normalizer.Resolve(tag.Name))
		if err != nil {
			return fmt.Errorf("resolve merge target for tag %q: %w", tag.Name, err)
		}
		if target == nil || target.ID == tag.ID {
			continue
		}
		if err := e.store.MergeTag(ctx, tag.ID, target.ID); err != nil {
			return fmt.Errorf("merge tag %q into %q: %w", tag.Name, target.Name, err)
		}
		e.mu.Lock()
		delete(e.tagCache, tag.Slug)
		e.tally.TagsMerged++
		e.mu.Unlock()
		e.logger.Info("merged tag",
			logging.String("from", tag.Name),
			logging.String("into", target.Name))
	}

	categoryIDs := make([]int64, 0, len(lookup.CategoriesByID))
	for id := range lookup.CategoriesByID {
		categoryIDs = append(categoryIDs, id)
	}
	sort.Slice(categoryIDs, func(i, j int) bool { return categoryIDs[i] < categoryIDs[j] })

	for _, id := range categoryIDs {
		category := lookup.CategoriesByID[id]
		if !e.normalizer.IsSynonym(category.Name) {
			continue
		}
		canonical := e.normalizer.Resolve(category.Name)
		target, err := e.store.GetCategoryBySlug(ctx, e.normalizer.Canonicalize(canonical))
		if err != nil {
			return fmt.Errorf("resolve merge target for category %q: %w", category.Name, err)
		}
		if target == nil {
			if target, err = e.store.CreateCategory(ctx, canonical, e.normalizer.Canonicalize(canonical)); err != nil {
				return fmt.Errorf("create category %q: %w", canonical, err)
			}
			e.mu.Lock()
			e.tally.CategoriesCreated++
			e.mu.Unlock()
		}
		if target.ID == category.ID {
			continue
		}
		if err := e.store.MergeCategory(ctx, category.ID, target.ID); err != nil {
			return fmt.Errorf("merge category %q into %q: %w", category.Name, target.Name, err)
		}
		e.mu.Lock()
		e.tally.CategoriesMerged++
		e.mu.Unlock()
		e.logger.Info("merged category",
			logging.String("from", category.Name),
			logging.String("into", target.Name))
	}
	return nil
}

// repairItem brings one matched row in line with its file: tags first so
// relink has ids to reference, then scalar fields, then the category link.
func (e *Executor) repairItem(ctx context.Context, pair match.Pair, lookup *store.Lookup) error {
	tagIDs, err := e.EnsureTagsExist(ctx, pair.File.Tags)
	if err != nil {
		return err
	}

	current := append([]int64(nil), lookup.Associations[pair.Row.ID]...)
	if !sameIDSet(current, tagIDs) {
		if err := e.store.ReplaceAssociations(ctx, pair.Row.ID, tagIDs); err != nil {
			return fmt.Errorf("relink tags: %w", err)
		}
		e.mu.Lock()
		e.tally.ItemsRelinked++
		e.mu.Unlock()
	}

	if pair.File.Source != "" {
		changed, err := e.store.SyncContentField(ctx, pair.Row.ID, "source", pair.File.Source)
		if err != nil {
			return err
		}
		if changed {
			e.mu.Lock()
			e.tally.FieldsSynced++
			e.mu.Unlock()
		}
	}

	if pair.File.Category != "" {
		if err := e.syncCategory(ctx, pair); err != nil {
			return err
		}
	}
	return nil
}

// EnsureTagsExist resolves every name to a tag id, creating missing tags.
// On a slug uniqueness conflict it re-reads (another worker may have won the
// race), then retries once with a disambiguated slug, then warns and skips.
func (e *Executor) EnsureTagsExist(ctx context.Context, names []string) ([]int64, error) {
	var ids []int64
	seen := map[int64]bool{}
	for _, name := range names {
		tag, _, err := e.ensureTag(ctx, name)
		if err != nil {
			return nil, err
		}
		if tag == nil || seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		ids = append(ids, tag.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ensureTag returns the tag for a name, creating it when absent. A nil tag
// with nil error means the name was skipped after exhausting the conflict
// retry. The bool reports whether a new tag was created.
func (e *Executor) ensureTag(ctx context.Context, name string) (*store.TagEntity, bool, error) {
	canonical := e.normalizer.Resolve(name)
	slug := e.normalizer.Canonicalize(name)
	if slug == "" {
		return nil, false, nil
	}

	e.mu.Lock()
	if tag, ok := e.tagCache[slug]; ok {
		e.mu.Unlock()
		return tag, false, nil
	}
	e.mu.Unlock()

	tag, created, err := e.createTagWithRetry(ctx, canonical, slug)
	if err != nil || tag == nil {
		return nil, false, err
	}

	e.mu.Lock()
	e.tagCache[slug] = tag
	if created {
		e.tally.TagsCreated++
	}
	e.mu.Unlock()
	return tag, created, nil
}

func (e *Executor) createTagWithRetry(ctx context.Context, name, slug string) (*store.TagEntity, bool, error) {
	tag, err := e.store.CreateTag(ctx, name, slug)
	if err == nil {
		return tag, true, nil
	}
	if !store.IsUniqueViolation(err) {
		return nil, false, err
	}

	// Lost a race or collided with an existing slug; the winner serves.
	if existing, lookupErr := e.store.GetTagBySlug(ctx, slug); lookupErr != nil {
		return nil, false, lookupErr
	} else if existing != nil {
		return existing, false, nil
	}

	retrySlug := slug + "-2"
	tag, err = e.store.CreateTag(ctx, name, retrySlug)
	if err == nil {
		return tag, true, nil
	}
	if store.IsUniqueViolation(err) {
		e.logger.Warn("skipping tag after slug conflict",
			logging.String("name", name),
			logging.String("slug", slug))
		return nil, false, nil
	}
	return nil, false, err
}

func (e *Executor) syncCategory(ctx context.Context, pair match.Pair) error {
	canonical := e.normalizer.Resolve(pair.File.Category)
	slug := e.normalizer.Canonicalize(pair.File.Category)
	if slug == "" {
		return nil
	}

	category, err := e.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if category == nil {
		if category, err = e.store.CreateCategory(ctx, canonical, slug); err != nil {
			if !store.IsUniqueViolation(err) {
				return fmt.Errorf("create category %q: %w", canonical, err)
			}
			if category, err = e.store.GetCategoryBySlug(ctx, slug); err != nil || category == nil {
				return fmt.Errorf("category %q vanished after conflict: %w", canonical, err)
			}
		} else {
			e.mu.Lock()
			e.tally.CategoriesCreated++
			e.mu.Unlock()
		}
	}

	changed, err := e.store.SyncContentCategory(ctx, pair.Row.ID, &category.ID)
	if err != nil {
		return err
	}
	if changed {
		e.mu.Lock()
		e.tally.FieldsSynced++
		e.mu.Unlock()
	}
	return nil
}

func (e *Executor) recordFailure(pair match.Pair, err error) {
	e.mu.Lock()
	e.tally.ItemsFailed++
	e.failures = append(e.failures, Failure{
		Path:  pair.File.Path,
		RowID: pair.Row.ID,
		Err:   err.Error(),
	})
	e.mu.Unlock()
	e.logger.Warn("item repair failed",
		logging.String("path", pair.File.Path),
		logging.Int64("row_id", pair.Row.ID),
		logging.Error(err))
}

func (e *Executor) snapshotTally() Tally {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tally
}

func (e *Executor) snapshotFailures() []Failure {
	e.mu.Lock()
	defer e.mu.Unlock()
	failures := make([]Failure, len(e.failures))
	copy(failures, e.failures)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return failures
}

func sameIDSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int64(nil), a...)
	bs := append([]int64(nil), b...)
	sort.Slice(as, func(i, j int) bool { return as[i] < as[j] })
	sort.Slice(bs, func(i, j int) bool { return bs[i] < bs[j] })
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
