package prefs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/encoding/json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/logger"
	"github.com/glefebvre/mediadesk/internal/models"
)

const (
	// CollectionsKey is the preference key holding the recent collections
	CollectionsKey = "collections"

	// MaxRecent caps the recent collections list
	MaxRecent = 3
)

// RecentCollections is the most-recently-used list of collections picked in
// the collection picker. Entries are ordered oldest first.
//
// Writers in separate processes race with last-write-wins semantics.
type RecentCollections struct {
	db     *gorm.DB
	logger *logger.Logger
	mu     sync.Mutex
}

// NewRecentCollections creates the cache on top of a preference store
func NewRecentCollections(db *gorm.DB, log *logger.Logger) *RecentCollections {
	if log == nil {
		log = logger.AppLogger()
	}
	return &RecentCollections{db: db, logger: log}
}

// Load returns the persisted entries. A missing or unreadable value yields
// an empty list and is never reported as an error.
func (r *RecentCollections) Load(ctx context.Context) []models.RecentCollection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *RecentCollections) load(ctx context.Context) []models.RecentCollection {
	var pref models.Preference
	err := r.db.WithContext(ctx).Where(&models.Preference{Key: CollectionsKey}).Take(&pref).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.WithFields(map[string]interface{}{
				"key":   CollectionsKey,
				"error": err,
			}).Warn("recent collections unavailable")
		}
		return []models.RecentCollection{}
	}

	var entries []models.RecentCollection
	if err := json.Unmarshal([]byte(pref.Value), &entries); err != nil {
		r.logger.WithFields(map[string]interface{}{
			"key":   CollectionsKey,
			"error": err,
		}).Warn("ignoring corrupt recent collections")
		return []models.RecentCollection{}
	}
	if entries == nil {
		return []models.RecentCollection{}
	}
	return entries
}

// Remember moves (id, name) to the most recent position and persists at most
// MaxRecent entries. It returns the stored list.
func (r *RecentCollections) Remember(ctx context.Context, id int, name string) ([]models.RecentCollection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := Push(r.load(ctx), models.RecentCollection{ID: id, Name: name})

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, apperrors.StoreError("failed to encode recent collections", err)
	}

	pref := models.Preference{
		Key:       CollectionsKey,
		Value:     string(data),
		UpdatedAt: time.Now().UTC(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return nil, apperrors.StoreError("failed to save recent collections", err).
			WithContext("key", CollectionsKey)
	}

	return entries, nil
}

// Push removes any entry with the same id, appends entry and keeps the last
// MaxRecent entries. The input slice is not modified.
func Push(entries []models.RecentCollection, entry models.RecentCollection) []models.RecentCollection {
	out := make([]models.RecentCollection, 0, len(entries)+1)
	for _, e := range entries {
		if e.ID != entry.ID {
			out = append(out, e)
		}
	}
	out = append(out, entry)
	if len(out) > MaxRecent {
		out = out[len(out)-MaxRecent:]
	}
	return out
}
