package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nhsengland/innovation-service-backend-api-sub008/internal/domain"
)

const (
	prefCacheKeyPrefix = "notif:prefs:"
	prefCacheTTL       = 5 * time.Minute
)

// PreferenceRepository reads per-user email category preferences with a
// cache-first Redis layer. A nil Redis client (or a Redis error) degrades
// to store reads; preference lookups never fail just because the cache is
// down.
type PreferenceRepository struct {
	db     *pgxpool.Pool
	cache  *redis.Client
	logger *zap.Logger
}

func NewPreferenceRepository(db *pgxpool.Pool, cache *redis.Client, logger *zap.Logger) *PreferenceRepository {
	return &PreferenceRepository{db: db, cache: cache, logger: logger}
}

// EmailPreferences returns the user's configured categories. Categories
// absent from the map default to "send" at suppression time.
func (p *PreferenceRepository) EmailPreferences(ctx context.Context, userID string) (map[domain.PreferenceCategory]bool, error) {
	if cached, ok := p.fromCache(ctx, userID); ok {
		return cached, nil
	}

	query := `
		SELECT category, enabled
		FROM email_preferences
		WHERE user_id = $1
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prefs := make(map[domain.PreferenceCategory]bool)
	for rows.Next() {
		var category domain.PreferenceCategory
		var enabled bool
		if err := rows.Scan(&category, &enabled); err != nil {
			return nil, err
		}
		prefs[category] = enabled
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	p.toCache(ctx, userID, prefs)
	return prefs, nil
}

// UpsertPreference sets one category for a user and invalidates the cache.
func (p *PreferenceRepository) UpsertPreference(ctx context.Context, userID string, category domain.PreferenceCategory, enabled bool) error {
	query := `
		INSERT INTO email_preferences (user_id, category, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, category) DO UPDATE SET enabled = EXCLUDED.enabled
	`

	if _, err := p.db.Exec(ctx, query, userID, category, enabled); err != nil {
		return err
	}

	if p.cache != nil {
		if err := p.cache.Del(ctx, prefCacheKeyPrefix+userID).Err(); err != nil {
			p.logger.Warn("preference cache invalidation failed", zap.Error(err), zap.String("user_id", userID))
		}
	}
	return nil
}

func (p *PreferenceRepository) fromCache(ctx context.Context, userID string) (map[domain.PreferenceCategory]bool, bool) {
	if p.cache == nil {
		return nil, false
	}
	raw, err := p.cache.Get(ctx, prefCacheKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			p.logger.Warn("preference cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var prefs map[domain.PreferenceCategory]bool
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, false
	}
	return prefs, true
}

func (p *PreferenceRepository) toCache(ctx context.Context, userID string, prefs map[domain.PreferenceCategory]bool) {
	if p.cache == nil {
		return
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, prefCacheKeyPrefix+userID, raw, prefCacheTTL).Err(); err != nil {
		p.logger.Warn("preference cache write failed", zap.Error(err))
	}
}
