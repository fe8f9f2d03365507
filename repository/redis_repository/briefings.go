package redis_repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/briefer/models"
)

const (
	profileKey        = "reader:profile"
	briefingKeyPrefix = "briefing:"
)

// redisRepository implements repository.Repository using Redis. Records are
// serialized as JSON under fixed, stable keys; writes are last-writer-wins.
type redisRepository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) *redisRepository {
	return &redisRepository{client: client}
}

func (r *redisRepository) SaveProfile(ctx context.Context, profile models.ReaderProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, profileKey, data, 0).Err()
}

func (r *redisRepository) LoadProfile(ctx context.Context) (models.ReaderProfile, models.LoadKind, error) {
	val, err := r.client.Get(ctx, profileKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ReaderProfile{}, models.LoadEmpty, nil
		}
		return models.ReaderProfile{}, models.LoadEmpty, err
	}

	var profile models.ReaderProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		// Malformed stored data reads as absent; the kind keeps that
		// visible to tests.
		return models.ReaderProfile{}, models.LoadMalformed, nil
	}
	if profile.Validate() != nil {
		return models.ReaderProfile{}, models.LoadMalformed, nil
	}
	return profile, models.LoadOk, nil
}

func (r *redisRepository) SaveBriefing(ctx context.Context, profile models.ReaderProfile, briefing models.CachedBriefing) error {
	data, err := json.Marshal(briefing)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, briefingKey(profile), data, 0).Err()
}

func (r *redisRepository) LoadBriefing(ctx context.Context, profile models.ReaderProfile) (models.CachedBriefing, models.LoadKind, error) {
	val, err := r.client.Get(ctx, briefingKey(profile)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.CachedBriefing{}, models.LoadEmpty, nil
		}
		return models.CachedBriefing{}, models.LoadEmpty, err
	}

	var cached models.CachedBriefing
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return models.CachedBriefing{}, models.LoadMalformed, nil
	}
	return cached, models.LoadOk, nil
}

// briefingKey derives a stable cache key from the profile contents, so a
// changed profile naturally misses the old cache entry.
func briefingKey(profile models.ReaderProfile) string {
	return briefingKeyPrefix + profile.Fingerprint()
}
