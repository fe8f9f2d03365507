package repository

import (
	"context"

	"github.com/mohammad-safakhou/briefer/models"
)

// ProfileRepository stores the single reader profile under a fixed key.
type ProfileRepository interface {
	SaveProfile(ctx context.Context, profile models.ReaderProfile) error
	// LoadProfile never fails on malformed stored data: the returned
	// LoadKind tags the outcome and malformed records read as absent.
	LoadProfile(ctx context.Context) (models.ReaderProfile, models.LoadKind, error)
}

// BriefingRepository caches the last completed briefing per profile.
type BriefingRepository interface {
	SaveBriefing(ctx context.Context, profile models.ReaderProfile, briefing models.CachedBriefing) error
	LoadBriefing(ctx context.Context, profile models.ReaderProfile) (models.CachedBriefing, models.LoadKind, error)
}

// Repository bundles both record types behind one handle; the redis
// implementation backs both with the same client.
type Repository interface {
	ProfileRepository
	BriefingRepository
}
