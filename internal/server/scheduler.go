package server

import (
	"context"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/briefer/internal/briefing"
	"github.com/mohammad-safakhou/briefer/internal/store"
	"github.com/mohammad-safakhou/briefer/models"
	"github.com/mohammad-safakhou/briefer/repository"
)

// Scheduler refreshes the stored profile's briefing on the configured cron
// schedule. The redis lock keeps replicas from firing duplicate runs.
type Scheduler struct {
	Repo    repository.Repository
	History *store.Store
	Orch    BriefingRunner
	Rdb     *redis.Client
	Cron    string
	Stop    chan struct{}
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *Scheduler) tick() {
	ctx := context.Background()
	profile, kind, err := s.Repo.LoadProfile(ctx)
	if err != nil || kind != models.LoadOk {
		return
	}

	var last *time.Time
	if s.History != nil {
		last, _ = s.History.LatestRunTime(ctx, profile.Fingerprint())
	}
	if !isDue(s.Cron, last) {
		return
	}
	if s.Orch.InProgress(profile) {
		return
	}

	if s.Rdb != nil {
		lockKey := "sched:lock:" + profile.Fingerprint()
		ok, _ := s.Rdb.SetNX(ctx, lockKey, "1", 2*time.Minute).Result()
		if !ok {
			return
		}
		defer s.Rdb.Del(ctx, lockKey)
	}

	go func(profile models.ReaderProfile) {
		// jitter to avoid stampedes
		time.Sleep(time.Duration(250+int64(time.Now().UnixNano()%250)) * time.Millisecond)
		if _, err := s.Orch.RunBriefing(context.Background(), profile, briefing.Options{}); err != nil {
			log.Printf("[SCHED] briefing refresh failed: %v", err)
		}
	}(profile)
}

// isDue determines if a profile with cronSpec should refresh now based on the
// last run time. Supports "@daily", "@hourly", and standard 5-field cron
// expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			// Fallback: treat as @daily if invalid
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
