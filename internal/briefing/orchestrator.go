// Package briefing composes the task poller, the normalizer, enrichment and
// the caches into one briefing run, and owns the run's failure envelope.
package briefing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohammad-safakhou/briefer/config"
	"github.com/mohammad-safakhou/briefer/internal/agenttask"
	"github.com/mohammad-safakhou/briefer/internal/enrich"
	"github.com/mohammad-safakhou/briefer/internal/normalize"
	"github.com/mohammad-safakhou/briefer/internal/store"
	"github.com/mohammad-safakhou/briefer/internal/telemetry"
	"github.com/mohammad-safakhou/briefer/models"
	"github.com/mohammad-safakhou/briefer/repository"
)

// ErrRunInProgress rejects a second briefing run for a profile whose
// previous run has not finished.
var ErrRunInProgress = errors.New("briefing run already in progress for this profile")

// DataPath names the source a briefing was built from.
type DataPath string

const (
	PathCached DataPath = "cached"
	PathDemo   DataPath = "demo"
	PathLive   DataPath = "live"
)

// Update is one possibly-partial draft surfaced while a run is under way.
type Update struct {
	Stage   string
	Summary string
	Items   []models.StoryItem
}

// Options tune a single run.
type Options struct {
	// UseCache makes the run return the last persisted result when one
	// exists, falling through to a fresh run otherwise.
	UseCache bool
	// Trace receives human-readable progress lines.
	Trace func(entry string)
	// OnUpdate receives intermediate drafts before the final result.
	OnUpdate func(Update)
}

// TaskRunner is the slice of the agent-task client the orchestrator needs.
type TaskRunner interface {
	Run(ctx context.Context, prompt string, observe agenttask.Observer) (agenttask.Task, error)
	FetchResultFile(ctx context.Context, url string) (string, error)
}

// RunState tracks one in-flight run. There is no cancellation of a running
// loop; the flag only prevents a second run from starting.
type RunState struct {
	RunID     string
	Path      DataPath
	StartedAt time.Time
}

// Orchestrator drives briefing runs. One orchestrator serves all profiles;
// per-profile state lives in the inflight map.
type Orchestrator struct {
	cfg     *config.Config
	logger  *log.Logger
	metrics *telemetry.Metrics
	repo    repository.Repository
	history *store.Store // optional; nil disables run history
	tasks   TaskRunner
	images  enrich.Generator

	mu          sync.Mutex
	inflight    map[string]*RunState
	lastUpdated map[string]time.Time
}

func New(cfg *config.Config, logger *log.Logger, metrics *telemetry.Metrics, repo repository.Repository, history *store.Store, tasks TaskRunner, images enrich.Generator) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		cfg:         cfg,
		logger:      logger,
		metrics:     metrics,
		repo:        repo,
		history:     history,
		tasks:       tasks,
		images:      images,
		inflight:    make(map[string]*RunState),
		lastUpdated: make(map[string]time.Time),
	}
}

// InProgress reports whether a run is currently in flight for the profile.
func (o *Orchestrator) InProgress(profile models.ReaderProfile) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[profile.Fingerprint()] != nil
}

// LastUpdated returns when the profile's briefing was last attempted.
func (o *Orchestrator) LastUpdated(profile models.ReaderProfile) time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastUpdated[profile.Fingerprint()]
}

// RunBriefing produces a briefing for the profile over one of three data
// paths, in strict priority order: the cache (when requested), the local demo
// generator (when no agent credentials are configured), or a live agent run.
// A second call for the same profile while one is in flight returns
// ErrRunInProgress without effect.
func (o *Orchestrator) RunBriefing(ctx context.Context, profile models.ReaderProfile, opts Options) (models.Briefing, error) {
	if err := profile.Validate(); err != nil {
		return models.Briefing{}, err
	}
	fp := profile.Fingerprint()

	o.mu.Lock()
	if o.inflight[fp] != nil {
		o.mu.Unlock()
		return models.Briefing{}, ErrRunInProgress
	}
	state := &RunState{RunID: uuid.NewString(), StartedAt: time.Now()}
	o.inflight[fp] = state
	o.mu.Unlock()

	started := time.Now()
	defer func() {
		// The finally step: stamp the attempt and clear the flag no
		// matter which path ran or how it ended.
		o.mu.Lock()
		o.lastUpdated[fp] = time.Now()
		delete(o.inflight, fp)
		o.mu.Unlock()
		if o.metrics != nil {
			o.metrics.RunDuration.Observe(time.Since(started).Seconds())
		}
	}()

	briefing, path, err := o.runPath(ctx, profile, state, opts)
	o.recordRun(ctx, fp, state, path, err)
	if err != nil {
		o.logger.Printf("briefing run failed (%s path): %v", path, err)
		o.traceOpt(opts, fmt.Sprintf("Briefing failed: %v", err))
		return models.Briefing{}, err
	}
	return briefing, nil
}

func (o *Orchestrator) runPath(ctx context.Context, profile models.ReaderProfile, state *RunState, opts Options) (models.Briefing, DataPath, error) {
	fp := profile.Fingerprint()

	if opts.UseCache {
		cached, kind, err := o.repo.LoadBriefing(ctx, profile)
		if err != nil {
			o.logger.Printf("cache read failed, falling through: %v", err)
		}
		if o.metrics != nil {
			o.metrics.CacheReads.WithLabelValues(kind.String()).Inc()
		}
		if err == nil && kind == models.LoadOk {
			state.Path = PathCached
			o.traceOpt(opts, "Loaded briefing from cache.")
			return models.Briefing{Summary: cached.Summary, Items: cached.Items}, PathCached, nil
		}
		// missing or malformed reads as absent; fall through
	}

	if !o.cfg.Agent.Enabled() {
		state.Path = PathDemo
		o.traceOpt(opts, "No agent credentials configured; composing demo briefing.")
		briefing := DemoBriefing(profile)
		o.update(opts, Update{Stage: "normalized", Summary: briefing.Summary, Items: briefing.Items})
		o.enrichItems(ctx, briefing.Items, opts)
		if err := o.persist(ctx, profile, briefing); err != nil {
			o.logger.Printf("briefing cache write failed for %s: %v", fp, err)
		}
		return briefing, PathDemo, nil
	}

	state.Path = PathLive
	prompt := BuildPrompt(o.cfg.Agent.SystemPrompt, profile)
	o.traceOpt(opts, "Research task submitted to agent service.")

	task, err := o.tasks.Run(ctx, prompt, func(t agenttask.Task) {
		if o.metrics != nil {
			o.metrics.PollAttempts.Inc()
		}
		o.traceOpt(opts, fmt.Sprintf("Agent task %s: %s", t.ID, t.Status))
		if text := t.OutputText(); text != "" {
			draft := normalize.Normalize(text)
			o.update(opts, Update{Stage: "draft", Summary: draft.Summary, Items: draft.Items})
		}
	})
	if err != nil {
		return models.Briefing{}, PathLive, err
	}

	text := task.OutputText()
	if fileURL := task.ResultFileURL(); fileURL != "" {
		// The result file, when present, is richer than the inline
		// transcript and wins.
		fileText, ferr := o.tasks.FetchResultFile(ctx, fileURL)
		if ferr != nil {
			o.logger.Printf("result file fetch failed, using inline output: %v", ferr)
		} else if fileText != "" {
			text = fileText
		}
	}

	briefing := normalize.Normalize(text)
	o.update(opts, Update{Stage: "normalized", Summary: briefing.Summary, Items: briefing.Items})
	o.enrichItems(ctx, briefing.Items, opts)
	if err := o.persist(ctx, profile, briefing); err != nil {
		o.logger.Printf("briefing cache write failed for %s: %v", fp, err)
	}
	return briefing, PathLive, nil
}

// enrichItems attaches generated illustrations, strictly in item order, one
// request at a time. Failures are per-item and non-fatal, except a
// credential failure, which halts all remaining attempts for this run.
func (o *Orchestrator) enrichItems(ctx context.Context, items []models.StoryItem, opts Options) {
	if o.images == nil || !o.cfg.Images.Enabled {
		return
	}
	for i := range items {
		if items[i].MediaURL != "" {
			continue
		}
		prompt := illustrationPrompt(items[i])
		url, err := o.images.Illustrate(ctx, prompt)
		if err != nil {
			if o.metrics != nil {
				o.metrics.EnrichmentFailures.Inc()
			}
			if errors.Is(err, enrich.ErrMissingCredentials) {
				if o.metrics != nil {
					o.metrics.EnrichmentHalts.Inc()
				}
				o.traceOpt(opts, "Illustration service credentials missing; skipping remaining stories.")
				return
			}
			o.traceOpt(opts, fmt.Sprintf("Illustration failed for %q.", items[i].Title))
			o.logger.Printf("illustration failed for %q: %v", items[i].Title, err)
			continue
		}
		items[i].MediaURL = url
		items[i].MediaType = models.MediaImage
	}
}

func illustrationPrompt(item models.StoryItem) string {
	prompt := "Editorial newspaper illustration, clean vector style: " + item.Title
	if item.Summary != "" {
		prompt += ". " + item.Summary
	}
	return prompt
}

func (o *Orchestrator) persist(ctx context.Context, profile models.ReaderProfile, briefing models.Briefing) error {
	return o.repo.SaveBriefing(ctx, profile, models.CachedBriefing{
		Summary:   briefing.Summary,
		Items:     briefing.Items,
		UpdatedAt: time.Now().UTC(),
	})
}

// recordRun writes run history when a store is wired and counts the outcome.
func (o *Orchestrator) recordRun(ctx context.Context, fp string, state *RunState, path DataPath, runErr error) {
	status := store.RunStatusSucceeded
	var errMsg *string
	if runErr != nil {
		status = store.RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}
	if o.metrics != nil {
		o.metrics.RunsTotal.WithLabelValues(string(path), status).Inc()
	}
	if o.history == nil {
		return
	}
	// History is best-effort; a bookkeeping failure must not fail the run.
	if err := o.history.CreateRun(ctx, state.RunID, fp, string(path)); err != nil {
		o.logger.Printf("run history create failed: %v", err)
		return
	}
	if err := o.history.FinishRun(ctx, state.RunID, status, errMsg); err != nil {
		o.logger.Printf("run history finish failed: %v", err)
	}
}

func (o *Orchestrator) traceOpt(opts Options, entry string) {
	if opts.Trace != nil {
		opts.Trace(entry)
	}
}

func (o *Orchestrator) update(opts Options, u Update) {
	if opts.OnUpdate != nil {
		opts.OnUpdate(u)
	}
}
