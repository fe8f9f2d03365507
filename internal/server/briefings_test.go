package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/briefer/internal/briefing"
	"github.com/mohammad-safakhou/briefer/models"
)

type memRepo struct {
	mu        sync.Mutex
	profile   *models.ReaderProfile
	briefing  *models.CachedBriefing
	malformed bool
}

func (r *memRepo) SaveProfile(ctx context.Context, profile models.ReaderProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = &profile
	return nil
}

func (r *memRepo) LoadProfile(ctx context.Context) (models.ReaderProfile, models.LoadKind, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profile == nil {
		return models.ReaderProfile{}, models.LoadEmpty, nil
	}
	return *r.profile, models.LoadOk, nil
}

func (r *memRepo) SaveBriefing(ctx context.Context, profile models.ReaderProfile, cached models.CachedBriefing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.briefing = &cached
	return nil
}

func (r *memRepo) LoadBriefing(ctx context.Context, profile models.ReaderProfile) (models.CachedBriefing, models.LoadKind, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.malformed {
		return models.CachedBriefing{}, models.LoadMalformed, nil
	}
	if r.briefing == nil {
		return models.CachedBriefing{}, models.LoadEmpty, nil
	}
	return *r.briefing, models.LoadOk, nil
}

type stubRunner struct {
	inProgress bool
	ran        chan models.ReaderProfile
}

func (s *stubRunner) RunBriefing(ctx context.Context, profile models.ReaderProfile, opts briefing.Options) (models.Briefing, error) {
	if s.ran != nil {
		s.ran <- profile
	}
	return models.Briefing{}, nil
}

func (s *stubRunner) InProgress(profile models.ReaderProfile) bool { return s.inProgress }

func (s *stubRunner) LastUpdated(profile models.ReaderProfile) time.Time { return time.Time{} }

func newTestHandler(repo *memRepo, runner *stubRunner) *BriefingHandler {
	return &BriefingHandler{Repo: repo, Orch: runner, Logger: discardLogger()}
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("error %v is not an *echo.HTTPError", err)
	}
	return he.Code
}

func TestPutProfile(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	h := newTestHandler(repo, &stubRunner{})

	rec, err := doJSON(t, h.putProfile, http.MethodPut, "/api/profile", `{"location":"Berlin","topics":"tech"}`)
	if err != nil {
		t.Fatalf("putProfile error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if repo.profile == nil || repo.profile.Topics != "tech" {
		t.Fatalf("profile not stored: %+v", repo.profile)
	}
}

func TestPutProfileRejectsEmptyTopics(t *testing.T) {
	t.Parallel()
	h := newTestHandler(&memRepo{}, &stubRunner{})

	_, err := doJSON(t, h.putProfile, http.MethodPut, "/api/profile", `{"location":"Berlin","topics":"  "}`)
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
}

func TestGetProfileNotSet(t *testing.T) {
	t.Parallel()
	h := newTestHandler(&memRepo{}, &stubRunner{})

	_, err := doJSON(t, h.getProfile, http.MethodGet, "/api/profile", "")
	if code := httpCode(t, err); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestTriggerRunStartsBriefing(t *testing.T) {
	t.Parallel()
	repo := &memRepo{profile: &models.ReaderProfile{Location: "Berlin", Topics: "tech"}}
	runner := &stubRunner{ran: make(chan models.ReaderProfile, 1)}
	h := newTestHandler(repo, runner)

	rec, err := doJSON(t, h.triggerRun, http.MethodPost, "/api/briefing/run", `{"use_cache":false}`)
	if err != nil {
		t.Fatalf("triggerRun error = %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
	select {
	case got := <-runner.ran:
		if got.Topics != "tech" {
			t.Fatalf("ran with profile %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run never started")
	}
}

func TestTriggerRunConflictsWhenInProgress(t *testing.T) {
	t.Parallel()
	repo := &memRepo{profile: &models.ReaderProfile{Location: "Berlin", Topics: "tech"}}
	h := newTestHandler(repo, &stubRunner{inProgress: true})

	_, err := doJSON(t, h.triggerRun, http.MethodPost, "/api/briefing/run", "")
	if code := httpCode(t, err); code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", code)
	}
}

func TestTriggerRunWithoutProfile(t *testing.T) {
	t.Parallel()
	h := newTestHandler(&memRepo{}, &stubRunner{})

	_, err := doJSON(t, h.triggerRun, http.MethodPost, "/api/briefing/run", "")
	if code := httpCode(t, err); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}

func TestGetBriefing(t *testing.T) {
	t.Parallel()
	repo := &memRepo{
		profile: &models.ReaderProfile{Location: "Berlin", Topics: "tech"},
		briefing: &models.CachedBriefing{
			Summary:   "Today.",
			Items:     []models.StoryItem{},
			UpdatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		},
	}
	h := newTestHandler(repo, &stubRunner{})

	rec, err := doJSON(t, h.getBriefing, http.MethodGet, "/api/briefing", "")
	if err != nil {
		t.Fatalf("getBriefing error = %v", err)
	}
	var resp BriefingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Summary != "Today." || !resp.UpdatedAt.Equal(repo.briefing.UpdatedAt) {
		t.Fatalf("response = %+v", resp)
	}
}

func TestGetBriefingMalformedReadsAsAbsent(t *testing.T) {
	t.Parallel()
	repo := &memRepo{
		profile:   &models.ReaderProfile{Location: "Berlin", Topics: "tech"},
		malformed: true,
	}
	h := newTestHandler(repo, &stubRunner{})

	_, err := doJSON(t, h.getBriefing, http.MethodGet, "/api/briefing", "")
	if code := httpCode(t, err); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
}
