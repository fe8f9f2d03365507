package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/briefer/internal/briefing"
	"github.com/mohammad-safakhou/briefer/internal/store"
	"github.com/mohammad-safakhou/briefer/models"
	"github.com/mohammad-safakhou/briefer/repository"
)

// BriefingRunner is the orchestrator surface the handlers need.
type BriefingRunner interface {
	RunBriefing(ctx context.Context, profile models.ReaderProfile, opts briefing.Options) (models.Briefing, error)
	InProgress(profile models.ReaderProfile) bool
	LastUpdated(profile models.ReaderProfile) time.Time
}

type BriefingHandler struct {
	Repo    repository.Repository
	Orch    BriefingRunner
	History *store.Store
	Logger  *log.Logger
}

func (h *BriefingHandler) Register(g *echo.Group, secret []byte) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) })
	g.GET("/profile", h.getProfile)
	g.PUT("/profile", h.putProfile)
	g.POST("/briefing/run", h.triggerRun)
	g.GET("/briefing", h.getBriefing)
	g.GET("/briefing/runs", h.listRuns)
}

func (h *BriefingHandler) getProfile(c echo.Context) error {
	profile, kind, err := h.Repo.LoadProfile(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if kind != models.LoadOk {
		return echo.NewHTTPError(http.StatusNotFound, models.ErrProfileNotFound.Error())
	}
	return c.JSON(http.StatusOK, ProfileResponse{Location: profile.Location, Topics: profile.Topics})
}

func (h *BriefingHandler) putProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	profile := models.ReaderProfile{Location: req.Location, Topics: req.Topics}
	if err := profile.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Repo.SaveProfile(c.Request().Context(), profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ProfileResponse{Location: profile.Location, Topics: profile.Topics})
}

// triggerRun starts a briefing run for the stored profile in the background.
// A run already in flight for the profile is a conflict, not a queue.
func (h *BriefingHandler) triggerRun(c echo.Context) error {
	profile, kind, err := h.Repo.LoadProfile(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if kind != models.LoadOk {
		return echo.NewHTTPError(http.StatusNotFound, models.ErrProfileNotFound.Error())
	}
	var req RunTriggerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if h.Orch.InProgress(profile) {
		return echo.NewHTTPError(http.StatusConflict, briefing.ErrRunInProgress.Error())
	}
	go func() {
		_, err := h.Orch.RunBriefing(context.Background(), profile, briefing.Options{UseCache: req.UseCache})
		if err != nil && !errors.Is(err, briefing.ErrRunInProgress) {
			h.Logger.Printf("briefing run failed: %v", err)
		}
	}()
	return c.JSON(http.StatusAccepted, RunAcceptedResponse{Status: "accepted"})
}

func (h *BriefingHandler) getBriefing(c echo.Context) error {
	profile, kind, err := h.Repo.LoadProfile(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if kind != models.LoadOk {
		return echo.NewHTTPError(http.StatusNotFound, models.ErrProfileNotFound.Error())
	}
	cached, kind, err := h.Repo.LoadBriefing(c.Request().Context(), profile)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if kind != models.LoadOk {
		return echo.NewHTTPError(http.StatusNotFound, models.ErrBriefingNotFound.Error())
	}
	return c.JSON(http.StatusOK, BriefingResponse{
		Summary:   cached.Summary,
		Items:     cached.Items,
		UpdatedAt: cached.UpdatedAt,
	})
}

func (h *BriefingHandler) listRuns(c echo.Context) error {
	profile, kind, err := h.Repo.LoadProfile(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if kind != models.LoadOk {
		return echo.NewHTTPError(http.StatusNotFound, models.ErrProfileNotFound.Error())
	}
	if h.History == nil {
		return c.JSON(http.StatusOK, []store.Run{})
	}
	runs, err := h.History.ListRuns(c.Request().Context(), profile.Fingerprint(), 50)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, runs)
}
