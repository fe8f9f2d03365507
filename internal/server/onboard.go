package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/briefer/internal/onboard"
	"github.com/mohammad-safakhou/briefer/models"
	"github.com/mohammad-safakhou/briefer/repository"
)

// OnboardHandler drives the conversational profile setup. One wizard exists
// at a time; restarting issues a new generation token so replies belonging
// to an abandoned session are rejected instead of mutating the new one.
type OnboardHandler struct {
	Repo repository.Repository

	mu     sync.Mutex
	wizard *onboard.Wizard
	tokens onboard.TokenSource
}

// OnboardStateResponse reports the wizard position after a request.
type OnboardStateResponse struct {
	Step       string             `json:"step"`
	Generation onboard.Generation `json:"generation"`
	Prompt     string             `json:"prompt"`
	Location   string             `json:"location,omitempty"`
	Topics     string             `json:"topics,omitempty"`
}

// OnboardReplyRequest carries one user utterance.
type OnboardReplyRequest struct {
	Generation onboard.Generation `json:"generation"`
	Text       string             `json:"text"`
}

func (h *OnboardHandler) Register(g *echo.Group, secret []byte) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) })
	g.POST("/start", h.start)
	g.POST("/reply", h.reply)
}

func (h *OnboardHandler) start(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wizard = onboard.NewWizard()
	if err := h.wizard.Begin(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, h.state(h.tokens.Issue()))
}

func (h *OnboardHandler) reply(c echo.Context) error {
	var req OnboardReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.wizard == nil {
		return echo.NewHTTPError(http.StatusConflict, "onboarding not started")
	}
	if !h.tokens.Latest(req.Generation) {
		return echo.NewHTTPError(http.StatusConflict, "onboarding session superseded")
	}

	intent := onboard.ExtractIntent(req.Text)
	var err error
	switch h.wizard.Step() {
	case onboard.StepAskLocation:
		location := intent.Location
		if location == "" {
			location = strings.TrimSpace(req.Text)
		}
		err = h.wizard.SetLocation(location)
	case onboard.StepAskTopics:
		topics := intent.Topics
		if topics == "" {
			topics = strings.TrimSpace(req.Text)
		}
		err = h.wizard.SetTopics(topics)
	case onboard.StepConfirm:
		answer := strings.ToLower(strings.TrimSpace(req.Text))
		if answer == "no" || strings.Contains(answer, "change") {
			err = h.wizard.Revise()
			break
		}
		var profile models.ReaderProfile
		profile, err = h.wizard.Confirm()
		if err == nil {
			err = h.Repo.SaveProfile(c.Request().Context(), profile)
		}
	default:
		return echo.NewHTTPError(http.StatusConflict, "onboarding already finished")
	}
	if err != nil {
		if errors.Is(err, onboard.ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.state(req.Generation))
}

// state must be called with the mutex held.
func (h *OnboardHandler) state(g onboard.Generation) OnboardStateResponse {
	profile := h.wizard.Profile()
	resp := OnboardStateResponse{
		Step:       h.wizard.Step().String(),
		Generation: g,
		Location:   profile.Location,
		Topics:     profile.Topics,
	}
	switch h.wizard.Step() {
	case onboard.StepAskLocation:
		resp.Prompt = "Where are you based?"
	case onboard.StepAskTopics:
		resp.Prompt = "Which topics should your briefing cover?"
	case onboard.StepConfirm:
		resp.Prompt = "Shall I save this profile? Say no to change the topics."
	case onboard.StepDone:
		resp.Prompt = "All set. Your briefing profile is saved."
	}
	return resp
}
