package server

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/briefer/internal/onboard"
	"github.com/mohammad-safakhou/briefer/internal/speech"
)

// SpeechHandler exposes the voice onboarding helpers: audio in, recognized
// text plus extracted profile intent out, and text back to audio.
type SpeechHandler struct {
	Speech *speech.Client
}

func (h *SpeechHandler) Register(g *echo.Group, secret []byte) {
	g.Use(func(next echo.HandlerFunc) echo.HandlerFunc { return withAuth(next, secret) })
	g.POST("/transcribe", h.transcribe)
	g.POST("/synthesize", h.synthesize)
}

func (h *SpeechHandler) transcribe(c echo.Context) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "audio file required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()
	audio, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	text, err := h.Speech.Transcribe(c.Request().Context(), audio, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	intent := onboard.ExtractIntent(text)
	return c.JSON(http.StatusOK, TranscribeResponse{
		Text:     text,
		Location: intent.Location,
		Topics:   intent.Topics,
	})
}

func (h *SpeechHandler) synthesize(c echo.Context) error {
	var req SynthesizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text required")
	}
	audio, err := h.Speech.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}
