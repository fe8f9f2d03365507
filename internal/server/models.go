package server

import (
	"time"

	"github.com/mohammad-safakhou/briefer/models"
)

// HTTPError is a generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// AuthSignupRequest represents the signup payload.
type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest represents the login payload.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse returns the current authenticated user id.
type MeResponse struct {
	UserID string `json:"user_id"`
}

// ProfileRequest sets the reader profile.
type ProfileRequest struct {
	Location string `json:"location"`
	Topics   string `json:"topics"`
}

// ProfileResponse is the stored reader profile.
type ProfileResponse struct {
	Location string `json:"location"`
	Topics   string `json:"topics"`
}

// RunTriggerRequest starts a briefing run.
type RunTriggerRequest struct {
	UseCache bool `json:"use_cache"`
}

// RunAcceptedResponse acknowledges a started run.
type RunAcceptedResponse struct {
	Status string `json:"status"`
}

// BriefingResponse is the cached briefing for the stored profile.
type BriefingResponse struct {
	Summary   string             `json:"summary"`
	Items     []models.StoryItem `json:"items"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// TranscribeResponse carries the recognized text plus any profile intent
// extracted from it.
type TranscribeResponse struct {
	Text     string `json:"text"`
	Location string `json:"location,omitempty"`
	Topics   string `json:"topics,omitempty"`
}

// SynthesizeRequest asks for spoken audio of the given text.
type SynthesizeRequest struct {
	Text string `json:"text"`
}
