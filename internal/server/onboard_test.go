package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func startOnboarding(t *testing.T, h *OnboardHandler) OnboardStateResponse {
	t.Helper()
	rec, err := doJSON(t, h.start, http.MethodPost, "/api/onboard/start", "")
	if err != nil {
		t.Fatalf("start error = %v", err)
	}
	var state OnboardStateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return state
}

func sendReply(t *testing.T, h *OnboardHandler, state OnboardStateResponse, text string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	body := fmt.Sprintf(`{"generation":%d,"text":%q}`, state.Generation, text)
	return doJSON(t, h.reply, http.MethodPost, "/api/onboard/reply", body)
}

func TestOnboardingFlow(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	h := &OnboardHandler{Repo: repo}

	state := startOnboarding(t, h)
	if state.Step != "ask_location" {
		t.Fatalf("step = %q, want ask_location", state.Step)
	}

	for _, utterance := range []string{
		"I live in Berlin.",
		"I'm interested in tech and science",
		"yes please",
	} {
		rec, err := sendReply(t, h, state, utterance)
		if err != nil {
			t.Fatalf("reply %q error = %v", utterance, err)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	if state.Step != "done" {
		t.Fatalf("step = %q, want done", state.Step)
	}
	if repo.profile == nil || repo.profile.Location != "Berlin" || repo.profile.Topics != "tech, science" {
		t.Fatalf("profile not saved from conversation: %+v", repo.profile)
	}
}

func TestOnboardingReviseLoop(t *testing.T) {
	t.Parallel()
	h := &OnboardHandler{Repo: &memRepo{}}

	state := startOnboarding(t, h)
	for _, utterance := range []string{"Berlin", "tech"} {
		rec, err := sendReply(t, h, state, utterance)
		if err != nil {
			t.Fatalf("reply error = %v", err)
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &state)
	}
	if state.Step != "confirm" {
		t.Fatalf("step = %q, want confirm", state.Step)
	}

	rec, err := sendReply(t, h, state, "no, change that")
	if err != nil {
		t.Fatalf("revise error = %v", err)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Step != "ask_topics" {
		t.Fatalf("step = %q, want ask_topics after revise", state.Step)
	}
}

func TestOnboardingEmptyTopicsRejected(t *testing.T) {
	t.Parallel()
	h := &OnboardHandler{Repo: &memRepo{}}

	state := startOnboarding(t, h)
	rec, err := sendReply(t, h, state, "Berlin")
	if err != nil {
		t.Fatalf("location reply error = %v", err)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &state)

	_, err = sendReply(t, h, state, "   ")
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for empty topics", code)
	}
}

func TestOnboardingStaleGenerationRejected(t *testing.T) {
	t.Parallel()
	h := &OnboardHandler{Repo: &memRepo{}}

	stale := startOnboarding(t, h)
	startOnboarding(t, h) // supersedes the first session

	_, err := sendReply(t, h, stale, "Berlin")
	if code := httpCode(t, err); code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for stale generation", code)
	}
}
