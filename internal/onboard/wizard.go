// Package onboard models the voice-onboarding flow as an explicit state
// machine so illegal states (confirming before topics are set) cannot be
// reached, and provides request-scoped generation tokens for discarding
// stale async speech results.
package onboard

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mohammad-safakhou/briefer/models"
)

// Step enumerates the onboarding wizard states.
type Step int

const (
	StepWelcome Step = iota
	StepAskLocation
	StepAskTopics
	StepConfirm
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepAskLocation:
		return "ask_location"
	case StepAskTopics:
		return "ask_topics"
	case StepConfirm:
		return "confirm"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// ErrInvalidTransition is returned when a step change outside the transition
// table is attempted.
var ErrInvalidTransition = errors.New("invalid onboarding transition")

// transitions is the full table of legal step changes.
var transitions = map[Step][]Step{
	StepWelcome:     {StepAskLocation},
	StepAskLocation: {StepAskTopics},
	StepAskTopics:   {StepConfirm},
	StepConfirm:     {StepDone, StepAskTopics},
	StepDone:        {},
}

// Wizard collects a reader profile step by step.
type Wizard struct {
	step    Step
	profile models.ReaderProfile
}

func NewWizard() *Wizard {
	return &Wizard{step: StepWelcome}
}

func (w *Wizard) Step() Step { return w.step }

// Profile returns the profile as collected so far.
func (w *Wizard) Profile() models.ReaderProfile { return w.profile }

func (w *Wizard) transition(to Step) error {
	for _, allowed := range transitions[w.step] {
		if allowed == to {
			w.step = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.step, to)
}

// Begin moves past the welcome screen.
func (w *Wizard) Begin() error {
	return w.transition(StepAskLocation)
}

// SetLocation records the (optional) location answer and advances.
func (w *Wizard) SetLocation(location string) error {
	if err := w.transition(StepAskTopics); err != nil {
		return err
	}
	w.profile.Location = strings.TrimSpace(location)
	return nil
}

// SetTopics records the topics answer. Topics are required: the confirm step
// is unreachable without them.
func (w *Wizard) SetTopics(topics string) error {
	candidate := w.profile
	candidate.Topics = strings.TrimSpace(topics)
	if err := candidate.Validate(); err != nil {
		return err
	}
	if err := w.transition(StepConfirm); err != nil {
		return err
	}
	w.profile = candidate
	return nil
}

// Revise goes back from confirmation to re-collect topics.
func (w *Wizard) Revise() error {
	return w.transition(StepAskTopics)
}

// Confirm finalizes the wizard and returns the completed profile.
func (w *Wizard) Confirm() (models.ReaderProfile, error) {
	if err := w.transition(StepDone); err != nil {
		return models.ReaderProfile{}, err
	}
	return w.profile, nil
}

// Generation is a request-scoped token for asynchronous speech operations.
// A result is applied only if its token is still the latest one issued, so
// slow responses from superseded requests are dropped without ambient
// mutable counters.
type Generation uint64

// TokenSource issues and checks generation tokens.
type TokenSource struct {
	current atomic.Uint64
}

// Issue invalidates all previously issued tokens and returns a fresh one.
func (s *TokenSource) Issue() Generation {
	return Generation(s.current.Add(1))
}

// Latest reports whether the token is still the newest issued.
func (s *TokenSource) Latest(g Generation) bool {
	return uint64(g) == s.current.Load()
}
