// Package agenttask drives a create-task / poll-until-terminal protocol
// against a remote long-running agent service. Creation failures are fatal;
// poll failures are transient and tolerated until the poll budget runs out.
package agenttask

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrTimeout is returned when a task fails to reach a terminal status within
// the configured poll budget.
var ErrTimeout = errors.New("agent task polling timed out")

// TaskFailedError carries the error text a failed task reported about itself.
type TaskFailedError struct {
	TaskID  string
	Message string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("agent task %s failed: %s", e.TaskID, e.Message)
}

// Config holds the static inputs of the poller. All values come from
// configuration; nothing here is runtime-mutable.
type Config struct {
	BaseURL         string
	CreatePath      string
	GetPathTemplate string // contains :id, substituted per poll
	APIKey          string
	AgentProfile    string
	TaskMode        string
	HideInTaskList  bool
	PollInterval    time.Duration
	MaxPoll         time.Duration
	RequestTimeout  time.Duration
	Headers         map[string]string
}

// Observer receives every successfully decoded poll response, terminal or
// not, for incremental progress reporting.
type Observer func(Task)

// Client runs remote agent tasks to completion.
type Client struct {
	cfg    Config
	http   *HTTPClient
	logger *log.Logger
}

func NewClient(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.Writer(), "[TASK] ", log.LstdFlags)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.MaxPoll <= 0 {
		cfg.MaxPoll = 5 * time.Minute
	}
	return &Client{cfg: cfg, http: NewHTTPClient(cfg.RequestTimeout), logger: logger}
}

// Run creates one task and polls it until it completes, fails, or the poll
// budget is exhausted. Polls are strictly sequential: each one is only issued
// after the previous response (or its failure) has been observed. The loop is
// not reentrant; the orchestrator guarantees one loop per briefing run.
func (c *Client) Run(ctx context.Context, prompt string, observe Observer) (Task, error) {
	task, err := c.Create(ctx, prompt)
	if err != nil {
		return Task{}, err
	}

	deadline := time.Now().Add(c.cfg.MaxPoll)
	for {
		select {
		case <-time.After(c.cfg.PollInterval):
		case <-ctx.Done():
			return Task{}, ctx.Err()
		}
		if time.Now().After(deadline) {
			return Task{}, fmt.Errorf("task %s: %w", task.ID, ErrTimeout)
		}

		polled, err := c.Get(ctx, task.ID)
		if err != nil {
			// Transient: an individual poll failure never aborts the run.
			c.logger.Printf("poll error for task %s (continuing): %v", task.ID, err)
			continue
		}
		if observe != nil {
			observe(polled)
		}

		switch polled.Status {
		case StatusCompleted:
			return polled, nil
		case StatusFailed:
			msg := polled.Error
			if msg == "" {
				msg = "task reported failure without detail"
			}
			return Task{}, &TaskFailedError{TaskID: task.ID, Message: msg}
		}
		// pending, running, or anything unrecognized: keep polling
	}
}

// Create issues the task-creation request. Any HTTP failure or a response
// without a task identifier is fatal and not retried.
func (c *Client) Create(ctx context.Context, prompt string) (Task, error) {
	payload := map[string]any{
		"prompt":         prompt,
		"agentProfile":   c.cfg.AgentProfile,
		"taskMode":       c.cfg.TaskMode,
		"hideInTaskList": c.cfg.HideInTaskList,
	}
	body, err := c.http.DoJSON(ctx, "POST", c.cfg.BaseURL+c.cfg.CreatePath, c.headers(), payload)
	if err != nil {
		return Task{}, fmt.Errorf("task creation failed: %w", err)
	}
	task := parseTask(body)
	if task.ID == "" {
		return Task{}, errors.New("task creation response carried no task id")
	}
	return task, nil
}

// Get fetches the current state of a task.
func (c *Client) Get(ctx context.Context, id string) (Task, error) {
	url := c.cfg.BaseURL + strings.ReplaceAll(c.cfg.GetPathTemplate, ":id", id)
	body, err := c.http.DoJSON(ctx, "GET", url, c.headers(), nil)
	if err != nil {
		return Task{}, err
	}
	return parseTask(body), nil
}

// FetchResultFile downloads the raw text of a result file a completed task
// exposed through its output transcript.
func (c *Client) FetchResultFile(ctx context.Context, url string) (string, error) {
	return c.http.FetchText(ctx, url)
}

func (c *Client) headers() map[string]string {
	h := map[string]string{}
	for k, v := range c.cfg.Headers {
		h[k] = v
	}
	if c.cfg.APIKey != "" {
		h["Authorization"] = "Bearer " + c.cfg.APIKey
	}
	return h
}
