package agenttask

import (
	"github.com/tidwall/gjson"
)

// Task statuses reported by the remote service. Anything outside this set is
// treated as non-terminal and polled again.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Task is one remote agent job as last observed by a poll. The handle lives
// for a single briefing run and is discarded afterwards.
type Task struct {
	ID     string
	Status string
	Error  string
	Output []OutputBlock
}

// OutputBlock is one message in the task's output transcript.
type OutputBlock struct {
	Role    string
	Content []OutputContent
}

// OutputContent is one content fragment: inline text, a file reference, or both.
type OutputContent struct {
	Text    string
	FileURL string
}

// Terminal reports whether the status ends the poll loop.
func (t Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// OutputText joins all inline text fragments of the transcript, newest last.
func (t Task) OutputText() string {
	var out string
	for _, block := range t.Output {
		for _, c := range block.Content {
			if c.Text == "" {
				continue
			}
			if out != "" {
				out += "\n"
			}
			out += c.Text
		}
	}
	return out
}

// ResultFileURL returns the last file reference in the transcript, if any.
// The final artifact of a completed task is appended last, so the last
// reference is the richest one.
func (t Task) ResultFileURL() string {
	var url string
	for _, block := range t.Output {
		for _, c := range block.Content {
			if c.FileURL != "" {
				url = c.FileURL
			}
		}
	}
	return url
}

// parseTask reads a task out of a loosely-shaped service response. Field
// names vary across service versions (id, task_id, taskId), so extraction is
// tolerant rather than schema-bound.
func parseTask(body []byte) Task {
	doc := gjson.ParseBytes(body)
	task := Task{
		ID:     firstString(doc, "id", "task_id", "taskId"),
		Status: doc.Get("status").String(),
		Error:  firstString(doc, "error", "message"),
	}
	for _, rawBlock := range doc.Get("output").Array() {
		block := OutputBlock{Role: rawBlock.Get("role").String()}
		for _, rawContent := range rawBlock.Get("content").Array() {
			block.Content = append(block.Content, OutputContent{
				Text:    rawContent.Get("text").String(),
				FileURL: firstString(rawContent, "fileUrl", "file_url"),
			})
		}
		task.Output = append(task.Output, block)
	}
	return task
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
