// Package domain contains the types shared by every pipeline role: tasks, queue payloads,
// the error taxonomy and the helpers used to correlate outgoing messages with tasks.
package domain

import (
	"fmt"
	"time"
)

// TaskStatus is the lifecycle status of a monitoring task
type TaskStatus string

// task statuses
const (
	StatusActive  TaskStatus = "active"
	StatusPaused  TaskStatus = "paused"
	StatusDeleted TaskStatus = "deleted"
)

// Valid reports whether the status is one of the known values
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusDeleted:
		return true
	}
	return false
}

// SourceType selects the fetch capability used for a task
type SourceType string

// known source types
const (
	SourceReddit SourceType = "reddit"
	SourceRSS    SourceType = "rss"
)

// Task is a monitoring subscription binding a source to a filtering criterion and a routing address.
// SourceType and SourceTarget never change after creation, Criterion is the only field rewritten
// by feedback.
type Task struct {
	ID           int64      `json:"task_id"`
	OwnerContact string     `json:"owner_contact"`
	Description  string     `json:"description,omitempty"`
	SourceType   SourceType `json:"source_type"`
	SourceTarget string     `json:"source_target"`
	Criterion    string     `json:"current_criterion"`
	Status       TaskStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate checks the fields required to create a task
func (t *Task) Validate() error {
	if t.OwnerContact == "" {
		return fmt.Errorf("owner contact is required: %w", ErrValidation)
	}
	if t.SourceType == "" {
		return fmt.Errorf("source type is required: %w", ErrValidation)
	}
	if t.SourceTarget == "" {
		return fmt.Errorf("source target is required: %w", ErrValidation)
	}
	if t.Criterion == "" {
		return fmt.Errorf("criterion is required: %w", ErrValidation)
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", t.Status, ErrValidation)
	}
	return nil
}

// Active reports whether the task should be scraped and filtered
func (t *Task) Active() bool {
	return t.Status == StatusActive
}

// Verdict is the binary relevance decision of the judgment capability
type Verdict bool

// verdicts
const (
	VerdictReject Verdict = false
	VerdictAccept Verdict = true
)

func (v Verdict) String() string {
	if v {
		return "accept"
	}
	return "reject"
}
