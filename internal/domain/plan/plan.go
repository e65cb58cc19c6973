// Package plan defines the Plan domain entities and the normalization
// pipeline that turns raw model output into a structured task list.
package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain"
)

// Horizon is the requested planning window.
type Horizon string

const (
	HorizonToday Horizon = "today"
	HorizonWeek  Horizon = "week"
)

// Days returns the length of the horizon window in days.
func (h Horizon) Days() int {
	if h == HorizonWeek {
		return 7
	}
	return 0
}

// Valid reports whether h is one of the accepted horizon values.
func (h Horizon) Valid() bool {
	return h == HorizonToday || h == HorizonWeek
}

// Priority is a task's urgency level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the accepted priority values; defaulting draws
// uniformly from this set.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Request is the inbound plan-generation request.
type Request struct {
	Goal    string  `json:"goal"`
	Horizon Horizon `json:"horizon"`
}

// Validate checks that both required fields are present and the horizon
// is one of the accepted values. Failures are client errors; no upstream
// call may be made for an invalid request.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Goal) == "" || r.Horizon == "" {
		return fmt.Errorf("%w: goal & horizon required", domain.ErrValidation)
	}
	if !r.Horizon.Valid() {
		return fmt.Errorf("%w: horizon must be %q or %q", domain.ErrValidation, HorizonToday, HorizonWeek)
	}
	return nil
}

// Task is one normalized entry of a plan. After normalization every
// field is populated regardless of what the model returned.
type Task struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
	Emoji    string `json:"emoji"`
}

// Plan is an ordered task list produced once per request.
// 4-10 tasks are expected but not enforced.
type Plan struct {
	Tasks []Task `json:"tasks"`
}

// State is the lifecycle state of a background generation.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Status is the record kept for a background generation, keyed by plan ID.
// It is created pending and transitions exactly once.
type Status struct {
	Status    State     `json:"status"`
	Plan      *Plan     `json:"plan,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"-"`
}
