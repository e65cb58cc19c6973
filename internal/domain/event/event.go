// Package event defines the wire envelopes shared by every streaming
// transport. One JSON object is sent per frame; delta frames carry
// in-flight fragments and exactly one terminal frame (done or error)
// closes the exchange.
package event

import "github.com/Strob0t/PlanForge/internal/domain/plan"

// Frame type constants.
const (
	TypeDelta = "delta"
	TypeDone  = "done"
	TypeError = "error"
)

// Delta carries one fragment of not-yet-complete generated text.
type Delta struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Done carries the final normalized task list. Terminal.
type Done struct {
	Type  string      `json:"type"`
	Tasks []plan.Task `json:"tasks"`
}

// Error carries a terminal failure message. Terminal.
type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewDelta builds a delta frame.
func NewDelta(content string) Delta {
	return Delta{Type: TypeDelta, Content: content}
}

// NewDone builds the terminal success frame. A nil slice is normalized
// to an empty one so the wire shape always carries an array.
func NewDone(tasks []plan.Task) Done {
	if tasks == nil {
		tasks = []plan.Task{}
	}
	return Done{Type: TypeDone, Tasks: tasks}
}

// NewError builds the terminal failure frame.
func NewError(msg string) Error {
	return Error{Type: TypeError, Error: msg}
}
