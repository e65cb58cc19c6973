package plan

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain"
)

// Emojis is the fixed palette used when the model omits a task emoji.
var Emojis = []string{"📝", "✅", "🎯", "🚀", "💡", "📌", "🔥", "🌱", "📚", "⏰"}

// tasksPerWindow is the divisor used to spread defaulted due dates
// linearly across the horizon window.
const tasksPerWindow = 6

// Normalizer cleans, parses and defaults raw model output. Randomness
// and the clock are injected so tests are deterministic.
type Normalizer struct {
	rng *rand.Rand
	now func() time.Time
}

// NewNormalizer creates a Normalizer. A nil rng falls back to a
// time-seeded source and a nil now falls back to time.Now.
func NewNormalizer(rng *rand.Rand, now func() time.Time) *Normalizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{rng: rng, now: now}
}

// Clean strips code-fence markers from raw model output. One leading
// "```json" marker is removed, then every remaining "```" occurrence,
// then surrounding whitespace. Clean is idempotent.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "```json"); ok {
		s = rest
	}
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// rawTask mirrors the task shape the model is asked to emit. Any field
// may be absent or empty in practice.
type rawTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DueDate  string `json:"dueDate"`
	Priority string `json:"priority"`
	Notes    string `json:"notes"`
	Emoji    string `json:"emoji"`
}

// Normalize turns raw accumulated model output into a Plan. The cleaned
// text must parse as JSON; a missing tasks field yields an empty plan
// rather than an error. Every returned task has all six fields
// populated. Tasks whose title is empty after trimming are dropped.
func (n *Normalizer) Normalize(raw string, horizon Horizon) (*Plan, error) {
	cleaned := Clean(raw)

	var parsed struct {
		Tasks []rawTask `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModelOutput, err)
	}

	today := n.now()
	out := &Plan{Tasks: make([]Task, 0, len(parsed.Tasks))}

	for _, rt := range parsed.Tasks {
		if strings.TrimSpace(rt.Title) == "" {
			continue
		}
		// Defaults index by position among kept tasks, so dropped
		// entries leave no gaps in ids or date spreading.
		idx := len(out.Tasks)
		out.Tasks = append(out.Tasks, Task{
			ID:       n.defaultID(rt.ID, idx),
			Title:    rt.Title,
			DueDate:  n.defaultDueDate(rt.DueDate, idx, horizon, today),
			Priority: n.defaultPriority(rt.Priority),
			Notes:    rt.Notes,
			Emoji:    n.defaultEmoji(rt.Emoji),
		})
	}
	return out, nil
}

func (n *Normalizer) defaultID(id string, idx int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("task-%d", idx)
}

// defaultDueDate spreads undated tasks linearly across the horizon
// window: offset_days = floor(idx/6 * horizonDays). A today horizon has
// a zero-day window, so every defaulted date is the current date.
func (n *Normalizer) defaultDueDate(due string, idx int, horizon Horizon, today time.Time) string {
	if due != "" {
		return due
	}
	offset := idx * horizon.Days() / tasksPerWindow
	return today.AddDate(0, 0, offset).Format("2006-01-02")
}

func (n *Normalizer) defaultPriority(p string) string {
	lowered := Priority(strings.ToLower(p))
	for _, valid := range Priorities {
		if lowered == valid {
			return string(lowered)
		}
	}
	return string(Priorities[n.rng.Intn(len(Priorities))])
}

func (n *Normalizer) defaultEmoji(e string) string {
	if e != "" {
		return e
	}
	return Emojis[n.rng.Intn(len(Emojis))]
}
