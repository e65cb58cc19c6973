package plan

import "fmt"

// PromptFunc builds the model prompt for a request. The planner pipeline
// is parameterized by a PromptFunc so endpoint variants share one code
// path instead of duplicated handlers.
type PromptFunc func(req Request) string

func deadline(h Horizon) string {
	if h == HorizonWeek {
		return "the end of this week"
	}
	return "the end of today"
}

// BuildPrompt returns the full planning prompt: 4-10 tasks with realistic
// due dates spread between now and the horizon deadline, as JSON.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`You are a planning assistant. Break the following goal into 4-10 concrete, actionable tasks spread between now and %s. Give each task a realistic due date within that window.

Goal: %s

Respond with JSON only, matching exactly this shape:
{"tasks":[{"id":"task-0","title":"...","dueDate":"YYYY-MM-DD","priority":"low|medium|high","notes":"...","emoji":"..."}]}

Do not include any text outside the JSON.`, deadline(req.Horizon), req.Goal)
}

// BuildTitlesPrompt returns the simplified prompt used by the legacy
// streaming endpoint: the model supplies titles only and every other
// field is defaulted during normalization.
func BuildTitlesPrompt(req Request) string {
	return fmt.Sprintf(`You are a planning assistant. Break the following goal into 4-10 short task titles achievable by %s.

Goal: %s

Respond with JSON only, matching exactly this shape:
{"tasks":[{"title":"..."}]}

Do not include any text outside the JSON.`, deadline(req.Horizon), req.Goal)
}
