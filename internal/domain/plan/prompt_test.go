package plan

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	req := Request{Goal: "Launch a blog", Horizon: HorizonWeek}
	got := BuildPrompt(req)

	if !strings.Contains(got, "Launch a blog") {
		t.Error("prompt missing goal")
	}
	if !strings.Contains(got, "the end of this week") {
		t.Error("prompt missing week deadline")
	}
	if !strings.Contains(got, `"tasks"`) {
		t.Error("prompt missing JSON shape")
	}

	req.Horizon = HorizonToday
	if !strings.Contains(BuildPrompt(req), "the end of today") {
		t.Error("prompt missing today deadline")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	req := Request{Goal: "Tidy the garage", Horizon: HorizonToday}
	if BuildPrompt(req) != BuildPrompt(req) {
		t.Error("BuildPrompt is not deterministic")
	}
}

func TestBuildTitlesPrompt(t *testing.T) {
	got := BuildTitlesPrompt(Request{Goal: "Ship the release", Horizon: HorizonWeek})
	if !strings.Contains(got, "Ship the release") {
		t.Error("prompt missing goal")
	}
	if !strings.Contains(got, `{"tasks":[{"title":"..."}]}`) {
		t.Error("titles prompt should request titles only")
	}
}
