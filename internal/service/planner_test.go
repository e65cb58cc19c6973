package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
	"github.com/Strob0t/PlanForge/internal/port/model/modeltest"
	"github.com/Strob0t/PlanForge/internal/port/planstore/planstoretest"
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

func testNormalizer() *plan.Normalizer {
	return plan.NewNormalizer(rand.New(rand.NewSource(1)), func() time.Time { return testNow })
}

// event records one emitted message for assertions.
type event struct {
	kind    string // "delta", "done", "error"
	content string
	tasks   []plan.Task
}

type recordEmitter struct {
	events     []event
	failDeltas bool
}

func (r *recordEmitter) Delta(content string) error {
	if r.failDeltas {
		return errors.New("client disconnected")
	}
	r.events = append(r.events, event{kind: "delta", content: content})
	return nil
}

func (r *recordEmitter) Done(tasks []plan.Task) error {
	r.events = append(r.events, event{kind: "done", tasks: tasks})
	return nil
}

func (r *recordEmitter) Error(msg string) error {
	r.events = append(r.events, event{kind: "error", content: msg})
	return nil
}

func (r *recordEmitter) terminals() []event {
	var out []event
	for _, e := range r.events {
		if e.kind != "delta" {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(m *modeltest.Fake) *PlannerService {
	return NewPlannerService(m, planstoretest.NewMemStore(), testNormalizer(), time.Minute, time.Minute)
}

var launchBlogFragments = []string{
	"```json\n{\"ta",
	"sks\":[{\"title\":\"Pick a platform\"},{\"ti",
	"tle\":\"Write first post\"}]}\n```",
}

func TestStreamForwardsFragmentsThenDone(t *testing.T) {
	m := &modeltest.Fake{Fragments: launchBlogFragments}
	svc := newTestService(m)
	em := &recordEmitter{}

	svc.Stream(context.Background(), plan.Request{Goal: "Launch a blog", Horizon: plan.HorizonToday}, plan.BuildPrompt, em)

	if len(em.events) != 4 {
		t.Fatalf("expected 3 deltas + 1 done, got %d events", len(em.events))
	}
	for i, frag := range launchBlogFragments {
		if em.events[i].kind != "delta" || em.events[i].content != frag {
			t.Errorf("event %d = %+v, want delta %q", i, em.events[i], frag)
		}
	}

	last := em.events[3]
	if last.kind != "done" {
		t.Fatalf("expected terminal done, got %s", last.kind)
	}
	if len(last.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(last.tasks))
	}
	today := testNow.Format("2006-01-02")
	wantIDs := []string{"task-0", "task-1"}
	for i, task := range last.tasks {
		if task.ID != wantIDs[i] {
			t.Errorf("task %d id = %q, want %q", i, task.ID, wantIDs[i])
		}
		if task.DueDate != today {
			t.Errorf("task %d dueDate = %q, want %q", i, task.DueDate, today)
		}
		if task.Priority == "" || task.Emoji == "" {
			t.Errorf("task %d has unpopulated defaults: %+v", i, task)
		}
	}
}

func TestStreamExactlyOneTerminalAndLast(t *testing.T) {
	cases := map[string]*modeltest.Fake{
		"success":        {Fragments: launchBlogFragments},
		"unparseable":    {Fragments: []string{"sorry, no JSON"}},
		"upstream error": {Fragments: []string{"par"}, StreamErr: errors.New("connection reset")},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			em := &recordEmitter{}
			newTestService(m).Stream(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonWeek}, plan.BuildPrompt, em)

			if n := len(em.terminals()); n != 1 {
				t.Fatalf("expected exactly 1 terminal event, got %d", n)
			}
			if last := em.events[len(em.events)-1]; last.kind == "delta" {
				t.Error("terminal event was not last")
			}
		})
	}
}

func TestStreamUpstreamErrorNoDone(t *testing.T) {
	m := &modeltest.Fake{Fragments: []string{"partial out"}, StreamErr: errors.New("boom")}
	em := &recordEmitter{}
	newTestService(m).Stream(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonToday}, plan.BuildPrompt, em)

	terminals := em.terminals()
	if len(terminals) != 1 || terminals[0].kind != "error" {
		t.Fatalf("expected single error terminal, got %+v", terminals)
	}
	// Partial output already streamed is not retracted.
	if em.events[0].kind != "delta" || em.events[0].content != "partial out" {
		t.Errorf("expected the partial delta to have been forwarded, got %+v", em.events[0])
	}
}

func TestStreamInvalidOutputEmitsError(t *testing.T) {
	m := &modeltest.Fake{Fragments: []string{"I am not ", "valid JSON"}}
	em := &recordEmitter{}
	newTestService(m).Stream(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonToday}, plan.BuildPrompt, em)

	terminals := em.terminals()
	if len(terminals) != 1 || terminals[0].kind != "error" {
		t.Fatalf("expected single error terminal, got %+v", terminals)
	}
}

func TestStreamClientGone(t *testing.T) {
	m := &modeltest.Fake{Fragments: launchBlogFragments}
	em := &recordEmitter{failDeltas: true}
	newTestService(m).Stream(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonToday}, plan.BuildPrompt, em)

	if len(em.events) != 0 {
		t.Errorf("expected no recorded events after client left, got %+v", em.events)
	}
}

func TestGenerateBuffered(t *testing.T) {
	m := &modeltest.Fake{Output: "```json\n{\"tasks\":[{\"title\":\"a\"},{\"title\":\"b\"},{\"title\":\"c\"}]}\n```"}
	svc := newTestService(m)

	p, _, err := svc.Generate(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonWeek}, plan.BuildPrompt)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(p.Tasks))
	}
}

func TestGenerateInvalidOutputReturnsRaw(t *testing.T) {
	m := &modeltest.Fake{Output: "no json here"}
	svc := newTestService(m)

	_, raw, err := svc.Generate(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonWeek}, plan.BuildPrompt)
	if !errors.Is(err, domain.ErrInvalidModelOutput) {
		t.Fatalf("expected ErrInvalidModelOutput, got %v", err)
	}
	if raw != "no json here" {
		t.Errorf("raw output not surfaced, got %q", raw)
	}
}

func TestGenerateValidationSkipsUpstream(t *testing.T) {
	m := &modeltest.Fake{Output: "{}"}
	svc := newTestService(m)

	_, _, err := svc.Generate(context.Background(), plan.Request{Goal: "", Horizon: plan.HorizonWeek}, plan.BuildPrompt)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if m.Calls() != 0 {
		t.Errorf("upstream called %d times for an invalid request", m.Calls())
	}
}

func waitForState(t *testing.T, svc *PlannerService, planID string, want plan.State) *plan.Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st, err := svc.Status(context.Background(), planID)
		if err == nil && st.Status == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status never reached %s", want)
	return nil
}

func TestStartTransitionsToCompleted(t *testing.T) {
	m := &modeltest.Fake{Output: `{"tasks":[{"title":"a"}]}`}
	svc := newTestService(m)

	planID, err := svc.Start(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonToday})
	if err != nil {
		t.Fatal(err)
	}
	if planID == "" {
		t.Fatal("expected a plan id")
	}

	st := waitForState(t, svc, planID, plan.StateCompleted)
	if st.Plan == nil || len(st.Plan.Tasks) != 1 {
		t.Errorf("completed status missing plan: %+v", st)
	}
}

func TestStartTransitionsToError(t *testing.T) {
	m := &modeltest.Fake{GenErr: errors.New("upstream down")}
	svc := newTestService(m)

	planID, err := svc.Start(context.Background(), plan.Request{Goal: "g", Horizon: plan.HorizonToday})
	if err != nil {
		t.Fatal(err)
	}

	st := waitForState(t, svc, planID, plan.StateError)
	if st.Error == "" {
		t.Error("error status missing message")
	}
}

func TestStatusUnknownID(t *testing.T) {
	svc := newTestService(&modeltest.Fake{})
	_, err := svc.Status(context.Background(), "no-such-plan")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
