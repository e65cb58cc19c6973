// Package service implements the plan-generation pipeline shared by all
// transport variants.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/PlanForge/internal/domain/plan"
	"github.com/Strob0t/PlanForge/internal/port/model"
	"github.com/Strob0t/PlanForge/internal/port/planstore"
)

// Emitter frames and transmits messages over an open transport. Exactly
// one terminal call (Done or Error) is made per request, always last.
// Implementations live in the transport adapters.
type Emitter interface {
	Delta(content string) error
	Done(tasks []plan.Task) error
	Error(msg string) error
}

// PlannerService drives plan generation: buffered, streaming and
// background (polled) variants all run through it.
type PlannerService struct {
	model     model.Client
	store     planstore.Store
	norm      *plan.Normalizer
	statusTTL time.Duration
	timeout   time.Duration
}

// NewPlannerService creates a PlannerService. statusTTL bounds retention
// of background status records; timeout bounds detached background
// generations.
func NewPlannerService(m model.Client, store planstore.Store, norm *plan.Normalizer, statusTTL, timeout time.Duration) *PlannerService {
	return &PlannerService{
		model:     m,
		store:     store,
		norm:      norm,
		statusTTL: statusTTL,
		timeout:   timeout,
	}
}

// Generate runs the buffered variant: one upstream call, then
// normalization. The raw model output is returned alongside any
// normalization error so the transport can include it in its response.
func (s *PlannerService) Generate(ctx context.Context, req plan.Request, promptFn plan.PromptFunc) (*plan.Plan, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	raw, err := s.model.Generate(ctx, promptFn(req))
	if err != nil {
		return nil, "", err
	}

	p, err := s.norm.Normalize(raw, req.Horizon)
	if err != nil {
		return nil, raw, err
	}
	return p, raw, nil
}

// Stream runs the streaming variant: every non-empty upstream fragment
// is appended to the accumulator and emitted as a delta before the next
// fragment is consumed. On normal completion the accumulator is
// normalized and emitted as one done event; any failure yields exactly
// one terminal error event instead. The request must already be
// validated: once streaming starts, failures can no longer change the
// HTTP status.
func (s *PlannerService) Stream(ctx context.Context, req plan.Request, promptFn plan.PromptFunc, em Emitter) {
	contentChan, errChan := s.model.Stream(ctx, promptFn(req))

	var buf strings.Builder
	for fragment := range contentChan {
		if fragment == "" {
			continue
		}
		buf.WriteString(fragment)
		if err := em.Delta(fragment); err != nil {
			// Client is gone; drain the upstream and stop. No terminal
			// event can reach anyone.
			slog.Debug("delta emit failed, abandoning stream", "error", err)
			for range contentChan {
			}
			<-errChan
			return
		}
	}

	if err := <-errChan; err != nil {
		slog.Error("upstream stream failed", "error", err)
		_ = em.Error(err.Error())
		return
	}

	p, err := s.norm.Normalize(buf.String(), req.Horizon)
	if err != nil {
		slog.Error("model output failed normalization", "error", err, "raw_len", buf.Len())
		_ = em.Error(err.Error())
		return
	}
	_ = em.Done(p.Tasks)
}

// Start kicks off a background generation and returns its plan ID
// immediately. The status record is created pending before Start
// returns; the background goroutine transitions it exactly once.
func (s *PlannerService) Start(ctx context.Context, req plan.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	planID := uuid.NewString()
	if err := s.store.Set(ctx, planID, plan.Status{Status: plan.StatePending, CreatedAt: time.Now()}, s.statusTTL); err != nil {
		return "", err
	}

	go s.generateInBackground(planID, req)
	return planID, nil
}

// generateInBackground runs detached from the originating request, with
// its own bounded deadline.
func (s *PlannerService) generateInBackground(planID string, req plan.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	raw, err := s.model.Generate(ctx, plan.BuildPrompt(req))
	if err == nil {
		var p *plan.Plan
		if p, err = s.norm.Normalize(raw, req.Horizon); err == nil {
			s.setStatus(planID, plan.Status{Status: plan.StateCompleted, Plan: p})
			return
		}
	}

	slog.Error("background generation failed", "plan_id", planID, "error", err)
	s.setStatus(planID, plan.Status{Status: plan.StateError, Error: err.Error()})
}

// setStatus writes with a fresh context: the generation context may
// already be expired when the failure is being recorded.
func (s *PlannerService) setStatus(planID string, st plan.Status) {
	st.CreatedAt = time.Now()
	if err := s.store.Set(context.Background(), planID, st, s.statusTTL); err != nil {
		slog.Error("status update failed", "plan_id", planID, "error", err)
	}
}

// Status looks up a background generation's status record.
func (s *PlannerService) Status(ctx context.Context, planID string) (*plan.Status, error) {
	return s.store.Get(ctx, planID)
}
