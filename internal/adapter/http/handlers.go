package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	otelad "github.com/Strob0t/PlanForge/internal/adapter/otel"
	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
	"github.com/Strob0t/PlanForge/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Planner *service.PlannerService
	Metrics *otelad.Metrics // nil disables instrumentation
}

// Root is the liveness probe.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "planforge",
		"status":  "ok",
	})
}

// wantsStream reports whether the client asked for the streaming
// variant of /plan, via Accept header or the stream query parameter.
func wantsStream(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		return true
	}
	switch r.URL.Query().Get("stream") {
	case "1", "true":
		return true
	}
	return false
}

// CreatePlan handles POST /plan: buffered by default, streaming when
// requested. Validation failures are client errors and no upstream
// call is made.
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[plan.Request](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err, "")
		return
	}

	if wantsStream(r) {
		h.streamPlan(w, r, req, plan.BuildPrompt, "stream")
		return
	}

	ctx, span := otelad.StartGenerationSpan(r.Context(), "buffered", string(req.Horizon))
	defer span.End()
	start := time.Now()
	h.countRequested(ctx)

	p, raw, err := h.Planner.Generate(ctx, req, plan.BuildPrompt)
	h.recordOutcome(ctx, start, err)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidModelOutput) {
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error": err.Error(),
				"raw":   raw,
			})
			return
		}
		writeDomainError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// StreamPlanLegacy handles POST /plan/stream: the simplified
// titles-only prompt with every other field defaulted. The framing is
// the same unified envelope set as the main streaming path.
func (h *Handlers) StreamPlanLegacy(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[plan.Request](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		writeDomainError(w, err, "")
		return
	}
	h.streamPlan(w, r, req, plan.BuildTitlesPrompt, "legacy-stream")
}

func (h *Handlers) streamPlan(w http.ResponseWriter, r *http.Request, req plan.Request, promptFn plan.PromptFunc, variant string) {
	ctx, span := otelad.StartGenerationSpan(r.Context(), variant, string(req.Horizon))
	defer span.End()
	start := time.Now()
	h.countRequested(ctx)

	em, err := NewSSEEmitter(w)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}

	h.Planner.Stream(ctx, req, promptFn, h.instrument(ctx, start, em))
}

// StartPlan handles POST /plan/start: background generation with a
// polled status record.
func (h *Handlers) StartPlan(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[plan.Request](w, r)
	if !ok {
		return
	}

	planID, err := h.Planner.Start(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "")
		return
	}
	h.countRequested(r.Context())

	writeJSON(w, http.StatusOK, map[string]string{
		"planId": planID,
		"status": string(plan.StatePending),
	})
}

// PlanStatus handles GET /plan/status/{planId}.
func (h *Handlers) PlanStatus(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planId")

	st, err := h.Planner.Status(r.Context(), planID)
	if err != nil {
		writeDomainError(w, err, "Invalid planId")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) countRequested(ctx context.Context) {
	if h.Metrics != nil {
		h.Metrics.PlansRequested.Add(ctx, 1)
	}
}

func (h *Handlers) recordOutcome(ctx context.Context, start time.Time, err error) {
	if h.Metrics == nil {
		return
	}
	h.Metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		h.Metrics.PlansFailed.Add(ctx, 1)
	} else {
		h.Metrics.PlansCompleted.Add(ctx, 1)
	}
}

// instrument wraps an emitter with metric recording. With nil metrics
// the emitter is returned unchanged.
func (h *Handlers) instrument(ctx context.Context, start time.Time, em service.Emitter) service.Emitter {
	if h.Metrics == nil {
		return em
	}
	return &meteredEmitter{Emitter: em, h: h, ctx: ctx, start: start}
}

type meteredEmitter struct {
	service.Emitter
	h     *Handlers
	ctx   context.Context
	start time.Time
}

func (m *meteredEmitter) Delta(content string) error {
	m.h.Metrics.StreamFragments.Add(m.ctx, 1)
	return m.Emitter.Delta(content)
}

func (m *meteredEmitter) Done(tasks []plan.Task) error {
	m.h.recordOutcome(m.ctx, m.start, nil)
	return m.Emitter.Done(tasks)
}

func (m *meteredEmitter) Error(msg string) error {
	m.h.recordOutcome(m.ctx, m.start, errors.New(msg))
	slog.Debug("terminal error event emitted", "error", msg)
	return m.Emitter.Error(msg)
}
