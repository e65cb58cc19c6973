// Package ws implements the WebSocket transport for streaming plan
// generation. Each connection carries exactly one request: the client
// sends a plan request, receives delta frames followed by one terminal
// frame, then the connection is closed.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/Strob0t/PlanForge/internal/domain"
	"github.com/Strob0t/PlanForge/internal/domain/event"
	"github.com/Strob0t/PlanForge/internal/domain/plan"
	"github.com/Strob0t/PlanForge/internal/service"
)

// requestReadTimeout bounds how long a connected client may take to
// send its plan request.
const requestReadTimeout = 30 * time.Second

// Handler upgrades connections and runs one streamed generation per
// connection. The frames match the SSE transport's envelopes.
type Handler struct {
	Planner *service.PlannerService
}

func NewHandler(planner *service.PlannerService) *Handler {
	return &Handler{Planner: planner}
}

// ServePlan handles GET /plan/ws.
func (h *Handler) ServePlan(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		slog.Error("websocket accept failed", "error", err)
		return
	}

	ctx := r.Context()
	slog.Info("websocket connected", "remote", r.RemoteAddr)

	req, err := readRequest(ctx, ws)
	if err != nil {
		slog.Debug("websocket request read failed", "error", err)
		_ = ws.Close(websocket.StatusInvalidFramePayloadData, "invalid request")
		return
	}
	if err := req.Validate(); err != nil {
		em := &emitter{ctx: ctx, ws: ws}
		_ = em.Error(strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": "))
		_ = ws.Close(websocket.StatusNormalClosure, "")
		return
	}

	h.Planner.Stream(ctx, req, plan.BuildPrompt, &emitter{ctx: ctx, ws: ws})
	_ = ws.Close(websocket.StatusNormalClosure, "")
}

func readRequest(ctx context.Context, ws *websocket.Conn) (plan.Request, error) {
	var req plan.Request
	readCtx, cancel := context.WithTimeout(ctx, requestReadTimeout)
	defer cancel()

	_, data, err := ws.Read(readCtx)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, err
	}
	return req, nil
}

// emitter frames events as text messages on an open connection.
type emitter struct {
	ctx context.Context
	ws  *websocket.Conn
}

func (e *emitter) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return e.ws.Write(e.ctx, websocket.MessageText, data)
}

func (e *emitter) Delta(content string) error {
	return e.send(event.NewDelta(content))
}

func (e *emitter) Done(tasks []plan.Task) error {
	return e.send(event.NewDone(tasks))
}

func (e *emitter) Error(msg string) error {
	return e.send(event.NewError(msg))
}
