package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	errx "github.com/legalvoice-orchestrator/server/internal/core/error"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
)

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ChatCompletions handles POST /chat/completions. Only the last message of the
// request is new; earlier turns come from the session store.
func (s *Server) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, errx.New(err, http.StatusBadRequest, "could not read request body"))
		return
	}
	var req chatCompletionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, errx.New(err, http.StatusBadRequest, "invalid request body"))
		return
	}

	conversationID := s.resolveCallID(r, raw, &req)
	ctx := model.WithConversationID(r.Context(), conversationID)

	unlock := s.locks.Lock(conversationID)
	defer unlock()

	prior, found, err := s.sessions.Load(ctx, conversationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		prior = model.NewTurnState(conversationID, req.callerPhone())
		prior.Inner.OutputMode = model.ParseOutputMode(s.conv.OutputMode)
	}
	if prior.CallerPhone == "" {
		prior.CallerPhone = req.callerPhone()
	}
	if req.Metadata != nil {
		if req.Metadata.OutputMode != "" {
			prior.Inner.OutputMode = model.ParseOutputMode(req.Metadata.OutputMode)
		}
		if step := model.Step(strings.TrimSpace(req.Metadata.IdentityStep)); step.IsIdentityConfirmation() {
			prior.Inner.CurrentStep = step
		}
	}

	state, err := s.runner.AdvanceTurn(ctx, prior, incomingMessage(&req))
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("Turn failed")
		writeError(w, err)
		return
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		writeError(w, err)
		return
	}

	if req.Stream {
		s.streamCompletion(w, &req, state)
		return
	}
	writeJSON(w, http.StatusOK, s.buildCompletion(&req, state))
}

// EndConversation handles DELETE /conversations/{id}.
func (s *Server) EndConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if s.callLog != nil {
		if err := s.callLog.Clear(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAPICalls handles GET /conversations/{id}/api-calls.
func (s *Server) ListAPICalls(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	calls := []model.APICall{}
	if s.callLog != nil {
		var err error
		if calls, err = s.callLog.List(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": id,
		"calls":           calls,
	})
}

// resolveCallID prefers the configured header, then the configured body
// path, then the call envelope, and finally mints a fresh id.
func (s *Server) resolveCallID(r *http.Request, raw []byte, req *chatCompletionRequest) string {
	if h := s.conv.CallIDHeader; h != "" {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	if v := lookupPath(raw, s.conv.CallIDBodyPath); v != "" {
		return v
	}
	if req.Call != nil && strings.TrimSpace(req.Call.ID) != "" {
		return strings.TrimSpace(req.Call.ID)
	}
	id := s.newID()
	logx.Warn().Str("conversation_id", id).Msg("No call id on request, starting a detached conversation")
	return id
}

// incomingMessage returns the caller's utterance, or nil when the platform
// continues the conversation without one.
func incomingMessage(req *chatCompletionRequest) *schema.Message {
	last := req.lastMessage()
	if last == nil || last.Role != string(schema.User) {
		return nil
	}
	return schema.UserMessage(strings.TrimSpace(last.Content))
}

func (s *Server) buildCompletion(req *chatCompletionRequest, state *model.TurnState) *chatCompletionResponse {
	return &chatCompletionResponse{
		ID:      "chatcmpl-" + s.newID(),
		Object:  "chat.completion",
		Created: s.now().Unix(),
		Model:   req.Model,
		Choices: []choice{{
			Index:        0,
			Message:      chatMessage{Role: string(schema.Assistant), Content: state.AssistantResponse},
			FinishReason: "stop",
		}},
		Output: renderingOf(state),
	}
}

func renderingOf(state *model.TurnState) *turnRendering {
	out := &turnRendering{ConversationID: state.ConversationID}
	if state.Inner.VoiceOutput != nil {
		out.Voice = *state.Inner.VoiceOutput
	}
	if state.Inner.TextOutput != nil {
		out.Text = *state.Inner.TextOutput
	}
	return out
}

// streamCompletion writes the turn as SSE chunks followed by [DONE].
func (s *Server) streamCompletion(w http.ResponseWriter, req *chatCompletionRequest, state *model.TurnState) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New("streaming not supported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	id := "chatcmpl-" + s.newID()
	created := s.now().Unix()
	stop := "stop"
	chunks := []completionChunk{
		{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
			Choices: []chunkChoice{{Delta: chunkDelta{Role: string(schema.Assistant), Content: state.AssistantResponse}}},
		},
		{
			ID: id, Object: "chat.completion.chunk", Created: created, Model: req.Model,
			Choices: []chunkChoice{{Delta: chunkDelta{}, FinishReason: &stop}},
		},
	}
	for _, c := range chunks {
		b, err := json.Marshal(c)
		if err != nil {
			logx.Error().Err(err).Msg("Failed to marshal completion chunk")
			return
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return
		}
		flusher.Flush()
	}
	_, _ = io.WriteString(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logx.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := errx.StatusOf(err)
	writeJSON(w, status, errorBody{Error: errorDetail{Message: errx.MessageOf(err), Status: status}})
}
