// Package server exposes the dialogue runner as an OpenAI-compatible custom
// LLM endpoint for the voice platform.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/legalvoice-orchestrator/server/internal/agent/model"
	logx "github.com/legalvoice-orchestrator/server/pkg/logger"
	"github.com/rs/zerolog/hlog"
)

const maxRequestBytes = 1 << 20 // 1MB

// TurnRunner advances a conversation by one turn.
type TurnRunner interface {
	AdvanceTurn(ctx context.Context, prior *model.TurnState, incoming *schema.Message) (*model.TurnState, error)
}

type Server struct {
	runner   TurnRunner
	sessions model.SessionStore
	callLog  model.APICallLogRepository
	conv     model.ConversationConfig
	locks    *keyedMutex
	newID    func() string
	now      func() time.Time
}

func New(runner TurnRunner, sessions model.SessionStore, callLog model.APICallLogRepository, conv model.ConversationConfig) *Server {
	return &Server{
		runner:   runner,
		sessions: sessions,
		callLog:  callLog,
		conv:     conv,
		locks:    newKeyedMutex(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logx.Logger()))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.Health)
	r.Post("/chat/completions", s.ChatCompletions)
	r.Delete("/conversations/{conversationID}", s.EndConversation)
	r.Get("/conversations/{conversationID}/api-calls", s.ListAPICalls)
	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("HTTP request")
}
