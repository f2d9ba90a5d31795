package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/idurar/emily-assistant/agent/contract"
)

// MessageHandler is the assistant seam the chat endpoint talks to.
type MessageHandler interface {
	HandleMessage(ctx context.Context, message string, history []contractx.Message) (string, error)
}

type Config struct {
	Port           int           `envconfig:"PORT" split_words:"true" default:"8888"`
	UploadDir      string        `envconfig:"UPLOAD_DIR" split_words:"true" default:"public/uploads"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" split_words:"true" default:"90s"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" split_words:"true" default:"16777216"`
}

type Server struct {
	Router *chi.Mux
	cfg    Config
}

// New builds the router. Routes live under /api as in the ERP backend the
// frontend already targets.
func New(cfg Config, assistant MessageHandler) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	h := &handlers{
		assistant:      assistant,
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	r.Route("/api/emily", func(r chi.Router) {
		r.Post("/chat", h.chat)
		r.Post("/upload", h.upload)
	})

	return &Server{Router: r, cfg: cfg}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	log.Info().Str("addr", addr).Msg("starting emily assistant server")
	return http.ListenAndServe(addr, s.Router)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
