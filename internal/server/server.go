// Package server is the preview API server: a development fixture that
// speaks the same get-public-posts wire contract the engine consumes,
// backed by the post repository.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/orgball2608/social-gallery-engine/internal/domain"
	"github.com/orgball2608/social-gallery-engine/internal/repositories/post"
	"github.com/orgball2608/social-gallery-engine/pkg/config"
	"github.com/orgball2608/social-gallery-engine/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In
	LC     fx.Lifecycle
	Repo   post.Repository
	Logger logger.Logger
	Config *config.Config
}

type Server struct {
	repo   post.Repository
	logger logger.Logger
}

// New builds the preview server and ties it to the fx lifecycle.
func New(opts Opts) *Server {
	s := &Server{
		repo:   opts.Repo,
		logger: opts.Logger.WithComponent("PreviewServer"),
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler: s.Handler(),
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.logger.Info("Starting preview server", "addr", httpServer.Addr)
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.logger.Error("Preview server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})

	return s
}

// Handler exposes the route table; tests drive it directly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/integration/social/get-public-posts", s.handleGetPublicPosts)
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *Server) handleGetPublicPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, _ := strconv.Atoi(q.Get("start"))
	if start < 0 {
		start = 0
	}
	length, err := strconv.Atoi(q.Get("length"))
	if err != nil || length <= 0 {
		length = 20
	}

	filter := post.Filter{
		Offset:     start,
		Limit:      length,
		Keyword:    q.Get("keyword"),
		Platform:   strings.ToLower(q.Get("platform")),
		DateFilter: q.Get("date_filter"),
		UID:        q.Get("uid"),
	}

	result, err := s.repo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("Post listing failed", "error", err)
		s.writePage(w, domain.Page{Status: "error", Data: []domain.Post{}, Message: "failed to list posts"})
		return
	}

	page := domain.Page{
		Status:          domain.StatusSuccess,
		Data:            result.Posts,
		RecordsTotal:    result.Total,
		RecordsFiltered: result.Filtered,
	}
	if page.Data == nil {
		page.Data = []domain.Post{}
	}
	s.writePage(w, page)
}

func (s *Server) writePage(w http.ResponseWriter, page domain.Page) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		s.logger.Error("Failed to encode page", "error", err)
	}
}
