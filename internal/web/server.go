package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/vitos/tier_table/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router  *http.ServeMux
	server  *http.Server
	service *usecase.TierTableService
	hub     *Hub
	logger  *zap.Logger
}

func NewServer(
	port int,
	allowedOrigins []string,
	service *usecase.TierTableService,
	hub *Hub,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		service: service,
		hub:     hub,
		logger:  logger,
	}
	s.routes()

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "HX-Request", "HX-Target", "HX-Current-URL"},
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: c.Handler(s.router),
	}
	return s
}

func (s *Server) routes() {
	// Landing Page
	s.router.HandleFunc("GET /{$}", s.handleLanding)

	// Tier tables (HTML)
	s.router.HandleFunc("GET /tables", s.handleTablesPage)
	s.router.HandleFunc("POST /tables", s.handleCreateTable)
	s.router.HandleFunc("GET /tables/{id}", s.handleTablePage)
	s.router.HandleFunc("DELETE /tables/{id}", s.handleDeleteTable)

	// Tiers (HTML fragments)
	s.router.HandleFunc("POST /tables/{id}/tiers", s.handleAddTier)
	s.router.HandleFunc("DELETE /tables/{id}/tiers/{tierID}", s.handleRemoveTier)
	s.router.HandleFunc("POST /tables/{id}/tiers/{tierID}/fields/{field}", s.handleEditField)
	s.router.HandleFunc("POST /tables/{id}/tiers/{tierID}/exit-type", s.handleChangeExitType)

	// JSON API
	s.router.HandleFunc("GET /api/columns", s.handleColumnsJSON)
	s.router.HandleFunc("GET /api/tables", s.handleListTablesJSON)
	s.router.HandleFunc("POST /api/tables", s.handleCreateTableJSON)
	s.router.HandleFunc("GET /api/tables/{id}", s.handleGetTableJSON)
	s.router.HandleFunc("DELETE /api/tables/{id}", s.handleDeleteTableJSON)
	s.router.HandleFunc("POST /api/tables/{id}/tiers", s.handleAddTierJSON)
	s.router.HandleFunc("DELETE /api/tables/{id}/tiers/{tierID}", s.handleRemoveTierJSON)
	s.router.HandleFunc("PATCH /api/tables/{id}/tiers/{tierID}", s.handleEditFieldJSON)
	s.router.HandleFunc("PUT /api/tables/{id}/tiers/{tierID}/exit-type", s.handleChangeExitTypeJSON)

	// Live updates
	s.router.HandleFunc("GET /ws", s.hub.ServeWS)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
