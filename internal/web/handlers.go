package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/vitos/tier_table/internal/domain"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates
var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type tierTableView struct {
	Table   *domain.TierTable
	Columns []domain.Column
}

func newTierTableView(t *domain.TierTable) tierTableView {
	return tierTableView{Table: t, Columns: domain.Columns}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidField), errors.Is(err, domain.ErrInvalidExitType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	http.Error(w, err.Error(), code)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/tables", http.StatusSeeOther)
}

func (s *Server) handleTablesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", map[string]any{
		"Tables": s.service.ListTables(),
	})
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	table, err := s.service.CreateTable(r.Context(), r.FormValue("name"), r.FormValue("symbol"))
	if err != nil {
		s.fail(w, "Failed to create tier table", err)
		return
	}
	http.Redirect(w, r, "/tables/"+table.ID, http.StatusSeeOther)
}

func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	table, err := s.service.GetTable(r.PathValue("id"))
	if err != nil {
		s.fail(w, "Failed to get tier table", err)
		return
	}
	s.render(w, "table.html", newTierTableView(table))
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTable(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, "Failed to delete tier table", err)
		return
	}
	s.render(w, "tables_list", s.service.ListTables())
}

func (s *Server) handleAddTier(w http.ResponseWriter, r *http.Request) {
	table, _, err := s.service.AddTier(r.Context(), r.PathValue("id"))
	s.renderTierTable(w, table, err)
}

func (s *Server) handleRemoveTier(w http.ResponseWriter, r *http.Request) {
	table, _, err := s.service.RemoveTier(r.Context(), r.PathValue("id"), r.PathValue("tierID"))
	s.renderTierTable(w, table, err)
}

func (s *Server) handleEditField(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	field, err := domain.ParseTierField(r.PathValue("field"))
	if err != nil {
		s.fail(w, "Invalid field", err)
		return
	}

	table, _, err := s.service.EditField(r.Context(), r.PathValue("id"), r.PathValue("tierID"), field, r.FormValue("value"))
	s.renderTierTable(w, table, err)
}

func (s *Server) handleChangeExitType(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	exitType, err := domain.ParseExitType(r.FormValue("exit_type"))
	if err != nil {
		s.fail(w, "Invalid exit type", err)
		return
	}

	table, _, err := s.service.ChangeExitType(r.Context(), r.PathValue("id"), r.PathValue("tierID"), exitType)
	s.renderTierTable(w, table, err)
}

// renderTierTable answers a tier change with the redrawn table. A rejected
// change redraws the unchanged table, the same as the client would show.
func (s *Server) renderTierTable(w http.ResponseWriter, table *domain.TierTable, err error) {
	if err != nil {
		s.fail(w, "Failed to update tier table", err)
		return
	}
	s.render(w, "tier_table", newTierTableView(table))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	// Return status HTML
	w.Write([]byte("<div>System OK</div>"))
}
