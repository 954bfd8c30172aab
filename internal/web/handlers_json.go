package web

import (
	"encoding/json"
	"net/http"

	"github.com/vitos/tier_table/internal/domain"
	"go.uber.org/zap"
)

type createTableRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type editFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type exitTypeRequest struct {
	ExitType string `json:"exit_type"`
}

type mutationResponse struct {
	Applied bool              `json:"applied"`
	Table   *domain.TierTable `json:"table"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) failJSON(w http.ResponseWriter, msg string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	s.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (s *Server) handleColumnsJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.Columns)
}

func (s *Server) handleListTablesJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.ListTables())
}

func (s *Server) handleCreateTableJSON(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	table, err := s.service.CreateTable(r.Context(), req.Name, req.Symbol)
	if err != nil {
		s.failJSON(w, "Failed to create tier table", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, table)
}

func (s *Server) handleGetTableJSON(w http.ResponseWriter, r *http.Request) {
	table, err := s.service.GetTable(r.PathValue("id"))
	if err != nil {
		s.failJSON(w, "Failed to get tier table", err)
		return
	}
	s.writeJSON(w, http.StatusOK, table)
}

func (s *Server) handleDeleteTableJSON(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTable(r.Context(), r.PathValue("id")); err != nil {
		s.failJSON(w, "Failed to delete tier table", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTierJSON(w http.ResponseWriter, r *http.Request) {
	table, applied, err := s.service.AddTier(r.Context(), r.PathValue("id"))
	s.writeMutation(w, table, applied, err)
}

func (s *Server) handleRemoveTierJSON(w http.ResponseWriter, r *http.Request) {
	table, applied, err := s.service.RemoveTier(r.Context(), r.PathValue("id"), r.PathValue("tierID"))
	s.writeMutation(w, table, applied, err)
}

func (s *Server) handleEditFieldJSON(w http.ResponseWriter, r *http.Request) {
	var req editFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	field, err := domain.ParseTierField(req.Field)
	if err != nil {
		s.failJSON(w, "Invalid field", err)
		return
	}

	table, applied, err := s.service.EditField(r.Context(), r.PathValue("id"), r.PathValue("tierID"), field, req.Value)
	s.writeMutation(w, table, applied, err)
}

func (s *Server) handleChangeExitTypeJSON(w http.ResponseWriter, r *http.Request) {
	var req exitTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	exitType, err := domain.ParseExitType(req.ExitType)
	if err != nil {
		s.failJSON(w, "Invalid exit type", err)
		return
	}

	table, applied, err := s.service.ChangeExitType(r.Context(), r.PathValue("id"), r.PathValue("tierID"), exitType)
	s.writeMutation(w, table, applied, err)
}

func (s *Server) writeMutation(w http.ResponseWriter, table *domain.TierTable, applied bool, err error) {
	if err != nil {
		s.failJSON(w, "Failed to update tier table", err)
		return
	}
	s.writeJSON(w, http.StatusOK, mutationResponse{Applied: applied, Table: table})
}
