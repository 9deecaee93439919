package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/types"
)

// handleCreateUser handles POST /api/users - Register a new user
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string         `json:"name"`
		Email string         `json:"email"`
		Role  types.UserRole `json:"role"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Name is required", nil)
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Email is required", nil)
		return
	}
	if !req.Role.Valid() {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid role (must be 'artist' or 'investor')", nil)
		return
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}

	if err := s.userRepo.Create(r.Context(), user); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", nil)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// handleGetUser handles GET /api/users/:id - Get user by ID
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["id"]

	if userID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "User ID required", nil)
		return
	}

	user, err := s.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "User not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
