package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/interview"
)

var validate = validator.New()

// RequirementRequest represents the request body for creating a role
// requirement.
type RequirementRequest struct {
	Role             string   `json:"role" validate:"required,min=2,max=200"`
	RequiredSkills   []string `json:"required_skills" validate:"required,min=1,dive,min=1"`
	DifficultyPolicy string   `json:"difficulty_policy" validate:"omitempty,max=500"`
}

// handleCreateRequirement stores a role requirement used to steer question
// generation.
func (s *Server) handleCreateRequirement(w http.ResponseWriter, r *http.Request) {
	var req RequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			s.serviceError(w, &ErrValidation{Field: errs[0].Field(), Message: "failed " + errs[0].Tag() + " validation"})
			return
		}
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := &interview.RoleProfile{
		ID:               uuid.New(),
		Role:             req.Role,
		RequiredSkills:   req.RequiredSkills,
		DifficultyPolicy: req.DifficultyPolicy,
	}
	if err := s.svc.CreateRequirement(r.Context(), profile); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, profile)
}

// handleListRequirements returns all stored role requirements.
func (s *Server) handleListRequirements(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.svc.ListRequirements(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profiles)
}

// handleGetRequirement returns one role requirement by ID.
func (s *Server) handleGetRequirement(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	profile, err := s.svc.GetRequirement(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleDeleteRequirement removes a role requirement.
func (s *Server) handleDeleteRequirement(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.DeleteRequirement(r.Context(), id); err != nil {
		s.serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
