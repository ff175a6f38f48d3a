package http

import (
	"log"
	"net/http"
	"strconv"

	"wahtabla/admin-gateway/internal/model"
	"wahtabla/admin-gateway/internal/session"
	"wahtabla/admin-gateway/internal/upstream"
)

// adminSession resolves the session for an administrative data action and
// enforces the role gate. Authorization failures are surfaced, never
// silently downgraded.
func (s *Server) adminSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.resolver.Resolve(r.Context(), w, r)
	if err != nil {
		log.Printf("[%s] auth: rejecting invalid access token: %v", requestIDFrom(r.Context()), err)
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	if sess.Admin.Role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "Insufficient permissions. Admin role required.")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.adminSession(w, r)
	if !ok {
		return
	}

	admins, err := s.upstream.ListAdmins(r.Context(), sess.Tokens.AccessToken)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": admins})
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.adminSession(w, r)
	if !ok {
		return
	}

	students, err := s.upstream.ListStudents(r.Context(), sess.Tokens.AccessToken)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": students})
}

func (s *Server) handleListExamAttempts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.adminSession(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	attempts, pagination, err := s.upstream.ListExamAttempts(r.Context(), sess.Tokens.AccessToken, page, limit)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"data":       attempts,
		"pagination": pagination,
	})
}

type gradeRequest struct {
	AttemptID int      `json:"attemptId"`
	Passed    *bool    `json:"passed"`
	Feedback  *string  `json:"feedback"`
	Marks     *float64 `json:"marks"`
}

func (s *Server) handleGradeExamAttempt(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.adminSession(w, r)
	if !ok {
		return
	}

	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AttemptID <= 0 {
		writeError(w, http.StatusBadRequest, "Valid attempt ID is required")
		return
	}
	if req.Passed == nil {
		writeError(w, http.StatusBadRequest, "Passed status must be a boolean value")
		return
	}
	// Whether a grade may be recorded without marks is deployment policy.
	if s.cfg.RequireMarks && req.Marks == nil {
		writeError(w, http.StatusBadRequest, "Marks are required for grading")
		return
	}
	if req.Marks != nil && *req.Marks < 0 {
		writeError(w, http.StatusBadRequest, "Marks must be a non-negative number")
		return
	}

	result, err := s.upstream.GradeExamAttempt(r.Context(), sess.Tokens.AccessToken, model.GradeRequest{
		AttemptID: req.AttemptID,
		Passed:    *req.Passed,
		Feedback:  req.Feedback,
		Marks:     req.Marks,
	})
	if err != nil {
		if upstream.StatusOf(err) == http.StatusConflict {
			writeError(w, http.StatusConflict, "Exam attempt has already been graded.")
			return
		}
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": result})
}

type updateRoleRequest struct {
	AdminID int    `json:"adminId"`
	Role    string `json:"role"`
}

func (s *Server) handleUpdateAdminRole(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.adminSession(w, r)
	if !ok {
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	role, valid := model.ParseRole(req.Role)
	if req.AdminID <= 0 || !valid {
		writeError(w, http.StatusBadRequest, "Invalid role or adminId.")
		return
	}

	updated, err := s.upstream.UpdateAdminRole(r.Context(), sess.Tokens.AccessToken, req.AdminID, role)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": updated})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
