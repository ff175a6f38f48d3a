package http

import (
	"log"
	"net/http"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	admin, tokens, err := s.upstream.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	s.cookies.SetTokens(w, tokens)
	s.cache.Put(r.Context(), tokens.AccessToken, admin)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "admin": admin})
}

type signupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters long")
		return
	}

	admin, tokens, err := s.upstream.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	s.cookies.SetTokens(w, tokens)
	s.cache.Put(r.Context(), tokens.AccessToken, admin)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "admin": admin})
}

// handleLogout revokes the session upstream on a best-effort basis and
// then clears local state unconditionally: a failed revoke call must
// never leave the client believing it is still authenticated.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	tokens := s.cookies.Tokens(r)
	if tokens != nil {
		if err := s.upstream.Logout(r.Context(), tokens.AccessToken); err != nil {
			log.Printf("[%s] logout: upstream revoke failed: %v", requestIDFrom(r.Context()), err)
		}
		s.cache.Invalidate(r.Context(), tokens.AccessToken)
	}
	s.cookies.ClearTokens(w)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if tokens := s.cookies.Tokens(r); tokens != nil {
		if admin, ok := s.cache.Get(r.Context(), tokens.AccessToken); ok {
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "admin": admin})
			return
		}
	}

	sess, err := s.resolver.Resolve(r.Context(), w, r)
	if err != nil {
		// Malformed or tampered token, not a normal lapse.
		log.Printf("[%s] auth: rejecting invalid access token: %v", requestIDFrom(r.Context()), err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	s.cache.Put(r.Context(), sess.Tokens.AccessToken, sess.Admin)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "admin": sess.Admin})
}
