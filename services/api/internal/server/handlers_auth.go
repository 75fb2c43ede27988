package server

import (
	"net/http"

	"legalgpt/pkg/domain"
	"legalgpt/services/api/internal/security"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "Too many registration attempts") {
		s.audit(r, "auth.register", security.OutcomeRateLimited)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.audit(r, "auth.register", security.OutcomeFail, "reason", "invalid_json")
		s.writeAppError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.audit(r, "auth.register", security.OutcomeFail, "reason", "missing_fields")
		s.writeAppError(w, r, err)
		return
	}
	user, token, err := s.app.Register(req.Name, req.Email, req.Password)
	if err != nil {
		s.audit(r, "auth.register", security.OutcomeFail, "reason", err.Error())
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.register", security.OutcomeSuccess, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, s.authResponse(token, user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "Too many login attempts") {
		s.audit(r, "auth.login", security.OutcomeRateLimited)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.audit(r, "auth.login", security.OutcomeFail, "reason", "invalid_json")
		s.writeAppError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.audit(r, "auth.login", security.OutcomeFail, "reason", "missing_fields")
		s.writeAppError(w, r, err)
		return
	}
	user, token, err := s.app.Authenticate(req.Email, req.Password)
	if err != nil {
		s.audit(r, "auth.login", security.OutcomeFail, "reason", err.Error())
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.login", security.OutcomeSuccess, "user_id", user.ID)
	writeJSON(w, http.StatusOK, s.authResponse(token, user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		s.audit(r, "auth.logout", security.OutcomeFail, "reason", "missing_token")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, ok := s.app.UserFromToken(token)
	if !ok {
		s.audit(r, "auth.logout", security.OutcomeFail, "reason", "invalid_token")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := s.app.Logout(token); err != nil {
		s.audit(r, "auth.logout", security.OutcomeFail, "user_id", user.ID, "reason", "revoke_failed")
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.logout", security.OutcomeSuccess, "user_id", user.ID)
	writeMessage(w, "Logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) authResponse(token string, user domain.User) authResponse {
	return authResponse{Token: token, User: user, ExpiresIn: int64(s.app.TokenTTL().Seconds())}
}
