package server

import (
	"net/http"
	"strings"

	"legalgpt/pkg/domain"
)

// /chat
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req createConversationRequest
		if err := decodeJSON(r, &req, true); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		conv, err := s.app.CreateConversation(user, req.Title)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	case http.MethodGet:
		convs, err := s.app.ListConversations(user)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	default:
		methodNotAllowed(w)
	}
}

// /chat/{id}
func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		conv, err := s.app.GetConversation(user, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	case http.MethodDelete:
		if err := s.app.DeleteConversation(user, id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeMessage(w, "Conversation deleted")
	default:
		methodNotAllowed(w)
	}
}

// /chat/{id}/messages
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodPost:
		var req appendMessageRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		role := domain.ChatRole(strings.ToLower(strings.TrimSpace(req.Role)))
		conv, err := s.app.AppendMessage(user, id, role, req.Content)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	case http.MethodGet:
		msgs, err := s.app.ListMessages(user, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	default:
		methodNotAllowed(w)
	}
}
