package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"legalgpt/pkg/domain"
	"legalgpt/services/api/internal/app"
	"legalgpt/services/api/internal/security"
)

// /legal/notices
func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req createNoticeRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		notice, err := s.app.CreateNotice(r.Context(), user, req.input())
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, notice)
	case http.MethodGet:
		notices, err := s.app.ListNotices(user)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notices)
	default:
		methodNotAllowed(w)
	}
}

// /legal/notices/{id}
func (s *Server) handleNoticeByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		notice, err := s.app.GetNotice(user, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notice)
	case http.MethodPatch:
		var req updateNoticeRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		notice, err := s.app.UpdateNotice(user, id, req.update())
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notice)
	case http.MethodDelete:
		if err := s.app.DeleteNotice(user, id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeMessage(w, "Notice deleted")
	default:
		methodNotAllowed(w)
	}
}

// /legal/notices/{id}/replies
func (s *Server) handleReplies(w http.ResponseWriter, r *http.Request, user domain.User) {
	noticeID := r.PathValue("id")
	switch r.Method {
	case http.MethodPost:
		var req createReplyRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		reply, err := s.app.CreateReply(r.Context(), user, noticeID, app.ReplyInput{
			Content:   req.Content,
			ReplyType: domain.ReplyType(strings.ToLower(strings.TrimSpace(req.ReplyType))),
			Country:   req.Country,
		})
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, reply)
	case http.MethodGet:
		replies, err := s.app.ListReplies(user, noticeID)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, replies)
	default:
		methodNotAllowed(w)
	}
}

// /legal/notices/{id}/replies/{replyId}
func (s *Server) handleReplyByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	noticeID, replyID := r.PathValue("id"), r.PathValue("replyId")
	switch r.Method {
	case http.MethodGet:
		reply, err := s.app.GetReply(user, noticeID, replyID)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	case http.MethodPatch:
		var req updateReplyRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		reply, err := s.app.UpdateReply(user, noticeID, replyID, req.update())
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, reply)
	case http.MethodDelete:
		if err := s.app.DeleteReply(user, noticeID, replyID); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeMessage(w, "Reply deleted")
	default:
		methodNotAllowed(w)
	}
}

// /legal/documents
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req createDocumentRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		doc, err := s.app.SaveDocument(user, app.DocumentInput{
			Title:        req.Title,
			Content:      req.Content,
			DocumentType: req.DocumentType,
			Analysis:     req.Analysis,
			Tags:         req.Tags,
		})
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, documentResponse{DocumentID: doc.ID, Document: doc})
	case http.MethodGet:
		docs, err := s.app.ListDocuments(user)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
	default:
		methodNotAllowed(w)
	}
}

// /legal/documents/upload
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required (field: file)")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	analyze, _ := strconv.ParseBool(r.FormValue("analyze"))
	doc, err := s.app.UploadDocument(r.Context(), user, app.UploadInput{
		FileName:     header.Filename,
		Data:         data,
		Title:        r.FormValue("title"),
		DocumentType: r.FormValue("documentType"),
		Analyze:      analyze,
		Country:      r.FormValue("country"),
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentResponse{DocumentID: doc.ID, Document: doc})
}

// /legal/documents/{id}
func (s *Server) handleDocumentByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		doc, err := s.app.GetDocument(user, id)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodPatch:
		var req updateDocumentRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		doc, err := s.app.UpdateDocument(user, id, domain.DocumentUpdate{
			Title:        req.Title,
			Content:      req.Content,
			DocumentType: req.DocumentType,
			Analysis:     req.Analysis,
			Tags:         req.Tags,
		})
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := s.app.DeleteDocument(r.Context(), user, id); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeMessage(w, "Document deleted")
	default:
		methodNotAllowed(w)
	}
}

// /legal/documents/{id}/original
func (s *Server) handleDocumentOriginal(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	link, err := s.app.DocumentOriginalURL(r.Context(), user, r.PathValue("id"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

// /legal/profile
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		profile, err := s.app.GetProfile(user)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
	case http.MethodPut:
		var req updateProfileRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		profile, err := s.app.UpdateProfile(user, domain.ProfileUpdate{
			Specializations: req.Specializations,
			Location:        req.Location,
			Bio:             req.Bio,
		})
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
	default:
		methodNotAllowed(w)
	}
}

// /legal/query
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req queryRequest
		if err := decodeJSON(r, &req, false); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		if err := req.validate(); err != nil {
			s.writeAppError(w, r, err)
			return
		}
		queryType := domain.QueryType(strings.ToLower(strings.TrimSpace(req.Type)))
		rec, err := s.app.ProcessQuery(r.Context(), user, req.Query, queryType, req.Country)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, queryResponse{QueryID: rec.ID, Response: rec.Response})
	case http.MethodGet:
		data, err := s.app.UserData(r.Context(), user)
		if err != nil {
			s.writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	default:
		methodNotAllowed(w)
	}
}

// /legal/data
func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.DeleteUserData(r.Context(), user); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "legal.data.delete", security.OutcomeSuccess, "user_id", user.ID)
	writeMessage(w, "User data deleted")
}

// /legal/guidance, unauthenticated
func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.guidanceLimiter, "Too many guidance requests") {
		s.audit(r, "legal.guidance", security.OutcomeRateLimited)
		return
	}
	var req guidanceRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	kind := app.GuidanceKind(strings.ToLower(strings.TrimSpace(req.Type)))
	guidance, country, err := s.app.Guidance(r.Context(), req.Query, kind, req.Country)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"guidance": guidance,
		"country":  country,
	})
}

// /legal/countries
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": s.app.Countries()})
}
