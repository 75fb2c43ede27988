package server

import (
	"strings"

	"legalgpt/pkg/domain"
	"legalgpt/services/api/internal/app"
)

func invalid(msg string) error {
	return &app.ValidationError{Message: msg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return invalid("Name, email, and password are required")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return invalid("Email and password are required")
	}
	return nil
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

type createConversationRequest struct {
	Title string `json:"title"`
}

type appendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type createNoticeRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	NoticeType string   `json:"noticeType"`
	Sender     string   `json:"sender"`
	Status     string   `json:"status"`
	Tags       []string `json:"tags"`
	Country    string   `json:"country"`
}

func (r createNoticeRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Content) == "" || strings.TrimSpace(r.NoticeType) == "" {
		return invalid("Title, content, and noticeType are required")
	}
	return nil
}

func (r createNoticeRequest) input() app.NoticeInput {
	return app.NoticeInput{
		Title:      r.Title,
		Content:    r.Content,
		NoticeType: r.NoticeType,
		Sender:     r.Sender,
		Status:     domain.NoticeStatus(strings.ToLower(strings.TrimSpace(r.Status))),
		Tags:       r.Tags,
		Country:    r.Country,
	}
}

type updateNoticeRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	NoticeType *string   `json:"noticeType"`
	Sender     *string   `json:"sender"`
	Status     *string   `json:"status"`
	Analysis   *string   `json:"analysis"`
	Tags       *[]string `json:"tags"`
}

func (r updateNoticeRequest) validate() error {
	if r.Title == nil && r.Content == nil && r.NoticeType == nil && r.Sender == nil &&
		r.Status == nil && r.Analysis == nil && r.Tags == nil {
		return invalid("No fields to update")
	}
	return nil
}

func (r updateNoticeRequest) update() domain.NoticeUpdate {
	upd := domain.NoticeUpdate{
		Title:      r.Title,
		Content:    r.Content,
		NoticeType: r.NoticeType,
		Sender:     r.Sender,
		Analysis:   r.Analysis,
		Tags:       r.Tags,
	}
	if r.Status != nil {
		status := domain.NoticeStatus(strings.ToLower(strings.TrimSpace(*r.Status)))
		upd.Status = &status
	}
	return upd
}

type createReplyRequest struct {
	Content   string `json:"content"`
	ReplyType string `json:"replyType"`
	Country   string `json:"country"`
}

type updateReplyRequest struct {
	Content   *string `json:"content"`
	ReplyType *string `json:"replyType"`
	Analysis  *string `json:"analysis"`
}

func (r updateReplyRequest) validate() error {
	if r.Content == nil && r.ReplyType == nil && r.Analysis == nil {
		return invalid("No fields to update")
	}
	return nil
}

func (r updateReplyRequest) update() domain.ReplyUpdate {
	upd := domain.ReplyUpdate{Content: r.Content, Analysis: r.Analysis}
	if r.ReplyType != nil {
		t := domain.ReplyType(strings.ToLower(strings.TrimSpace(*r.ReplyType)))
		upd.ReplyType = &t
	}
	return upd
}

type createDocumentRequest struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	DocumentType string   `json:"documentType"`
	Analysis     string   `json:"analysis"`
	Tags         []string `json:"tags"`
}

func (r createDocumentRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Content) == "" || strings.TrimSpace(r.DocumentType) == "" {
		return invalid("Title, content, and documentType are required")
	}
	return nil
}

type updateDocumentRequest struct {
	Title        *string   `json:"title"`
	Content      *string   `json:"content"`
	DocumentType *string   `json:"documentType"`
	Analysis     *string   `json:"analysis"`
	Tags         *[]string `json:"tags"`
}

func (r updateDocumentRequest) validate() error {
	if r.Title == nil && r.Content == nil && r.DocumentType == nil && r.Analysis == nil && r.Tags == nil {
		return invalid("No fields to update")
	}
	return nil
}

type documentResponse struct {
	DocumentID string          `json:"documentId"`
	Document   domain.Document `json:"document"`
}

type updateProfileRequest struct {
	Specializations *[]string `json:"specializations"`
	Location        *string   `json:"location"`
	Bio             *string   `json:"bio"`
}

func (r updateProfileRequest) validate() error {
	if r.Specializations == nil && r.Location == nil && r.Bio == nil {
		return invalid("No fields to update")
	}
	return nil
}

type queryRequest struct {
	Query   string `json:"query"`
	Type    string `json:"type"`
	Country string `json:"country"`
}

func (r queryRequest) validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return invalid("Query is required")
	}
	return nil
}

type queryResponse struct {
	QueryID  string `json:"queryId"`
	Response string `json:"response"`
}

type guidanceRequest struct {
	Query   string `json:"query"`
	Type    string `json:"type"`
	Country string `json:"country"`
}

func (r guidanceRequest) validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return invalid("Query is required")
	}
	return nil
}
