package domain

import "time"

// Owned is implemented by every record that belongs to a single user.
type Owned interface {
	Owner() string
}

// User represents an account holder.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

const (
	ProviderPassword = "credentials"
	ProviderGoogle   = "google"
)

// ChatRole tags the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Valid reports whether the role is one of the two known tags.
func (r ChatRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is a single entry of a conversation.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an ordered message thread.
type Conversation struct {
	ID        string        `json:"id"`
	OwnerID   string        `json:"userId"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c Conversation) Owner() string { return c.OwnerID }

// NoticeStatus captures the lifecycle of a legal notice.
type NoticeStatus string

const (
	NoticeDraft    NoticeStatus = "draft"
	NoticeActive   NoticeStatus = "active"
	NoticeResolved NoticeStatus = "resolved"
)

func (s NoticeStatus) Valid() bool {
	switch s {
	case NoticeDraft, NoticeActive, NoticeResolved:
		return true
	}
	return false
}

// Notice is a legal notice received or drafted by a user.
type Notice struct {
	ID         string       `json:"id"`
	OwnerID    string       `json:"userId"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	NoticeType string       `json:"noticeType"`
	Sender     string       `json:"sender,omitempty"`
	Status     NoticeStatus `json:"status"`
	Analysis   string       `json:"analysis,omitempty"`
	Tags       []string     `json:"tags"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func (n Notice) Owner() string { return n.OwnerID }

// NoticeUpdate holds the fields a PATCH may change. Nil means unchanged.
type NoticeUpdate struct {
	Title      *string
	Content    *string
	NoticeType *string
	Sender     *string
	Status     *NoticeStatus
	Analysis   *string
	Tags       *[]string
}

// ReplyType classifies a reply to a notice.
type ReplyType string

const (
	ReplyDraft    ReplyType = "draft"
	ReplyFormal   ReplyType = "formal"
	ReplyResponse ReplyType = "response"
)

func (t ReplyType) Valid() bool {
	switch t {
	case ReplyDraft, ReplyFormal, ReplyResponse:
		return true
	}
	return false
}

// Reply is a response drafted against a notice.
type Reply struct {
	ID        string    `json:"id"`
	NoticeID  string    `json:"noticeId"`
	OwnerID   string    `json:"userId"`
	Content   string    `json:"content"`
	ReplyType ReplyType `json:"replyType"`
	Analysis  string    `json:"analysis,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r Reply) Owner() string { return r.OwnerID }

type ReplyUpdate struct {
	Content   *string
	ReplyType *ReplyType
	Analysis  *string
}

// Document is a freeform legal document stored for a user.
type Document struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	DocumentType string    `json:"documentType"`
	Analysis     string    `json:"analysis,omitempty"`
	Tags         []string  `json:"tags"`
	FileName     string    `json:"fileName,omitempty"`
	StorageKey   string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (d Document) Owner() string { return d.OwnerID }

type DocumentUpdate struct {
	Title        *string
	Content      *string
	DocumentType *string
	Analysis     *string
	Tags         *[]string
}

// QueryType distinguishes free questions from document analysis requests.
type QueryType string

const (
	QueryQuestion         QueryType = "question"
	QueryDocumentAnalysis QueryType = "document_analysis"
)

func (t QueryType) Valid() bool {
	return t == QueryQuestion || t == QueryDocumentAnalysis
}

// QueryRecord is a stored question/answer pair.
type QueryRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	QueryType QueryType `json:"queryType"`
	CreatedAt time.Time `json:"createdAt"`
}

func (q QueryRecord) Owner() string { return q.OwnerID }

// Profile tracks per-user usage counters and practice details.
type Profile struct {
	OwnerID         string    `json:"userId"`
	Specializations []string  `json:"specializations"`
	Location        string    `json:"location,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	QueriesCount    int64     `json:"queriesCount"`
	DocumentsCount  int64     `json:"documentsCount"`
	TotalQueries    int64     `json:"totalQueries"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p Profile) Owner() string { return p.OwnerID }

type ProfileUpdate struct {
	Specializations *[]string
	Location        *string
	Bio             *string
}
