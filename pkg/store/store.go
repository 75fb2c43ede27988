package store

import (
	"errors"
	"time"

	"legalgpt/pkg/domain"
)

// ErrDuplicate is returned when a write collides with a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// Store defines persistence for users, conversations, legal artifacts and usage.
// Lookups return (zero, false, nil) when the record does not exist.
type Store interface {
	// users
	CreateUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)

	// conversations
	CreateConversation(domain.Conversation) error
	GetConversation(id string) (domain.Conversation, bool, error)
	ListConversationsByOwner(ownerID string) ([]domain.Conversation, error)
	AppendMessage(conversationID string, msg domain.ChatMessage) (bool, error)
	ListMessages(conversationID string) ([]domain.ChatMessage, error)
	DeleteConversation(id string) error

	// notices
	CreateNotice(domain.Notice) error
	GetNotice(id string) (domain.Notice, bool, error)
	ListNoticesByOwner(ownerID string) ([]domain.Notice, error)
	UpdateNotice(id string, upd domain.NoticeUpdate, at time.Time) (domain.Notice, bool, error)
	DeleteNotice(id string) error

	// replies
	CreateReply(domain.Reply) error
	GetReply(id string) (domain.Reply, bool, error)
	ListRepliesByNotice(noticeID string) ([]domain.Reply, error)
	UpdateReply(id string, upd domain.ReplyUpdate, at time.Time) (domain.Reply, bool, error)
	DeleteReply(id string) error

	// documents
	CreateDocument(domain.Document) error
	GetDocument(id string) (domain.Document, bool, error)
	ListDocumentsByOwner(ownerID string) ([]domain.Document, error)
	UpdateDocument(id string, upd domain.DocumentUpdate, at time.Time) (domain.Document, bool, error)
	DeleteDocument(id string) error

	// query history
	CreateQuery(domain.QueryRecord) error
	ListQueriesByOwner(ownerID string, limit int) ([]domain.QueryRecord, error)

	// profiles
	GetOrCreateProfile(ownerID string) (domain.Profile, error)
	UpdateProfile(ownerID string, upd domain.ProfileUpdate) (domain.Profile, error)
	IncrementQueryCount(ownerID string) error
	IncrementDocumentCount(ownerID string) error

	// DeleteUserData removes the owner's queries, documents and profile
	// atomically.
	DeleteUserData(ownerID string) error

	Ping() error
	Counts() (Stats, error)
}

// Stats reports row counts per table for diagnostics.
type Stats map[string]int64
