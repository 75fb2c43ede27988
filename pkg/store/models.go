package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string
	Provider     string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type ConversationModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	OwnerID   string    `gorm:"not null;index"`
	Title     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null;index"`
}

// MessageModel rows are only ever inserted; Seq fixes append order.
type MessageModel struct {
	Seq            uint64    `gorm:"primaryKey;autoIncrement"`
	ConversationID string    `gorm:"not null;index"`
	Role           string    `gorm:"not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

type NoticeModel struct {
	ID         string `gorm:"primaryKey;size:64"`
	OwnerID    string `gorm:"not null;index"`
	Title      string `gorm:"not null"`
	Content    string `gorm:"type:text;not null"`
	NoticeType string `gorm:"not null"`
	Sender     string
	Status     string `gorm:"not null"`
	Analysis   string `gorm:"type:text"`
	Tags       datatypes.JSON
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type ReplyModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	NoticeID  string    `gorm:"not null;index"`
	OwnerID   string    `gorm:"not null;index"`
	Content   string    `gorm:"type:text;not null"`
	ReplyType string    `gorm:"not null"`
	Analysis  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

type DocumentModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	OwnerID      string `gorm:"not null;index"`
	Title        string `gorm:"not null"`
	Content      string `gorm:"type:text;not null"`
	DocumentType string `gorm:"not null"`
	Analysis     string `gorm:"type:text"`
	Tags         datatypes.JSON
	FileName     string
	StorageKey   string
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`
}

type QueryModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	OwnerID   string    `gorm:"not null;index"`
	Query     string    `gorm:"type:text;not null"`
	Response  string    `gorm:"type:text;not null"`
	QueryType string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// ProfileModel is keyed by owner so upserts can target the primary key.
type ProfileModel struct {
	OwnerID         string `gorm:"primaryKey;size:64"`
	Specializations datatypes.JSON
	Location        string
	Bio             string    `gorm:"type:text"`
	QueriesCount    int64     `gorm:"not null"`
	DocumentsCount  int64     `gorm:"not null"`
	TotalQueries    int64     `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func allModels() []any {
	return []any{
		&UserModel{},
		&ConversationModel{},
		&MessageModel{},
		&NoticeModel{},
		&ReplyModel{},
		&DocumentModel{},
		&QueryModel{},
		&ProfileModel{},
	}
}
