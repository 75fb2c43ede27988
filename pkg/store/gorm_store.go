package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"legalgpt/pkg/domain"
)

const migrateLockID int64 = 51807321

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// GormStore implements Store using GORM on Postgres (or SQLite for local runs).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database for driver and runs auto-migrations.
func NewGormStore(driver, dsn string) (*GormStore, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverPostgres
	}
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases alive for the store's lifetime.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	migrate := func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(allModels()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}
	if driver == DriverPostgres {
		err = withMigrationLock(db, migrate)
	} else {
		err = migrate(db)
	}
	if err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// withMigrationLock serialises migrations across replicas starting together.
func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// Ping checks database connectivity.
func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Counts returns the number of rows in each table.
func (s *GormStore) Counts() (Stats, error) {
	out := Stats{}
	for _, model := range allModels() {
		stmt := &gorm.Statement{DB: s.db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		var n int64
		if err := s.db.Model(model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", stmt.Schema.Table, err)
		}
		out[stmt.Schema.Table] = n
	}
	return out, nil
}

// CreateUser inserts a new user. A taken email yields ErrDuplicate.
func (s *GormStore) CreateUser(u domain.User) error {
	model := userToModel(u)
	return translateWriteError(s.db.Create(&model).Error)
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	model, ok, err := findWhere[UserModel](s.db, "email = ?", email)
	if err != nil || !ok {
		return domain.User{}, ok, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	model, ok, err := findByID[UserModel](s.db, id)
	if err != nil || !ok {
		return domain.User{}, ok, err
	}
	return userFromModel(model), true, nil
}

// CreateConversation stores an empty conversation.
func (s *GormStore) CreateConversation(c domain.Conversation) error {
	model := conversationToModel(c)
	return translateWriteError(s.db.Create(&model).Error)
}

// GetConversation loads a conversation with its messages in append order.
func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	model, ok, err := findByID[ConversationModel](s.db, id)
	if err != nil || !ok {
		return domain.Conversation{}, ok, err
	}
	msgs, err := s.ListMessages(id)
	if err != nil {
		return domain.Conversation{}, false, err
	}
	conv := conversationFromModel(model)
	conv.Messages = msgs
	return conv, true, nil
}

// ListConversationsByOwner returns the owner's conversations, most recently
// updated first, without messages.
func (s *GormStore) ListConversationsByOwner(ownerID string) ([]domain.Conversation, error) {
	var models []ConversationModel
	if err := s.db.Where("owner_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Conversation, 0, len(models))
	for _, m := range models {
		conv := conversationFromModel(m)
		conv.Messages = []domain.ChatMessage{}
		out = append(out, conv)
	}
	return out, nil
}

// AppendMessage adds msg to the end of the conversation. Each message is its
// own row, so concurrent appends cannot overwrite one another. Returns false
// when the conversation does not exist.
func (s *GormStore) AppendMessage(conversationID string, msg domain.ChatMessage) (bool, error) {
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ConversationModel{}).
			Where("id = ?", conversationID).
			Update("updated_at", msg.Timestamp)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		found = true
		model := messageToModel(conversationID, msg)
		return tx.Create(&model).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// ListMessages returns a conversation's messages in append order.
func (s *GormStore) ListMessages(conversationID string) ([]domain.ChatMessage, error) {
	var models []MessageModel
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, 0, len(models))
	for _, m := range models {
		out = append(out, messageFromModel(m))
	}
	return out, nil
}

// DeleteConversation removes the conversation and all of its messages.
func (s *GormStore) DeleteConversation(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&MessageModel{}).Error; err != nil {
			return err
		}
		return deleteByID[ConversationModel](tx, id)
	})
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Provider:     u.Provider,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Provider:     m.Provider,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func conversationToModel(c domain.Conversation) ConversationModel {
	return ConversationModel{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func conversationFromModel(m ConversationModel) domain.Conversation {
	return domain.Conversation{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func messageToModel(conversationID string, msg domain.ChatMessage) MessageModel {
	return MessageModel{
		ConversationID: conversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		CreatedAt:      msg.Timestamp,
	}
}

func messageFromModel(m MessageModel) domain.ChatMessage {
	return domain.ChatMessage{
		Role:      domain.ChatRole(m.Role),
		Content:   m.Content,
		Timestamp: m.CreatedAt,
	}
}

func encodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

func decodeStrings(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	if out == nil {
		out = []string{}
	}
	return out
}
