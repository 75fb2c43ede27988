package app

import (
	"fmt"
	"strings"

	"legalgpt/internal/util"
	"legalgpt/pkg/domain"
)

const maxMessageRunes = 20000

// CreateConversation starts an empty thread for user.
func (a *App) CreateConversation(user domain.User, title string) (domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultConversationTitle
	}
	now := a.timestamp()
	conv := domain.Conversation{
		ID:        util.NewID(),
		OwnerID:   user.ID,
		Title:     title,
		Messages:  []domain.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateConversation(conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// ListConversations returns the user's threads, most recently active first.
func (a *App) ListConversations(user domain.User) ([]domain.Conversation, error) {
	convs, err := a.store.ListConversationsByOwner(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

func (a *App) GetConversation(user domain.User, id string) (domain.Conversation, error) {
	return loadOwned(user, "Conversation", id, a.store.GetConversation)
}

func (a *App) DeleteConversation(user domain.User, id string) error {
	if _, err := a.GetConversation(user, id); err != nil {
		return err
	}
	if err := a.store.DeleteConversation(id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// AppendMessage adds one message to the end of an owned conversation and
// returns the conversation as stored afterwards.
func (a *App) AppendMessage(user domain.User, id string, role domain.ChatRole, content string) (domain.Conversation, error) {
	if _, err := a.GetConversation(user, id); err != nil {
		return domain.Conversation{}, err
	}
	if strings.TrimSpace(content) == "" || role == "" {
		return domain.Conversation{}, invalid("Content and role are required")
	}
	if !role.Valid() {
		return domain.Conversation{}, invalid("Role must be user or assistant")
	}
	if len([]rune(content)) > maxMessageRunes {
		return domain.Conversation{}, invalid("Message must be at most %d characters", maxMessageRunes)
	}
	found, err := a.store.AppendMessage(id, domain.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: a.timestamp(),
	})
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("append message: %w", err)
	}
	if !found {
		return domain.Conversation{}, notFound("Conversation")
	}
	return a.GetConversation(user, id)
}

// ListMessages returns an owned conversation's messages in append order.
func (a *App) ListMessages(user domain.User, id string) ([]domain.ChatMessage, error) {
	if _, err := a.GetConversation(user, id); err != nil {
		return nil, err
	}
	msgs, err := a.store.ListMessages(id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}
