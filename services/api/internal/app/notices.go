package app

import (
	"context"
	"fmt"
	"strings"

	"legalgpt/internal/util"
	"legalgpt/pkg/domain"
	"legalgpt/pkg/legal"
)

// NoticeInput is a new notice as submitted by its owner.
type NoticeInput struct {
	Title      string
	Content    string
	NoticeType string
	Sender     string
	Status     domain.NoticeStatus
	Tags       []string
	Country    string
}

// CreateNotice stores a notice together with an AI analysis of it. The
// notice is not stored when the analysis cannot be produced.
func (a *App) CreateNotice(ctx context.Context, user domain.User, in NoticeInput) (domain.Notice, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.NoticeType = strings.TrimSpace(in.NoticeType)
	if in.Title == "" || strings.TrimSpace(in.Content) == "" || in.NoticeType == "" {
		return domain.Notice{}, invalid("Title, content, and noticeType are required")
	}
	if in.Status == "" {
		in.Status = domain.NoticeActive
	}
	if !in.Status.Valid() {
		return domain.Notice{}, invalid("Status must be draft, active, or resolved")
	}
	country, err := resolveCountry(in.Country)
	if err != nil {
		return domain.Notice{}, err
	}
	analysis, err := a.gateway.GetGuidance(ctx, legal.NoticeAnalysisPrompt(in.Title, in.Content, in.NoticeType), country)
	if err != nil {
		return domain.Notice{}, err
	}
	now := a.timestamp()
	notice := domain.Notice{
		ID:         util.NewID(),
		OwnerID:    user.ID,
		Title:      in.Title,
		Content:    in.Content,
		NoticeType: in.NoticeType,
		Sender:     strings.TrimSpace(in.Sender),
		Status:     in.Status,
		Analysis:   analysis,
		Tags:       normalizeTags(in.Tags),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.store.CreateNotice(notice); err != nil {
		return domain.Notice{}, fmt.Errorf("create notice: %w", err)
	}
	return notice, nil
}

func (a *App) ListNotices(user domain.User) ([]domain.Notice, error) {
	notices, err := a.store.ListNoticesByOwner(user.ID)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

func (a *App) GetNotice(user domain.User, id string) (domain.Notice, error) {
	return loadOwned(user, "Notice", id, a.store.GetNotice)
}

// UpdateNotice applies the set fields of upd to an owned notice.
func (a *App) UpdateNotice(user domain.User, id string, upd domain.NoticeUpdate) (domain.Notice, error) {
	if _, err := a.GetNotice(user, id); err != nil {
		return domain.Notice{}, err
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return domain.Notice{}, invalid("Title cannot be empty")
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return domain.Notice{}, invalid("Content cannot be empty")
	}
	if upd.NoticeType != nil && strings.TrimSpace(*upd.NoticeType) == "" {
		return domain.Notice{}, invalid("Notice type cannot be empty")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return domain.Notice{}, invalid("Status must be draft, active, or resolved")
	}
	if upd.Tags != nil {
		tags := normalizeTags(*upd.Tags)
		upd.Tags = &tags
	}
	notice, ok, err := a.store.UpdateNotice(id, upd, a.timestamp())
	if err != nil {
		return domain.Notice{}, fmt.Errorf("update notice: %w", err)
	}
	if !ok {
		return domain.Notice{}, notFound("Notice")
	}
	return notice, nil
}

// DeleteNotice removes an owned notice and its replies.
func (a *App) DeleteNotice(user domain.User, id string) error {
	if _, err := a.GetNotice(user, id); err != nil {
		return err
	}
	if err := a.store.DeleteNotice(id); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}

// ReplyInput is a new reply to a notice.
type ReplyInput struct {
	Content   string
	ReplyType domain.ReplyType
	Country   string
}

// CreateReply attaches a reply to a notice the caller owns, with an AI review
// of the reply against the notice.
func (a *App) CreateReply(ctx context.Context, user domain.User, noticeID string, in ReplyInput) (domain.Reply, error) {
	notice, err := a.GetNotice(user, noticeID)
	if err != nil {
		return domain.Reply{}, err
	}
	if strings.TrimSpace(in.Content) == "" || in.ReplyType == "" {
		return domain.Reply{}, invalid("Content and replyType are required")
	}
	if !in.ReplyType.Valid() {
		return domain.Reply{}, invalid("Reply type must be draft, formal, or response")
	}
	country, err := resolveCountry(in.Country)
	if err != nil {
		return domain.Reply{}, err
	}
	analysis, err := a.gateway.GetGuidance(ctx, legal.ReplyReviewPrompt(notice.NoticeType, notice.Content, in.Content), country)
	if err != nil {
		return domain.Reply{}, err
	}
	now := a.timestamp()
	reply := domain.Reply{
		ID:        util.NewID(),
		NoticeID:  notice.ID,
		OwnerID:   notice.OwnerID,
		Content:   in.Content,
		ReplyType: in.ReplyType,
		Analysis:  analysis,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateReply(reply); err != nil {
		return domain.Reply{}, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

func (a *App) ListReplies(user domain.User, noticeID string) ([]domain.Reply, error) {
	if _, err := a.GetNotice(user, noticeID); err != nil {
		return nil, err
	}
	replies, err := a.store.ListRepliesByNotice(noticeID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}

// GetReply loads a reply through its parent notice. A reply that belongs to
// a different notice than the one in the path is reported missing.
func (a *App) GetReply(user domain.User, noticeID, replyID string) (domain.Reply, error) {
	if _, err := a.GetNotice(user, noticeID); err != nil {
		return domain.Reply{}, err
	}
	reply, err := loadOwned(user, "Reply", replyID, a.store.GetReply)
	if err != nil {
		return domain.Reply{}, err
	}
	if reply.NoticeID != noticeID {
		return domain.Reply{}, notFound("Reply")
	}
	return reply, nil
}

func (a *App) UpdateReply(user domain.User, noticeID, replyID string, upd domain.ReplyUpdate) (domain.Reply, error) {
	if _, err := a.GetReply(user, noticeID, replyID); err != nil {
		return domain.Reply{}, err
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return domain.Reply{}, invalid("Content cannot be empty")
	}
	if upd.ReplyType != nil && !upd.ReplyType.Valid() {
		return domain.Reply{}, invalid("Reply type must be draft, formal, or response")
	}
	reply, ok, err := a.store.UpdateReply(replyID, upd, a.timestamp())
	if err != nil {
		return domain.Reply{}, fmt.Errorf("update reply: %w", err)
	}
	if !ok {
		return domain.Reply{}, notFound("Reply")
	}
	return reply, nil
}

func (a *App) DeleteReply(user domain.User, noticeID, replyID string) error {
	if _, err := a.GetReply(user, noticeID, replyID); err != nil {
		return err
	}
	if err := a.store.DeleteReply(replyID); err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}
	return nil
}
