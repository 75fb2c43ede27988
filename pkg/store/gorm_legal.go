package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"legalgpt/pkg/domain"
)

// CreateNotice stores a new notice.
func (s *GormStore) CreateNotice(n domain.Notice) error {
	model := noticeToModel(n)
	return translateWriteError(s.db.Create(&model).Error)
}

func (s *GormStore) GetNotice(id string) (domain.Notice, bool, error) {
	model, ok, err := findByID[NoticeModel](s.db, id)
	if err != nil || !ok {
		return domain.Notice{}, ok, err
	}
	return noticeFromModel(model), true, nil
}

func (s *GormStore) ListNoticesByOwner(ownerID string) ([]domain.Notice, error) {
	models, err := listNewestFirst[NoticeModel](s.db, "owner_id", ownerID, 0)
	if err != nil {
		return nil, err
	}
	return mapSlice(models, noticeFromModel), nil
}

// UpdateNotice applies the set fields of upd and refreshes updated_at.
func (s *GormStore) UpdateNotice(id string, upd domain.NoticeUpdate, at time.Time) (domain.Notice, bool, error) {
	fields := map[string]any{"updated_at": at}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.NoticeType != nil {
		fields["notice_type"] = *upd.NoticeType
	}
	if upd.Sender != nil {
		fields["sender"] = *upd.Sender
	}
	if upd.Status != nil {
		fields["status"] = string(*upd.Status)
	}
	if upd.Analysis != nil {
		fields["analysis"] = *upd.Analysis
	}
	if upd.Tags != nil {
		fields["tags"] = encodeStrings(*upd.Tags)
	}
	ok, err := updateByID[NoticeModel](s.db, id, fields)
	if err != nil || !ok {
		return domain.Notice{}, ok, err
	}
	return s.GetNotice(id)
}

// DeleteNotice removes a notice together with its replies.
func (s *GormStore) DeleteNotice(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notice_id = ?", id).Delete(&ReplyModel{}).Error; err != nil {
			return err
		}
		return deleteByID[NoticeModel](tx, id)
	})
}

func (s *GormStore) CreateReply(r domain.Reply) error {
	model := replyToModel(r)
	return translateWriteError(s.db.Create(&model).Error)
}

func (s *GormStore) GetReply(id string) (domain.Reply, bool, error) {
	model, ok, err := findByID[ReplyModel](s.db, id)
	if err != nil || !ok {
		return domain.Reply{}, ok, err
	}
	return replyFromModel(model), true, nil
}

func (s *GormStore) ListRepliesByNotice(noticeID string) ([]domain.Reply, error) {
	models, err := listNewestFirst[ReplyModel](s.db, "notice_id", noticeID, 0)
	if err != nil {
		return nil, err
	}
	return mapSlice(models, replyFromModel), nil
}

func (s *GormStore) UpdateReply(id string, upd domain.ReplyUpdate, at time.Time) (domain.Reply, bool, error) {
	fields := map[string]any{"updated_at": at}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.ReplyType != nil {
		fields["reply_type"] = string(*upd.ReplyType)
	}
	if upd.Analysis != nil {
		fields["analysis"] = *upd.Analysis
	}
	ok, err := updateByID[ReplyModel](s.db, id, fields)
	if err != nil || !ok {
		return domain.Reply{}, ok, err
	}
	return s.GetReply(id)
}

func (s *GormStore) DeleteReply(id string) error {
	return deleteByID[ReplyModel](s.db, id)
}

func (s *GormStore) CreateDocument(d domain.Document) error {
	model := documentToModel(d)
	return translateWriteError(s.db.Create(&model).Error)
}

func (s *GormStore) GetDocument(id string) (domain.Document, bool, error) {
	model, ok, err := findByID[DocumentModel](s.db, id)
	if err != nil || !ok {
		return domain.Document{}, ok, err
	}
	return documentFromModel(model), true, nil
}

func (s *GormStore) ListDocumentsByOwner(ownerID string) ([]domain.Document, error) {
	models, err := listNewestFirst[DocumentModel](s.db, "owner_id", ownerID, 0)
	if err != nil {
		return nil, err
	}
	return mapSlice(models, documentFromModel), nil
}

func (s *GormStore) UpdateDocument(id string, upd domain.DocumentUpdate, at time.Time) (domain.Document, bool, error) {
	fields := map[string]any{"updated_at": at}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.DocumentType != nil {
		fields["document_type"] = *upd.DocumentType
	}
	if upd.Analysis != nil {
		fields["analysis"] = *upd.Analysis
	}
	if upd.Tags != nil {
		fields["tags"] = encodeStrings(*upd.Tags)
	}
	ok, err := updateByID[DocumentModel](s.db, id, fields)
	if err != nil || !ok {
		return domain.Document{}, ok, err
	}
	return s.GetDocument(id)
}

func (s *GormStore) DeleteDocument(id string) error {
	return deleteByID[DocumentModel](s.db, id)
}

func (s *GormStore) CreateQuery(q domain.QueryRecord) error {
	model := queryToModel(q)
	return translateWriteError(s.db.Create(&model).Error)
}

// ListQueriesByOwner returns the newest queries first; limit <= 0 means all.
func (s *GormStore) ListQueriesByOwner(ownerID string, limit int) ([]domain.QueryRecord, error) {
	models, err := listNewestFirst[QueryModel](s.db, "owner_id", ownerID, limit)
	if err != nil {
		return nil, err
	}
	return mapSlice(models, queryFromModel), nil
}

// GetOrCreateProfile returns the owner's profile, inserting a zeroed one
// first if needed. The insert is ON CONFLICT DO NOTHING, so concurrent first
// calls converge on a single row.
func (s *GormStore) GetOrCreateProfile(ownerID string) (domain.Profile, error) {
	now := time.Now().UTC()
	model := ProfileModel{
		OwnerID:         ownerID,
		Specializations: encodeStrings(nil),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(&model).Error; err != nil {
		return domain.Profile{}, err
	}
	return s.getProfile(ownerID)
}

// UpdateProfile upserts the set fields of upd.
func (s *GormStore) UpdateProfile(ownerID string, upd domain.ProfileUpdate) (domain.Profile, error) {
	now := time.Now().UTC()
	model := ProfileModel{
		OwnerID:         ownerID,
		Specializations: encodeStrings(nil),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	assignments := map[string]any{"updated_at": now}
	if upd.Specializations != nil {
		model.Specializations = encodeStrings(*upd.Specializations)
		assignments["specializations"] = model.Specializations
	}
	if upd.Location != nil {
		model.Location = *upd.Location
		assignments["location"] = *upd.Location
	}
	if upd.Bio != nil {
		model.Bio = *upd.Bio
		assignments["bio"] = *upd.Bio
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&model).Error; err != nil {
		return domain.Profile{}, err
	}
	return s.getProfile(ownerID)
}

// IncrementQueryCount bumps queriesCount and totalQueries by one in a single
// upsert statement.
func (s *GormStore) IncrementQueryCount(ownerID string) error {
	return s.incrementProfile(ownerID, ProfileModel{QueriesCount: 1, TotalQueries: 1}, map[string]any{
		"queries_count": gorm.Expr("profile_models.queries_count + 1"),
		"total_queries": gorm.Expr("profile_models.total_queries + 1"),
	})
}

// IncrementDocumentCount bumps documentsCount by one in a single upsert.
func (s *GormStore) IncrementDocumentCount(ownerID string) error {
	return s.incrementProfile(ownerID, ProfileModel{DocumentsCount: 1}, map[string]any{
		"documents_count": gorm.Expr("profile_models.documents_count + 1"),
	})
}

func (s *GormStore) incrementProfile(ownerID string, initial ProfileModel, assignments map[string]any) error {
	now := time.Now().UTC()
	initial.OwnerID = ownerID
	initial.Specializations = encodeStrings(nil)
	initial.CreatedAt = now
	initial.UpdatedAt = now
	assignments["updated_at"] = now
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&initial).Error
}

// DeleteUserData removes the owner's queries, documents and profile in one
// transaction. Either all three go or none do.
func (s *GormStore) DeleteUserData(ownerID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteByOwner[QueryModel](tx, ownerID); err != nil {
			return fmt.Errorf("delete queries: %w", err)
		}
		if err := deleteByOwner[DocumentModel](tx, ownerID); err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
		if err := deleteByOwner[ProfileModel](tx, ownerID); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		return nil
	})
}

func (s *GormStore) getProfile(ownerID string) (domain.Profile, error) {
	var model ProfileModel
	if err := s.db.Where("owner_id = ?", ownerID).Take(&model).Error; err != nil {
		return domain.Profile{}, err
	}
	return profileFromModel(model), nil
}

func noticeToModel(n domain.Notice) NoticeModel {
	return NoticeModel{
		ID:         n.ID,
		OwnerID:    n.OwnerID,
		Title:      n.Title,
		Content:    n.Content,
		NoticeType: n.NoticeType,
		Sender:     n.Sender,
		Status:     string(n.Status),
		Analysis:   n.Analysis,
		Tags:       encodeStrings(n.Tags),
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

func noticeFromModel(m NoticeModel) domain.Notice {
	return domain.Notice{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		Title:      m.Title,
		Content:    m.Content,
		NoticeType: m.NoticeType,
		Sender:     m.Sender,
		Status:     domain.NoticeStatus(m.Status),
		Analysis:   m.Analysis,
		Tags:       decodeStrings(m.Tags),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func replyToModel(r domain.Reply) ReplyModel {
	return ReplyModel{
		ID:        r.ID,
		NoticeID:  r.NoticeID,
		OwnerID:   r.OwnerID,
		Content:   r.Content,
		ReplyType: string(r.ReplyType),
		Analysis:  r.Analysis,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func replyFromModel(m ReplyModel) domain.Reply {
	return domain.Reply{
		ID:        m.ID,
		NoticeID:  m.NoticeID,
		OwnerID:   m.OwnerID,
		Content:   m.Content,
		ReplyType: domain.ReplyType(m.ReplyType),
		Analysis:  m.Analysis,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func documentToModel(d domain.Document) DocumentModel {
	return DocumentModel{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		Title:        d.Title,
		Content:      d.Content,
		DocumentType: d.DocumentType,
		Analysis:     d.Analysis,
		Tags:         encodeStrings(d.Tags),
		FileName:     d.FileName,
		StorageKey:   d.StorageKey,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func documentFromModel(m DocumentModel) domain.Document {
	return domain.Document{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Title:        m.Title,
		Content:      m.Content,
		DocumentType: m.DocumentType,
		Analysis:     m.Analysis,
		Tags:         decodeStrings(m.Tags),
		FileName:     m.FileName,
		StorageKey:   m.StorageKey,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func queryToModel(q domain.QueryRecord) QueryModel {
	return QueryModel{
		ID:        q.ID,
		OwnerID:   q.OwnerID,
		Query:     q.Query,
		Response:  q.Response,
		QueryType: string(q.QueryType),
		CreatedAt: q.CreatedAt,
	}
}

func queryFromModel(m QueryModel) domain.QueryRecord {
	return domain.QueryRecord{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Query:     m.Query,
		Response:  m.Response,
		QueryType: domain.QueryType(m.QueryType),
		CreatedAt: m.CreatedAt,
	}
}

func profileFromModel(m ProfileModel) domain.Profile {
	return domain.Profile{
		OwnerID:         m.OwnerID,
		Specializations: decodeStrings(m.Specializations),
		Location:        m.Location,
		Bio:             m.Bio,
		QueriesCount:    m.QueriesCount,
		DocumentsCount:  m.DocumentsCount,
		TotalQueries:    m.TotalQueries,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
