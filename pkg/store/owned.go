package store

import (
	"errors"

	"gorm.io/gorm"
)

// Generic helpers shared by the owner-scoped tables. M is a GORM model struct.

func findWhere[M any](db *gorm.DB, query string, args ...any) (M, bool, error) {
	var model M
	err := db.Where(query, args...).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model, false, nil
	}
	if err != nil {
		return model, false, err
	}
	return model, true, nil
}

func findByID[M any](db *gorm.DB, id string) (M, bool, error) {
	return findWhere[M](db, "id = ?", id)
}

// listNewestFirst returns rows where column equals value, newest created first.
func listNewestFirst[M any](db *gorm.DB, column, value string, limit int) ([]M, error) {
	var models []M
	q := db.Where(column+" = ?", value).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

// updateByID applies a partial update and reports whether the row exists.
func updateByID[M any](db *gorm.DB, id string, fields map[string]any) (bool, error) {
	res := db.Model(new(M)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func deleteByID[M any](db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(new(M)).Error
}

func deleteByOwner[M any](db *gorm.DB, ownerID string) error {
	return db.Where("owner_id = ?", ownerID).Delete(new(M)).Error
}

func mapSlice[M, T any](models []M, conv func(M) T) []T {
	out := make([]T, 0, len(models))
	for _, m := range models {
		out = append(out, conv(m))
	}
	return out
}
