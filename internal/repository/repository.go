package repository

import (
	"context"
	"fmt"

	"github.com/lexdesk/backoffice/internal/models"
	"gorm.io/gorm"
)

// Transaction runs fn inside a database transaction. The transaction is rolled back
// when fn returns an error or panics, and committed otherwise.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// paginate counts the rows matched by q and loads one page of them.
// The load scopes (preloads) are applied to the page query only.
func paginate[T any](q *gorm.DB, p models.PageParams, order string, load ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	if total == 0 {
		return items, 0, nil
	}
	if err := base.Scopes(load...).Order(order).Limit(p.Limit).Offset(p.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// like builds a case-insensitive contains pattern
func like(s string) string {
	return "%" + s + "%"
}
