package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"timelog/internal/model"
)

// Label is either of the two name-addressed entities.
type Label interface {
	model.Category | model.Tag
}

// LabelRepository implements the shared get-or-create / rename / delete
// lifecycle for categories and tags. Tag lookups are narrowed to their
// owning category through the scope condition.
type LabelRepository[T Label] struct {
	db *gorm.DB
}

func NewLabelRepository[T Label](db *gorm.DB) *LabelRepository[T] {
	return &LabelRepository[T]{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *LabelRepository[T]) WithTx(tx *gorm.DB) *LabelRepository[T] {
	return &LabelRepository[T]{db: tx}
}

// FirstByName finds the row whose name matches case-insensitively after
// trimming, or nil when there is none. scope narrows the lookup, e.g.
// {"category_id": id} for tags.
func (r *LabelRepository[T]) FirstByName(ctx context.Context, name string, scope map[string]any) (*T, error) {
	q := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name))
	if len(scope) > 0 {
		q = q.Where(scope)
	}
	var row T
	err := q.First(&row).Error
	switch {
	case err == nil:
		return &row, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find by name: %w", err)
	}
}

func (r *LabelRepository[T]) Create(ctx context.Context, row *T) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

// FindByID returns the row or nil when it does not exist.
func (r *LabelRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var row T
	err := r.db.WithContext(ctx).First(&row, id).Error
	switch {
	case err == nil:
		return &row, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("find by id: %w", err)
	}
}

// NameTaken reports whether a row other than excludeID already uses the
// trimmed name, case-insensitively, within the scope.
func (r *LabelRepository[T]) NameTaken(ctx context.Context, name string, scope map[string]any, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(new(T)).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		Where("id != ?", excludeID)
	if len(scope) > 0 {
		q = q.Where(scope)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check name: %w", err)
	}
	return n > 0, nil
}

// Rename trims and overwrites the name field. Returns false when the id
// does not exist.
func (r *LabelRepository[T]) Rename(ctx context.Context, id uint, newName string) (bool, error) {
	return r.UpdateField(ctx, id, "name", strings.TrimSpace(newName))
}

// UpdateField sets a single column. Returns false when the id does not
// exist.
func (r *LabelRepository[T]) UpdateField(ctx context.Context, id uint, column string, value any) (bool, error) {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return false, fmt.Errorf("update %s: %w", column, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *LabelRepository[T]) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(new(T), id).Error; err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// DeleteWhere removes every row matching the scope.
func (r *LabelRepository[T]) DeleteWhere(ctx context.Context, scope map[string]any) error {
	if err := r.db.WithContext(ctx).Where(scope).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete where: %w", err)
	}
	return nil
}

// List returns rows ordered by name, optionally narrowed by scope.
func (r *LabelRepository[T]) List(ctx context.Context, scope map[string]any) ([]T, error) {
	q := r.db.WithContext(ctx).Order("name ASC")
	if len(scope) > 0 {
		q = q.Where(scope)
	}
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return rows, nil
}
