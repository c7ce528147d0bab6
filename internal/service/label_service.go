package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"timelog/internal/model"
	"timelog/internal/repository"
)

// LabelService is the category/tag registry: get-or-create, rename,
// delete, and listings for both label entities. Categories own tags;
// deleting a category is the one destructive cascade in the system and
// also destroys its activities.
type LabelService struct {
	db         *gorm.DB
	categories *repository.LabelRepository[model.Category]
	tags       *repository.LabelRepository[model.Tag]
	activities *repository.ActivityRepository
}

func NewLabelService(
	db *gorm.DB,
	categories *repository.LabelRepository[model.Category],
	tags *repository.LabelRepository[model.Tag],
	activities *repository.ActivityRepository,
) *LabelService {
	return &LabelService{db: db, categories: categories, tags: tags, activities: activities}
}

// GetOrCreateCategory looks the name up case-insensitively after trimming
// and inserts it when missing, atomically. color only applies on
// creation; an existing category keeps its color.
func (s *LabelService) GetOrCreateCategory(ctx context.Context, name string, color *string) (uint, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, fmt.Errorf("category name is required")
	}

	var id uint
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.categories.WithTx(tx)
		existing, err := repo.FirstByName(ctx, name, nil)
		if err != nil {
			return err
		}
		if existing != nil {
			id = existing.ID
			return nil
		}
		row := model.Category{Name: name, Color: color}
		if err := repo.Create(ctx, &row); err != nil {
			return err
		}
		id, created = row.ID, true
		return nil
	})
	return id, created, err
}

// GetOrCreateTag is the tag counterpart, scoped to the owning category.
func (s *LabelService) GetOrCreateTag(ctx context.Context, categoryID uint, name string) (uint, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, fmt.Errorf("tag name is required")
	}

	var id uint
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.tags.WithTx(tx)
		existing, err := repo.FirstByName(ctx, name, map[string]any{"category_id": categoryID})
		if err != nil {
			return err
		}
		if existing != nil {
			id = existing.ID
			return nil
		}
		row := model.Tag{CategoryID: categoryID, Name: name}
		if err := repo.Create(ctx, &row); err != nil {
			return err
		}
		id, created = row.ID, true
		return nil
	})
	return id, created, err
}

// RenameCategory overwrites the trimmed name, failing with ErrNameTaken
// when another category already uses it. Returns false when the id does
// not exist.
func (s *LabelService) RenameCategory(ctx context.Context, id uint, newName string) (bool, error) {
	renamed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.categories.WithTx(tx)
		taken, err := repo.NameTaken(ctx, newName, nil, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}
		renamed, err = repo.Rename(ctx, id, newName)
		return err
	})
	return renamed, err
}

// RenameTag overwrites the trimmed name, failing with ErrNameTaken when a
// sibling tag in the same category already uses it. Returns false when
// the id does not exist.
func (s *LabelService) RenameTag(ctx context.Context, id uint, newName string) (bool, error) {
	renamed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.tags.WithTx(tx)
		tag, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if tag == nil {
			return nil
		}
		taken, err := repo.NameTaken(ctx, newName, map[string]any{"category_id": tag.CategoryID}, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameTaken
		}
		renamed, err = repo.Rename(ctx, id, newName)
		return err
	})
	return renamed, err
}

// SetCategoryColor updates the display color (hex #RRGGBB). Returns false
// when the id does not exist.
func (s *LabelService) SetCategoryColor(ctx context.Context, id uint, color string) (bool, error) {
	return s.categories.UpdateField(ctx, id, "color", strings.TrimSpace(color))
}

// DeleteTag removes the tag and every association referencing it;
// activities themselves are left intact. Returns the deleted name, or
// found=false when the id does not exist.
func (s *LabelService) DeleteTag(ctx context.Context, id uint) (string, bool, error) {
	name := ""
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.tags.WithTx(tx)
		tag, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if tag == nil {
			return nil
		}
		if err := s.activities.WithTx(tx).RemoveTag(ctx, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		name, found = tag.Name, true
		return nil
	})
	return name, found, err
}

// DeleteCategory removes the category, its tags, and every activity that
// references it, reporting how many activities were destroyed. The caller
// must confirm with the user before invoking this.
func (s *LabelService) DeleteCategory(ctx context.Context, id uint) (string, int64, bool, error) {
	name := ""
	var destroyed int64
	found := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)
		category, err := categories.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return nil
		}

		activities := s.activities.WithTx(tx)
		destroyed, err = activities.CountByCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := activities.DeleteByCategory(ctx, id); err != nil {
			return err
		}

		// A tag of this category may still be attached to activities of
		// other categories; drop those associations before the tags.
		tags := s.tags.WithTx(tx)
		owned, err := tags.List(ctx, map[string]any{"category_id": id})
		if err != nil {
			return err
		}
		for _, tag := range owned {
			if err := activities.RemoveTag(ctx, tag.ID); err != nil {
				return err
			}
		}
		if err := tags.DeleteWhere(ctx, map[string]any{"category_id": id}); err != nil {
			return err
		}

		if err := categories.Delete(ctx, id); err != nil {
			return err
		}
		name, found = category.Name, true
		return nil
	})
	return name, destroyed, found, err
}

// Categories lists all categories ordered by name.
func (s *LabelService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx, nil)
}

// TagsFor lists the tags of one category ordered by name.
func (s *LabelService) TagsFor(ctx context.Context, categoryID uint) ([]model.Tag, error) {
	return s.tags.List(ctx, map[string]any{"category_id": categoryID})
}

// Category returns one category by id, or nil when it does not exist.
func (s *LabelService) Category(ctx context.Context, id uint) (*model.Category, error) {
	return s.categories.FindByID(ctx, id)
}

// Tag returns one tag by id, or nil when it does not exist.
func (s *LabelService) Tag(ctx context.Context, id uint) (*model.Tag, error) {
	return s.tags.FindByID(ctx, id)
}
