package catalog

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AddCategory appends a category with a zero count, even when products
// already reference its name. The next product mutation corrects it.
func (s *Store) AddCategory(ctx context.Context, in CategoryInput) models.Category {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	c := models.Category{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
	}
	s.categories = append(s.categories, c)
	s.mu.Unlock()

	s.logger(ctx, "add_category").Info("category_added", "category_id", c.ID, "name", c.Name)
	s.emit(ctx, events.CategoryCreated{Category: c})
	return c
}

// UpdateCategory merges patch into the category. A name change renames the
// category on every product that used the old name.
func (s *Store) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) (models.Category, bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	idx := s.categoryIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger(ctx, "update_category").Warn("category_update_skipped", "category_id", id, "reason", "category not found")
		return models.Category{}, false
	}

	c := &s.categories[idx]
	oldName := c.Name
	if patch.Description != nil {
		c.Description = *patch.Description
	}

	var renamed []models.Product
	if patch.Name != nil && *patch.Name != "" && *patch.Name != oldName {
		c.Name = *patch.Name
		for i := range s.products {
			if s.products[i].Category == oldName {
				s.products[i].Category = c.Name
				renamed = append(renamed, s.products[i].Clone())
			}
		}
		s.recountLocked()
	}
	out := *c
	s.mu.Unlock()

	s.logger(ctx, "update_category").Info("category_updated", "category_id", id, "old_name", oldName, "new_name", out.Name, "products_renamed", len(renamed))
	s.emit(ctx, events.CategoryUpdated{Category: out, OldName: oldName, NewName: out.Name, ProductsRenamed: len(renamed)})
	// product subscribers, the search index among them, ignore category events
	for _, p := range renamed {
		s.emit(ctx, events.ProductUpdated{Product: p})
	}
	return out, true
}

// DeleteCategory refuses with ErrCategoryInUse while any product references
// the category's name. Unknown ids are ignored.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	l := s.logger(ctx, "delete_category")

	s.mu.Lock()
	idx := s.categoryIndexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		l.Warn("category_delete_skipped", "category_id", id, "reason", "category not found")
		return nil
	}
	name := s.categories[idx].Name
	for _, p := range s.products {
		if p.Category == name {
			s.mu.Unlock()
			l.Warn("category_delete_refused", "category_id", id, "name", name, "reason", "category contains products")
			return ErrCategoryInUse
		}
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	s.mu.Unlock()

	l.Info("category_deleted", "category_id", id, "name", name)
	s.emit(ctx, events.CategoryDeleted{CategoryID: id, Name: name})
	return nil
}

func (s *Store) GetCategory(id string) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.categoryIndexLocked(id)
	if idx < 0 {
		return models.Category{}, false
	}
	return s.categories[idx], true
}

func (s *Store) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Store) categoryIndexLocked(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}
