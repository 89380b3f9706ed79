package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Skotchmaster/storefront/internal/models"
)

// MemoryIndex matches case-insensitive substrings of name and description
// and returns hits in name order.
type MemoryIndex struct {
	mu   sync.RWMutex
	docs map[string]models.Product
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]models.Product)}
}

func (m *MemoryIndex) Upsert(_ context.Context, p models.Product) error {
	m.mu.Lock()
	m.docs[p.ID] = p.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.docs, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Search(_ context.Context, q string, from, size int) (Result, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return Result{Items: []models.Product{}}, nil
	}

	m.mu.RLock()
	hits := make([]models.Product, 0)
	for _, p := range m.docs {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			hits = append(hits, p.Clone())
		}
	}
	m.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Name != hits[j].Name {
			return hits[i].Name < hits[j].Name
		}
		return hits[i].ID < hits[j].ID
	})

	total := int64(len(hits))
	if from < 0 {
		from = 0
	}
	if from > len(hits) {
		from = len(hits)
	}
	end := len(hits)
	if size > 0 && from+size < end {
		end = from + size
	}
	return Result{Total: total, Items: hits[from:end]}, nil
}
