package repository

import (
	"context"
	"strings"

	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindOrCreateByName returns the existing tag with the given name or
// creates it. Names are trimmed; lookup is exact.
func (r *TagRepository) FindOrCreateByName(ctx context.Context, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	var tag domain.Tag
	err := r.db.WithContext(ctx).
		Where(domain.Tag{Name: name}).
		FirstOrCreate(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// ResolveNames maps a list of tag names to tag rows, creating missing
// ones and dropping empty or duplicate names
func (r *TagRepository) ResolveNames(ctx context.Context, names []string) ([]domain.Tag, error) {
	seen := make(map[string]bool, len(names))
	tags := make([]domain.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		tag, err := r.FindOrCreateByName(ctx, name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

func (r *TagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}
