package repositories

import (
	"yatube/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for group data operations.
// Groups are a read-only resource over the API; rows are seeded out of band.
type GroupRepository interface {
	GetGroups() ([]models.Group, error)
	GetGroupByID(id uint) (*models.Group, error)
	GetGroupBySlug(slug string) (*models.Group, error)
	CreateGroup(group *models.Group) error
}

// GormGroupRepository implements GroupRepository on the relational store
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func (r *GormGroupRepository) GetGroups() ([]models.Group, error) {
	var groups []models.Group
	if err := r.db.Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GormGroupRepository) GetGroupByID(id uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GormGroupRepository) GetGroupBySlug(slug string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GormGroupRepository) CreateGroup(group *models.Group) error {
	return r.db.Create(group).Error
}
