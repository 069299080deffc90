package repositories

import (
	"yatube/internal/models"

	"gorm.io/gorm"
)

// AchievementRepository defines the interface for achievement data operations
type AchievementRepository interface {
	CreateAchievement(achievement *models.Achievement) error
	GetAchievementByID(id uint) (*models.Achievement, error)
	GetAchievements() ([]models.Achievement, error)
	UpdateAchievement(achievement *models.Achievement) error
	DeleteAchievement(id uint) error
}

// GormAchievementRepository implements AchievementRepository on the relational store
type GormAchievementRepository struct {
	db *gorm.DB
}

// NewGormAchievementRepository creates a new GormAchievementRepository
func NewGormAchievementRepository(db *gorm.DB) *GormAchievementRepository {
	return &GormAchievementRepository{db: db}
}

func (r *GormAchievementRepository) CreateAchievement(achievement *models.Achievement) error {
	return r.db.Create(achievement).Error
}

func (r *GormAchievementRepository) GetAchievementByID(id uint) (*models.Achievement, error) {
	var achievement models.Achievement
	if err := r.db.First(&achievement, id).Error; err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *GormAchievementRepository) GetAchievements() ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := r.db.Order("id").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *GormAchievementRepository) UpdateAchievement(achievement *models.Achievement) error {
	return r.db.Save(achievement).Error
}

// DeleteAchievement removes the achievement and its pet links in one
// transaction. Exposed to authenticated users only; link pruning for normal
// updates goes through the reconciler instead.
func (r *GormAchievementRepository) DeleteAchievement(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("achievement_id = ?", id).Delete(&models.AchievementPet{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Achievement{}, id).Error
	})
}
