package repositories

import (
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PetFilter narrows a pet listing. Zero values mean "no filter".
type PetFilter struct {
	Color     string
	BirthYear int
}

// PetRepository defines the interface for pet data operations
type PetRepository interface {
	CreatePet(pet *models.Pet, achievements *[]string) error
	GetPetByID(id uint) (*models.Pet, error)
	ListPets(filter PetFilter, limit, offset int) ([]models.Pet, int64, error)
	RecentByColor(color string, limit int) ([]models.Pet, error)
	UpdatePet(pet *models.Pet, achievements *[]string) error
	DeletePet(id uint) error
	GetAchievements(petID uint) ([]models.Achievement, error)
	PetNamesByOwner(ownerID uint) ([]string, error)
}

// GormPetRepository implements PetRepository on the relational store
type GormPetRepository struct {
	db *gorm.DB
}

// NewGormPetRepository creates a new GormPetRepository
func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

// CreatePet inserts the pet and reconciles its achievement links in one
// transaction, mirroring the post/tag create path.
func (r *GormPetRepository) CreatePet(pet *models.Pet, achievements *[]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pet).Error; err != nil {
			return err
		}
		if achievements == nil {
			return nil
		}
		return syncAchievements(tx, pet.ID, *achievements)
	})
}

func (r *GormPetRepository) GetPetByID(id uint) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.Preload("Owner").First(&pet, id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

func (r *GormPetRepository) ListPets(filter PetFilter, limit, offset int) ([]models.Pet, int64, error) {
	q := r.db.Model(&models.Pet{})
	if filter.Color != "" {
		q = q.Where("color = ?", filter.Color)
	}
	if filter.BirthYear != 0 {
		q = q.Where("birth_year = ?", filter.BirthYear)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pets []models.Pet
	err := q.Order("id").Limit(limit).Offset(offset).Find(&pets).Error
	return pets, total, err
}

func (r *GormPetRepository) RecentByColor(color string, limit int) ([]models.Pet, error) {
	var pets []models.Pet
	err := r.db.Where("color = ?", color).Order("id DESC").Limit(limit).Find(&pets).Error
	return pets, err
}

func (r *GormPetRepository) UpdatePet(pet *models.Pet, achievements *[]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(pet).Select("name", "color", "birth_year").Updates(map[string]interface{}{
			"name":       pet.Name,
			"color":      pet.Color,
			"birth_year": pet.BirthYear,
		}).Error
		if err != nil {
			return err
		}
		if achievements == nil {
			return nil
		}
		return syncAchievements(tx, pet.ID, *achievements)
	})
}

// DeletePet removes the achievement links then the pet, in one transaction.
// Achievement rows are shared between pets and are never cascaded.
func (r *GormPetRepository) DeletePet(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pet_id = ?", id).Delete(&models.AchievementPet{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Pet{}, id).Error
	})
}

func (r *GormPetRepository) GetAchievements(petID uint) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.Where("id IN (?)",
		r.db.Model(&models.AchievementPet{}).Select("achievement_id").Where("pet_id = ?", petID),
	).Order("name").Find(&achievements).Error
	return achievements, err
}

func (r *GormPetRepository) PetNamesByOwner(ownerID uint) ([]string, error) {
	var names []string
	err := r.db.Model(&models.Pet{}).Where("owner_id = ?", ownerID).
		Order("id").Pluck("name", &names).Error
	return names, err
}

// syncAchievements reconciles the pet's achievement links against the
// requested name set, same contract as syncTags.
func syncAchievements(tx *gorm.DB, petID uint, names []string) error {
	keep := make(map[uint]bool, len(names))
	for _, name := range names {
		achievement, err := getOrCreateAchievement(tx, name)
		if err != nil {
			return err
		}
		link := models.AchievementPet{AchievementID: achievement.ID, PetID: petID}
		err = tx.Where(models.AchievementPet{AchievementID: achievement.ID, PetID: petID}).
			FirstOrCreate(&link).Error
		if err != nil {
			return err
		}
		keep[achievement.ID] = true
	}

	var links []models.AchievementPet
	if err := tx.Where("pet_id = ?", petID).Find(&links).Error; err != nil {
		return err
	}
	for _, link := range links {
		if keep[link.AchievementID] {
			continue
		}
		if err := tx.Delete(&models.AchievementPet{}, link.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

func getOrCreateAchievement(tx *gorm.DB, name string) (*models.Achievement, error) {
	achievement := models.Achievement{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&achievement).Error
	if err != nil {
		return nil, err
	}
	if achievement.ID == 0 {
		if err := tx.Where("name = ?", name).First(&achievement).Error; err != nil {
			return nil, err
		}
	}
	return &achievement, nil
}
