package models

// PetColors are the accepted values for Pet.Color.
var PetColors = []string{"Grey", "Black", "White", "Ginger", "Mixed"}

// Pet is the parallel "cats" resource: same CRUD shape as posts but with an
// owner instead of an author and achievements instead of tags.
type Pet struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Name         string        `json:"name" gorm:"size:16"`
	Color        string        `json:"color" gorm:"size:16"`
	BirthYear    *int          `json:"birth_year"`
	OwnerID      uint          `json:"owner" gorm:"index;not null"`
	Owner        User          `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Achievements []Achievement `json:"-" gorm:"many2many:achievement_pets"`
}

type Achievement struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:64"`
}

// AchievementPet is the link table between pets and achievements.
type AchievementPet struct {
	ID            uint `gorm:"primaryKey"`
	AchievementID uint `gorm:"index;uniqueIndex:idx_achievement_pet"`
	PetID         uint `gorm:"index;uniqueIndex:idx_achievement_pet"`
}

type AchievementRequest struct {
	AchievementName string `json:"achievement_name" validate:"required,max=64"`
}

type CreatePetRequest struct {
	Name         string                `json:"name" validate:"required,max=16"`
	Color        string                `json:"color" validate:"required,oneof=Grey Black White Ginger Mixed"`
	BirthYear    *int                  `json:"birth_year" validate:"omitempty,birthyear"`
	Achievements *[]AchievementRequest `json:"achievements" validate:"omitempty,dive"`
}

type UpdatePetRequest struct {
	Name         string                `json:"name" validate:"omitempty,max=16"`
	Color        string                `json:"color" validate:"omitempty,oneof=Grey Black White Ginger Mixed"`
	BirthYear    *int                  `json:"birth_year" validate:"omitempty,birthyear"`
	Achievements *[]AchievementRequest `json:"achievements" validate:"omitempty,dive"`
}

type CreateAchievementRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}
