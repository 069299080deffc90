package repositories

import (
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow-graph operations.
// Follow and Unfollow are idempotent under repetition.
type FollowRepository interface {
	Follow(userID, followingID uint) (*models.Follow, bool, error)
	Unfollow(userID, followingID uint) error
	IsFollowing(userID, followingID uint) (bool, error)
	GetFollowByID(id uint) (*models.Follow, error)
	ListFollowing(userID uint, followingSearch string) ([]models.Follow, error)
	FollowingIDs(userID uint) ([]uint, error)
	DeleteFollow(id uint) error
}

// GormFollowRepository implements FollowRepository on the relational store
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GormFollowRepository
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

// Follow creates the edge unless it already exists or would be a self-edge.
// The bool reports whether a new edge was created; an existing edge or a
// self-follow is a no-op, not an error. The insert defers to the unique
// (user, following) index, so two racing follows converge on one row.
func (r *GormFollowRepository) Follow(userID, followingID uint) (*models.Follow, bool, error) {
	if userID == followingID {
		return nil, false, nil
	}
	follow := models.Follow{UserID: userID, FollowingID: followingID}
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "following_id"}},
		DoNothing: true,
	}).Create(&follow)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		err := r.db.Where("user_id = ? AND following_id = ?", userID, followingID).
			First(&follow).Error
		if err != nil {
			return nil, false, err
		}
		return &follow, false, nil
	}
	return &follow, true, nil
}

// Unfollow deletes the edge if present; a missing edge is a no-op.
func (r *GormFollowRepository) Unfollow(userID, followingID uint) error {
	return r.db.Where("user_id = ? AND following_id = ?", userID, followingID).
		Delete(&models.Follow{}).Error
}

func (r *GormFollowRepository) IsFollowing(userID, followingID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormFollowRepository) GetFollowByID(id uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.Preload("User").Preload("Following").First(&follow, id).Error
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

// ListFollowing returns the user's outgoing edges, optionally narrowed by a
// substring match on the followed author's username.
func (r *GormFollowRepository) ListFollowing(userID uint, followingSearch string) ([]models.Follow, error) {
	q := r.db.Preload("User").Preload("Following").Where("user_id = ?", userID)
	if followingSearch != "" {
		q = q.Where("following_id IN (?)",
			r.db.Model(&models.User{}).Select("id").
				Where("username LIKE ?", "%"+followingSearch+"%"))
	}
	var follows []models.Follow
	err := q.Order("id").Find(&follows).Error
	return follows, err
}

func (r *GormFollowRepository) FollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("user_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

func (r *GormFollowRepository) DeleteFollow(id uint) error {
	return r.db.Delete(&models.Follow{}, id).Error
}
