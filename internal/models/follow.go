package models

import "time"

// Follow is a directed edge: User follows Following.
// The (user, following) pair is unique and self-edges are rejected upstream.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_following"`
	User        User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_user_following"`
	Following   User      `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateFollowRequest struct {
	Following string `json:"following" validate:"required"` // username of the target author
}
