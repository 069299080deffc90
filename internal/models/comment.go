package models

import "time"

// Comment belongs to one post and one author. Created is set once on insert.
type Comment struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	PostID   uint      `json:"post_id" gorm:"index;not null"`
	Post     Post      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	AuthorID uint      `json:"author_id" gorm:"index;not null"`
	Author   User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Text     string    `json:"text"`
	Created  time.Time `json:"created" gorm:"autoCreateTime;index"`
}

type CreateCommentRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

type UpdateCommentRequest struct {
	Text string `json:"text" validate:"required"`
}
