package models

import "time"

// Post is a text publication, optionally grouped and tagged.
// PubDate is set once on insert and never updated.
type Post struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`
	AuthorID uint      `json:"author_id" gorm:"index;not null"`
	Author   User      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	GroupID  *uint     `json:"group_id" gorm:"index"`
	Group    *Group    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Image    string    `json:"image"`
	Tags     []Tag     `json:"-" gorm:"many2many:tag_posts"`
}

type Group struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Description string `json:"description"`
}

// Tag names are unique so that concurrent get-or-create resolves to a single
// row instead of racing into duplicates.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:64"`
}

// TagPost is the link table between posts and tags. Link rows are pruned by
// the reconciler; tag rows themselves are never deleted on behalf of users.
type TagPost struct {
	ID     uint `gorm:"primaryKey"`
	TagID  uint `gorm:"index;uniqueIndex:idx_tag_post"`
	PostID uint `gorm:"index;uniqueIndex:idx_tag_post"`
}

type TagRequest struct {
	TagName string `json:"tag_name" validate:"required,max=64"`
}

// CreatePostRequest carries tags as a pointer so that an absent field (nil)
// leaves existing links untouched while an explicit empty list clears them.
type CreatePostRequest struct {
	Text  string        `json:"text" validate:"required"`
	Group string        `json:"group" validate:"omitempty"` // group slug
	Image string        `json:"image" validate:"omitempty,url"`
	Tags  *[]TagRequest `json:"tags" validate:"omitempty,dive"`
}

type UpdatePostRequest struct {
	Text  string        `json:"text" validate:"omitempty"`
	Group *string       `json:"group"`
	Image *string       `json:"image" validate:"omitempty"`
	Tags  *[]TagRequest `json:"tags" validate:"omitempty,dive"`
}
