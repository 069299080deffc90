package repositories

import (
	"yatube/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetCommentsByPostID(postID uint, limit, offset int) ([]models.Comment, int64, error)
	UpdateComment(comment *models.Comment) error
	DeleteComment(id uint) error
}

// GormCommentRepository implements CommentRepository on the relational store
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *GormCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID returns one page of a post's comments, newest first,
// plus the unpaginated total.
func (r *GormCommentRepository) GetCommentsByPostID(postID uint, limit, offset int) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).Where("post_id = ?", postID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("Author").Order("created DESC, id DESC").
		Limit(limit).Offset(offset).Find(&comments).Error
	return comments, total, err
}

func (r *GormCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Model(comment).Select("text").Updates(map[string]interface{}{
		"text": comment.Text,
	}).Error
}

func (r *GormCommentRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
