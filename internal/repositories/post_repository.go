package repositories

import (
	"yatube/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	Keyword  string // substring match against post text
	GroupID  uint
	AuthorID uint
	AuthorIn []uint // feed of followed authors
	OrderAsc bool   // default ordering is pub_date descending
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post, tags *[]string) error
	GetPostByID(id uint) (*models.Post, error)
	ListPosts(filter PostFilter, limit, offset int) ([]models.Post, int64, error)
	UpdatePost(post *models.Post, tags *[]string) error
	DeletePost(id uint) error
	GetTags(postID uint) ([]models.Tag, error)
	CountComments(postID uint) (int64, error)
}

// GormPostRepository implements PostRepository on the relational store
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// CreatePost inserts the post and reconciles its tag links in one
// transaction, so an interrupted create leaves no half-linked post behind.
func (r *GormPostRepository) CreatePost(post *models.Post, tags *[]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		return syncTags(tx, post.ID, *tags)
	})
}

func (r *GormPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").Preload("Group").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns one page of posts plus the unpaginated total.
// Out-of-range offsets yield an empty page, never a clamped one.
func (r *GormPostRepository) ListPosts(filter PostFilter, limit, offset int) ([]models.Post, int64, error) {
	q := r.db.Model(&models.Post{})
	if filter.Keyword != "" {
		q = q.Where("text LIKE ?", "%"+filter.Keyword+"%")
	}
	if filter.GroupID != 0 {
		q = q.Where("group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	if filter.AuthorIn != nil {
		q = q.Where("author_id IN ?", filter.AuthorIn)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "pub_date DESC, id DESC"
	if filter.OrderAsc {
		order = "pub_date ASC, id ASC"
	}

	var posts []models.Post
	err := q.Preload("Author").Preload("Group").
		Order(order).Limit(limit).Offset(offset).Find(&posts).Error
	return posts, total, err
}

// UpdatePost writes the mutable columns and reconciles tags when a set was
// supplied. PubDate is set once on insert and excluded here.
func (r *GormPostRepository) UpdatePost(post *models.Post, tags *[]string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(post).Select("text", "group_id", "image").Updates(map[string]interface{}{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		}).Error
		if err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		return syncTags(tx, post.ID, *tags)
	})
}

// DeletePost applies the delete rules explicitly, in dependency order, inside
// one transaction: comments, then tag links, then the post. Tag rows stay.
func (r *GormPostRepository) DeletePost(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.TagPost{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}

func (r *GormPostRepository) GetTags(postID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Where("id IN (?)",
		r.db.Model(&models.TagPost{}).Select("tag_id").Where("post_id = ?", postID),
	).Order("name").Find(&tags).Error
	return tags, err
}

func (r *GormPostRepository) CountComments(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// syncTags reconciles the post's tag links against the requested name set:
// get-or-create each tag, link it if not linked, then prune links whose tag
// is no longer requested. An empty set therefore removes every link.
func syncTags(tx *gorm.DB, postID uint, names []string) error {
	keep := make(map[uint]bool, len(names))
	for _, name := range names {
		tag, err := getOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		link := models.TagPost{TagID: tag.ID, PostID: postID}
		err = tx.Where(models.TagPost{TagID: tag.ID, PostID: postID}).FirstOrCreate(&link).Error
		if err != nil {
			return err
		}
		keep[tag.ID] = true
	}

	var links []models.TagPost
	if err := tx.Where("post_id = ?", postID).Find(&links).Error; err != nil {
		return err
	}
	for _, link := range links {
		if keep[link.TagID] {
			continue
		}
		if err := tx.Delete(&models.TagPost{}, link.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// getOrCreateTag resolves a tag name to a row atomically: the insert defers
// to the unique index on name, then the survivor is read back. Two requests
// racing on the same name converge on one row.
func getOrCreateTag(tx *gorm.DB, name string) (*models.Tag, error) {
	tag := models.Tag{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&tag).Error
	if err != nil {
		return nil, err
	}
	if tag.ID == 0 {
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, err
		}
	}
	return &tag, nil
}
