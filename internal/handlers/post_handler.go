package handlers

import (
	"net/http"
	"time"

	"yatube/internal/cache"
	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository  repositories.PostRepository
	groupRepository repositories.GroupRepository
	pageCache       cache.PageCache
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, pageCache cache.PageCache) *PostHandler {
	return &PostHandler{
		postRepository:  postRepo,
		groupRepository: groupRepo,
		pageCache:       pageCache,
	}
}

// RegisterPublicPostRoutes registers the read-only post routes
func (h *PostHandler) RegisterPublicPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
}

// RegisterPostRoutes registers post routes that mutate state
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.PATCH("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// PostListItem is the compact shape used by collection listings
type PostListItem struct {
	ID       uint      `json:"id"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Comments int64     `json:"comments"`
	Group    *string   `json:"group"`
	PubDate  time.Time `json:"pub_date"`
}

// PostDetail is the full shape used by single-item retrieval
type PostDetail struct {
	ID              uint      `json:"id"`
	Text            string    `json:"text"`
	Author          string    `json:"author"`
	Image           string    `json:"image"`
	Group           *string   `json:"group"`
	Tags            []TagItem `json:"tags"`
	Comments        int64     `json:"comments"`
	PublicationDate time.Time `json:"publication_date"`
}

type TagItem struct {
	TagName string `json:"tag_name"`
}

func groupSlug(post *models.Post) *string {
	if post.Group == nil {
		return nil
	}
	return &post.Group.Slug
}

func (h *PostHandler) toListItem(post *models.Post) PostListItem {
	comments, _ := h.postRepository.CountComments(post.ID)
	return PostListItem{
		ID:       post.ID,
		Author:   post.Author.Username,
		Text:     post.Text,
		Comments: comments,
		Group:    groupSlug(post),
		PubDate:  post.PubDate,
	}
}

func (h *PostHandler) toDetail(post *models.Post) (PostDetail, error) {
	tags, err := h.postRepository.GetTags(post.ID)
	if err != nil {
		return PostDetail{}, err
	}
	items := make([]TagItem, len(tags))
	for i, tag := range tags {
		items[i] = TagItem{TagName: tag.Name}
	}
	comments, err := h.postRepository.CountComments(post.ID)
	if err != nil {
		return PostDetail{}, err
	}
	return PostDetail{
		ID:              post.ID,
		Text:            post.Text,
		Author:          post.Author.Username,
		Image:           post.Image,
		Group:           groupSlug(post),
		Tags:            items,
		Comments:        comments,
		PublicationDate: post.PubDate,
	}, nil
}

func tagNames(tags *[]models.TagRequest) *[]string {
	if tags == nil {
		return nil
	}
	names := make([]string, len(*tags))
	for i, tag := range *tags {
		names[i] = tag.TagName
	}
	return &names
}

// invalidateFeed drops the cached index page before the write is
// acknowledged, bounding feed staleness to zero rather than the TTL window.
func (h *PostHandler) invalidateFeed(c echo.Context) {
	if h.pageCache != nil {
		h.pageCache.Invalidate(c.Request().Context(), "index")
	}
}

func (h *PostHandler) resolveGroup(slug string) (*uint, error) {
	if slug == "" {
		return nil, nil
	}
	group, err := h.groupRepository.GetGroupBySlug(slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Unknown group slug")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return &group.ID, nil
}

// CreatePost creates a new post authored by the current user
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	groupID, err := h.resolveGroup(req.Group)
	if err != nil {
		return err
	}

	post := &models.Post{
		Text:     req.Text,
		AuthorID: userID,
		GroupID:  groupID,
		Image:    req.Image,
	}
	if err := h.postRepository.CreatePost(post, tagNames(req.Tags)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.invalidateFeed(c)

	created, err := h.postRepository.GetPostByID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	detail, err := h.toDetail(created)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, detail)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail, err := h.toDetail(post)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

// GetPosts lists posts with keyword search, ordering and pagination
func (h *PostHandler) GetPosts(c echo.Context) error {
	limit, offset := pageParams(c)
	filter := repositories.PostFilter{
		Keyword:  c.QueryParam("search"),
		OrderAsc: c.QueryParam("ordering") == "pub_date",
	}

	posts, total, err := h.postRepository.ListPosts(filter, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]PostListItem, len(posts))
	for i := range posts {
		items[i] = h.toListItem(&posts[i])
	}
	return paginated(c, total, items)
}

// UpdatePost updates an existing post; only its author may do so
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !ownerOnly(userID, post.AuthorID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	if req.Text != "" {
		post.Text = req.Text
	}
	if req.Group != nil {
		groupID, err := h.resolveGroup(*req.Group)
		if err != nil {
			return err
		}
		post.GroupID = groupID
	}
	if req.Image != nil {
		post.Image = *req.Image
	}

	if err := h.postRepository.UpdatePost(post, tagNames(req.Tags)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.invalidateFeed(c)

	updated, err := h.postRepository.GetPostByID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	detail, err := h.toDetail(updated)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

// DeletePost deletes a post; only its author may do so
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !ownerOnly(userID, post.AuthorID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.invalidateFeed(c)

	return c.NoContent(http.StatusNoContent)
}
