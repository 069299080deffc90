package handlers

import (
	"net/http"
	"time"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// CommentHandler handles HTTP requests for comments nested under a post
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
	}
}

// RegisterPublicCommentRoutes registers the read-only comment routes
func (h *CommentHandler) RegisterPublicCommentRoutes(g *echo.Group) {
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.GET("/posts/:post_id/comments/:id", h.GetComment)
}

// RegisterCommentRoutes registers comment routes that mutate state
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.PUT("/posts/:post_id/comments/:id", h.UpdateComment)
	g.PATCH("/posts/:post_id/comments/:id", h.UpdateComment)
	g.DELETE("/posts/:post_id/comments/:id", h.DeleteComment)
}

// CommentItem is the serialized comment shape
type CommentItem struct {
	ID      uint      `json:"id"`
	Post    uint      `json:"post"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

func toCommentItem(comment *models.Comment) CommentItem {
	return CommentItem{
		ID:      comment.ID,
		Post:    comment.PostID,
		Author:  comment.Author.Username,
		Text:    comment.Text,
		Created: comment.Created,
	}
}

// requirePost resolves the parent post or fails with 404.
func (h *CommentHandler) requirePost(c echo.Context) (*models.Post, error) {
	postID, err := parseUintParam(c, "post_id")
	if err != nil {
		return nil, err
	}
	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return post, nil
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.requirePost(c)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: userID,
		Text:     req.Text,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	created, err := h.commentRepository.GetCommentByID(comment.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toCommentItem(created))
}

// GetComments lists a post's comments, newest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	post, err := h.requirePost(c)
	if err != nil {
		return err
	}

	limit, offset := pageParams(c)
	comments, total, err := h.commentRepository.GetCommentsByPostID(post.ID, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]CommentItem, len(comments))
	for i := range comments {
		items[i] = toCommentItem(&comments[i])
	}
	return paginated(c, total, items)
}

// GetComment retrieves a single comment under a post
func (h *CommentHandler) GetComment(c echo.Context) error {
	post, err := h.requirePost(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	comment, err := h.commentRepository.GetCommentByID(id)
	if err != nil || comment.PostID != post.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	return c.JSON(http.StatusOK, toCommentItem(comment))
}

// UpdateComment updates a comment; only its author may do so
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	post, err := h.requirePost(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(id)
	if err != nil || comment.PostID != post.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if !ownerOnly(userID, comment.AuthorID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	comment.Text = req.Text
	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toCommentItem(comment))
}

// DeleteComment deletes a comment; only its author may do so
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	post, err := h.requirePost(c)
	if err != nil {
		return err
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	comment, err := h.commentRepository.GetCommentByID(id)
	if err != nil || comment.PostID != post.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if !ownerOnly(userID, comment.AuthorID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	if err := h.commentRepository.DeleteComment(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
