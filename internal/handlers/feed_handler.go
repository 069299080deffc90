package handlers

import (
	"net/http"

	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
)

// FeedHandler serves the follow feed: posts by authors the current user follows
type FeedHandler struct {
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		postRepository:   postRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the paginated posts of followed authors, newest first
func (h *FeedHandler) GetFeed(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ids, err := h.followRepository.FollowingIDs(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(ids) == 0 {
		return paginated(c, 0, []PostListItem{})
	}

	limit, offset := pageParams(c)
	posts, total, err := h.postRepository.ListPosts(repositories.PostFilter{AuthorIn: ids}, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]PostListItem, len(posts))
	for i := range posts {
		comments, _ := h.postRepository.CountComments(posts[i].ID)
		items[i] = PostListItem{
			ID:       posts[i].ID,
			Author:   posts[i].Author.Username,
			Text:     posts[i].Text,
			Comments: comments,
			Group:    groupSlug(&posts[i]),
			PubDate:  posts[i].PubDate,
		}
	}
	return paginated(c, total, items)
}
