package handlers

import (
	"net/http"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FollowHandler handles follow-edge HTTP requests; all routes require auth
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/follow", h.ListFollows)
	g.POST("/follow", h.CreateFollow)
	g.DELETE("/follow/:id", h.DeleteFollow)
}

// FollowItem is the serialized follow-edge shape
type FollowItem struct {
	ID        uint   `json:"id"`
	User      string `json:"user"`
	Following string `json:"following"`
}

func toFollowItem(follow *models.Follow) FollowItem {
	return FollowItem{
		ID:        follow.ID,
		User:      follow.User.Username,
		Following: follow.Following.Username,
	}
}

// ListFollows lists the current user's edges, searchable by followed username
func (h *FollowHandler) ListFollows(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	follows, err := h.followRepository.ListFollowing(userID, c.QueryParam("search"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]FollowItem, len(follows))
	for i := range follows {
		items[i] = toFollowItem(&follows[i])
	}
	return c.JSON(http.StatusOK, items)
}

// CreateFollow creates an edge from the current user to the named author.
// Self-follows and duplicate edges are validation errors here, unlike the
// web surface where they are silent no-ops.
func (h *FollowHandler) CreateFollow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateFollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	target, err := h.userRepository.GetUserByUsername(req.Following)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if target.ID == userID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}
	exists, err := h.followRepository.IsFollowing(userID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if exists {
		return echo.NewHTTPError(http.StatusBadRequest, "Already following this user")
	}

	follow, _, err := h.followRepository.Follow(userID, target.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	created, err := h.followRepository.GetFollowByID(follow.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, toFollowItem(created))
}

// DeleteFollow removes one of the current user's edges by ID
func (h *FollowHandler) DeleteFollow(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	follow, err := h.followRepository.GetFollowByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Follow not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !ownerOnly(userID, follow.UserID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this follow")
	}

	if err := h.followRepository.DeleteFollow(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
