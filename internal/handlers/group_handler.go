package handlers

import (
	"net/http"

	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GroupHandler handles the read-only group resource
type GroupHandler struct {
	groupRepository repositories.GroupRepository
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository) *GroupHandler {
	return &GroupHandler{groupRepository: groupRepo}
}

// RegisterGroupRoutes registers group-related routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.GET("/groups", h.GetGroups)
	g.GET("/groups/:id", h.GetGroup)
}

// GetGroups lists all groups
func (h *GroupHandler) GetGroups(c echo.Context) error {
	groups, err := h.groupRepository.GetGroups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, groups)
}

// GetGroup retrieves a group by ID
func (h *GroupHandler) GetGroup(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	group, err := h.groupRepository.GetGroupByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, group)
}
