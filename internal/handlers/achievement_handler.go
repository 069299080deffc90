package handlers

import (
	"net/http"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// AchievementHandler handles HTTP requests for the achievement resource
type AchievementHandler struct {
	achievementRepository repositories.AchievementRepository
}

// NewAchievementHandler creates a new AchievementHandler
func NewAchievementHandler(achievementRepo repositories.AchievementRepository) *AchievementHandler {
	return &AchievementHandler{achievementRepository: achievementRepo}
}

// RegisterPublicAchievementRoutes registers the read-only achievement routes
func (h *AchievementHandler) RegisterPublicAchievementRoutes(g *echo.Group) {
	g.GET("/achievements", h.GetAchievements)
	g.GET("/achievements/:id", h.GetAchievement)
}

// RegisterAchievementRoutes registers achievement routes that mutate state
func (h *AchievementHandler) RegisterAchievementRoutes(g *echo.Group) {
	g.POST("/achievements", h.CreateAchievement)
	g.PUT("/achievements/:id", h.UpdateAchievement)
	g.DELETE("/achievements/:id", h.DeleteAchievement)
}

// GetAchievements lists all achievements
func (h *AchievementHandler) GetAchievements(c echo.Context) error {
	achievements, err := h.achievementRepository.GetAchievements()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, achievements)
}

// GetAchievement retrieves an achievement by ID
func (h *AchievementHandler) GetAchievement(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	achievement, err := h.achievementRepository.GetAchievementByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Achievement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, achievement)
}

// CreateAchievement creates a new achievement
func (h *AchievementHandler) CreateAchievement(c echo.Context) error {
	var req models.CreateAchievementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	achievement := &models.Achievement{Name: req.Name}
	if err := h.achievementRepository.CreateAchievement(achievement); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, achievement)
}

// UpdateAchievement renames an achievement
func (h *AchievementHandler) UpdateAchievement(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.CreateAchievementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	achievement, err := h.achievementRepository.GetAchievementByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Achievement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	achievement.Name = req.Name
	if err := h.achievementRepository.UpdateAchievement(achievement); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, achievement)
}

// DeleteAchievement removes an achievement and its links
func (h *AchievementHandler) DeleteAchievement(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.achievementRepository.GetAchievementByID(id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Achievement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.achievementRepository.DeleteAchievement(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
