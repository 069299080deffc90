package handlers

import (
	"net/http"
	"strconv"
	"time"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PetHandler handles HTTP requests for the pet resource
type PetHandler struct {
	petRepository repositories.PetRepository
}

// NewPetHandler creates a new PetHandler
func NewPetHandler(petRepo repositories.PetRepository) *PetHandler {
	return &PetHandler{petRepository: petRepo}
}

// RegisterPublicPetRoutes registers the read routes. Single-item retrieval is
// deliberately public even though the rest of the resource is owner-gated:
// permission varies by operation shape here, not just by method.
func (h *PetHandler) RegisterPublicPetRoutes(g *echo.Group) {
	g.GET("/cats", h.GetPets)
	g.GET("/cats/recent-white-cats", h.RecentWhitePets)
	g.GET("/cats/:id", h.GetPet)
}

// RegisterPetRoutes registers pet routes that mutate state
func (h *PetHandler) RegisterPetRoutes(g *echo.Group) {
	g.POST("/cats", h.CreatePet)
	g.PUT("/cats/:id", h.UpdatePet)
	g.PATCH("/cats/:id", h.UpdatePet)
	g.DELETE("/cats/:id", h.DeletePet)
}

// PetListItem is the compact listing shape
type PetListItem struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// PetDetail adds owner, achievements and the computed age
type PetDetail struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Color        string            `json:"color"`
	BirthYear    *int              `json:"birth_year"`
	Owner        uint              `json:"owner"`
	Achievements []AchievementItem `json:"achievements"`
	Age          *int              `json:"age"`
}

type AchievementItem struct {
	AchievementName string `json:"achievement_name"`
}

func (h *PetHandler) toDetail(pet *models.Pet) (PetDetail, error) {
	achievements, err := h.petRepository.GetAchievements(pet.ID)
	if err != nil {
		return PetDetail{}, err
	}
	items := make([]AchievementItem, len(achievements))
	for i, a := range achievements {
		items[i] = AchievementItem{AchievementName: a.Name}
	}
	var age *int
	if pet.BirthYear != nil {
		years := time.Now().Year() - *pet.BirthYear
		age = &years
	}
	return PetDetail{
		ID:           pet.ID,
		Name:         pet.Name,
		Color:        pet.Color,
		BirthYear:    pet.BirthYear,
		Owner:        pet.OwnerID,
		Achievements: items,
		Age:          age,
	}, nil
}

func achievementNames(achievements *[]models.AchievementRequest) *[]string {
	if achievements == nil {
		return nil
	}
	names := make([]string, len(*achievements))
	for i, a := range *achievements {
		names[i] = a.AchievementName
	}
	return &names
}

// CreatePet creates a new pet owned by the current user
func (h *PetHandler) CreatePet(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pet := &models.Pet{
		Name:      req.Name,
		Color:     req.Color,
		BirthYear: req.BirthYear,
		OwnerID:   userID,
	}
	if err := h.petRepository.CreatePet(pet, achievementNames(req.Achievements)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail, err := h.toDetail(pet)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, detail)
}

// GetPet retrieves a pet by ID; readable by anyone
func (h *PetHandler) GetPet(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	pet, err := h.petRepository.GetPetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail, err := h.toDetail(pet)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

// GetPets lists pets in the compact shape, filterable by color and birth year
func (h *PetHandler) GetPets(c echo.Context) error {
	limit, offset := pageParams(c)
	birthYear, _ := strconv.Atoi(c.QueryParam("birth_year"))
	filter := repositories.PetFilter{
		Color:     c.QueryParam("color"),
		BirthYear: birthYear,
	}

	pets, total, err := h.petRepository.ListPets(filter, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]PetListItem, len(pets))
	for i, pet := range pets {
		items[i] = PetListItem{ID: pet.ID, Name: pet.Name, Color: pet.Color}
	}
	return paginated(c, total, items)
}

// RecentWhitePets returns the five newest white pets
func (h *PetHandler) RecentWhitePets(c echo.Context) error {
	pets, err := h.petRepository.RecentByColor("White", 5)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]PetDetail, len(pets))
	for i := range pets {
		detail, err := h.toDetail(&pets[i])
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		items[i] = detail
	}
	return c.JSON(http.StatusOK, items)
}

// UpdatePet updates a pet; only its owner may do so
func (h *PetHandler) UpdatePet(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdatePetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pet, err := h.petRepository.GetPetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !ownerOnly(userID, pet.OwnerID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this pet")
	}

	if req.Name != "" {
		pet.Name = req.Name
	}
	if req.Color != "" {
		pet.Color = req.Color
	}
	if req.BirthYear != nil {
		pet.BirthYear = req.BirthYear
	}

	if err := h.petRepository.UpdatePet(pet, achievementNames(req.Achievements)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	detail, err := h.toDetail(pet)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

// DeletePet deletes a pet; only its owner may do so
func (h *PetHandler) DeletePet(c echo.Context) error {
	userID := getUserIDFromContext(c)
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}

	pet, err := h.petRepository.GetPetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if !ownerOnly(userID, pet.OwnerID) {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this pet")
	}

	if err := h.petRepository.DeletePet(id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
