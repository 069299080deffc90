package handlers

import (
	"net/http"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// UserHandler serves the read-only user resource
type UserHandler struct {
	userRepository repositories.UserRepository
	petRepository  repositories.PetRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, petRepo repositories.PetRepository) *UserHandler {
	return &UserHandler{
		userRepository: userRepo,
		petRepository:  petRepo,
	}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.GetUsers)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
}

// UserItem is the serialized user shape, with the names of the user's pets
type UserItem struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Pets     []string `json:"cats"`
}

func (h *UserHandler) toItem(user *models.User) (UserItem, error) {
	pets, err := h.petRepository.PetNamesByOwner(user.ID)
	if err != nil {
		return UserItem{}, err
	}
	if pets == nil {
		pets = []string{}
	}
	return UserItem{ID: user.ID, Username: user.Username, Pets: pets}, nil
}

// GetUsers lists all users
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.userRepository.GetUsers()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]UserItem, len(users))
	for i := range users {
		item, err := h.toItem(&users[i])
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		items[i] = item
	}
	return c.JSON(http.StatusOK, items)
}

// GetUser retrieves a user by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	item, err := h.toItem(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

// SearchUsers finds users by username or email substring
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query")
	}
	users, err := h.userRepository.SearchUsers(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := make([]UserItem, len(users))
	for i := range users {
		item, err := h.toItem(&users[i])
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		items[i] = item
	}
	return c.JSON(http.StatusOK, items)
}
