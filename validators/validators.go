package validators

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator adapts go-playground/validator to echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	// A pet's birth year must fall within the last 40 years, current year
	// inclusive.
	_ = v.RegisterValidation("birthyear", func(fl validator.FieldLevel) bool {
		year := time.Now().Year()
		value := int(fl.Field().Int())
		return year-40 < value && value <= year
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
