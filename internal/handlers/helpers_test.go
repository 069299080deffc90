package handlers

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"yatube/internal/models"
	"yatube/validators"

	"github.com/labstack/echo/v4"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Tag{},
		&models.TagPost{},
		&models.Comment{},
		&models.Follow{},
		&models.Pet{},
		&models.Achievement{},
		&models.AchievementPet{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

// jsonContext builds an echo context carrying a JSON body.
func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// authAs stashes token claims in the context the way the JWT middleware does.
func authAs(c echo.Context, user *models.User) {
	c.Set("user", &models.JwtCustomClaims{UserID: user.ID, Username: user.Username})
}

// httpErrorCode extracts the status from a handler error, or falls back to
// the recorded status for handlers that wrote a response.
func httpErrorCode(t *testing.T, err error, rec *httptest.ResponseRecorder) int {
	t.Helper()
	if err == nil {
		return rec.Code
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("unexpected error type: %v", err)
	}
	return he.Code
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int64, []json.RawMessage) {
	t.Helper()
	var envelope struct {
		Count    int64             `json:"count"`
		Response []json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return envelope.Count, envelope.Response
}
