package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"gorm.io/gorm"
)

func newUserHandler(t *testing.T) (*UserHandler, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewUserHandler(
		repositories.NewGormUserRepository(db),
		repositories.NewGormPetRepository(db),
	), db
}

func TestGetUserIncludesPetNames(t *testing.T) {
	handler, db := newUserHandler(t)
	e := newTestEcho()
	leo := createTestUser(t, db, "leo")
	if err := db.Create(&models.Pet{Name: "Barsik", Color: "Black", OwnerID: leo.ID}).Error; err != nil {
		t.Fatalf("create pet: %v", err)
	}

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/users/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := handler.GetUser(c); err != nil {
		t.Fatalf("GetUser: %v", err)
	}

	var item UserItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.Username != "leo" || len(item.Pets) != 1 || item.Pets[0] != "Barsik" {
		t.Errorf("item = %+v, want leo with [Barsik]", item)
	}
}

func TestSearchUsersOmitsEmail(t *testing.T) {
	handler, db := newUserHandler(t)
	e := newTestEcho()
	createTestUser(t, db, "leo")
	createTestUser(t, db, "leonard")
	createTestUser(t, db, "mia")

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/users/search?q=leo", "")
	if err := handler.SearchUsers(c); err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}

	var items []UserItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("matches = %d, want 2", len(items))
	}
	// Search results use the same shape as the other user reads.
	body := rec.Body.String()
	if strings.Contains(body, "email") || strings.Contains(body, "@example.com") {
		t.Errorf("search results must not expose email addresses: %s", body)
	}
}

func TestSearchUsersRequiresQuery(t *testing.T) {
	handler, _ := newUserHandler(t)
	e := newTestEcho()

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/users/search", "")
	err := handler.SearchUsers(c)
	if code := httpErrorCode(t, err, rec); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}
