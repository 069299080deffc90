package web

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/internal/cache"
	"yatube/internal/models"
	"yatube/pkg/config"
	"yatube/validators"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestServer(t *testing.T) (*echo.Echo, *Server, *gorm.DB) {
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
		&models.Session{},
		&models.PasswordResetToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		SessionLifetime: time.Hour,
		FeedCacheTTL:    time.Minute,
	}
	e := echo.New()
	e.Validator = validators.NewValidator()
	server := NewServer(db, cfg, cache.NewMemoryPageCache(), nil)
	server.RegisterRoutes(e)
	return e, server, db
}

func createWebUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// loginCookie creates a session row directly and returns its cookie.
func loginCookie(t *testing.T, db *gorm.DB, userID uint) *http.Cookie {
	t.Helper()
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: session.ID}
}

func getPage(e *echo.Echo, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// csrfToken doubles as the cookie and the form field; the middleware only
// checks that the two match.
const csrfToken = "test-csrf-token"

func postForm(e *echo.Echo, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", csrfToken)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrfToken})
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersPosts(t *testing.T) {
	e, _, db := newTestServer(t)
	author := createWebUser(t, db, "leo", "password1")
	if err := db.Create(&models.Post{Text: "hello web", AuthorID: author.ID}).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	rec := getPage(e, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hello web") {
		t.Errorf("index should show the post text")
	}
}

func TestIndexFirstPageIsCached(t *testing.T) {
	e, server, db := newTestServer(t)
	author := createWebUser(t, db, "leo", "password1")
	if err := db.Create(&models.Post{Text: "cache me", AuthorID: author.ID}).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	getPage(e, "/", nil)
	if _, ok := server.pageCache.Get(context.Background(), "index"); !ok {
		t.Errorf("bare index page should be cached after first render")
	}

	// Searching must bypass the cache key.
	server.pageCache.Invalidate(context.Background(), "index")
	getPage(e, "/?q=cache", nil)
	if _, ok := server.pageCache.Get(context.Background(), "index"); ok {
		t.Errorf("search results must not be cached under the index key")
	}
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := getPage(e, "/create/", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/login/" {
		t.Errorf("redirect to %q, want /auth/login/", loc)
	}
}

func TestLoginFlow(t *testing.T) {
	e, _, db := newTestServer(t)
	createWebUser(t, db, "leo", "password1")

	rec := postForm(e, "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"password1"},
	}, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("login should set a session cookie")
	}

	// The session resolves to the user on the next request.
	page := getPage(e, "/", cookie)
	if !strings.Contains(page.Body.String(), "Log out") {
		t.Errorf("authenticated index should offer logout")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	e, _, db := newTestServer(t)
	createWebUser(t, db, "leo", "password1")

	rec := postForm(e, "/auth/login/", url.Values{
		"username": {"leo"},
		"password": {"nope"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want the form re-rendered", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid username or password") {
		t.Errorf("form should carry the error message")
	}
}

func TestPostCreateRedirectsToProfile(t *testing.T) {
	e, _, db := newTestServer(t)
	leo := createWebUser(t, db, "leo", "password1")
	cookie := loginCookie(t, db, leo.ID)

	rec := postForm(e, "/create/", url.Values{"text": {"fresh post"}}, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile/leo/" {
		t.Errorf("redirect to %q, want /profile/leo/", loc)
	}

	var count int64
	db.Model(&models.Post{}).Where("text = ?", "fresh post").Count(&count)
	if count != 1 {
		t.Errorf("post rows = %d, want 1", count)
	}
}

func TestNonAuthorEditRedirectsWithoutChange(t *testing.T) {
	e, _, db := newTestServer(t)
	leo := createWebUser(t, db, "leo", "password1")
	mia := createWebUser(t, db, "mia", "password2")
	post := &models.Post{Text: "original", AuthorID: leo.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	cookie := loginCookie(t, db, mia.ID)

	path := fmt.Sprintf("/posts/%d/edit/", post.ID)
	rec := postForm(e, path, url.Values{"text": {"hijacked"}}, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	want := fmt.Sprintf("/posts/%d/", post.ID)
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("redirect to %q, want %q", loc, want)
	}

	var reloaded models.Post
	if err := db.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Text != "original" {
		t.Errorf("text = %q, must stay unchanged", reloaded.Text)
	}
}

func TestWebFollowIsIdempotent(t *testing.T) {
	e, _, db := newTestServer(t)
	leo := createWebUser(t, db, "leo", "password1")
	mia := createWebUser(t, db, "mia", "password2")
	cookie := loginCookie(t, db, leo.ID)

	for i := 0; i < 2; i++ {
		rec := postForm(e, "/profile/mia/follow/", nil, cookie)
		if rec.Code != http.StatusFound {
			t.Fatalf("follow status = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/profile/mia/" {
			t.Errorf("redirect to %q, want /profile/mia/", loc)
		}
	}

	var count int64
	db.Model(&models.Follow{}).Where("user_id = ? AND following_id = ?", leo.ID, mia.ID).Count(&count)
	if count != 1 {
		t.Errorf("edge rows = %d, want 1", count)
	}

	// Unfollowing twice is just as quiet.
	for i := 0; i < 2; i++ {
		rec := postForm(e, "/profile/mia/unfollow/", nil, cookie)
		if rec.Code != http.StatusFound {
			t.Fatalf("unfollow status = %d, want 302", rec.Code)
		}
	}
	db.Model(&models.Follow{}).Where("user_id = ?", leo.ID).Count(&count)
	if count != 0 {
		t.Errorf("edge rows = %d, want 0", count)
	}
}

func TestWebSelfFollowIsNoOp(t *testing.T) {
	e, _, db := newTestServer(t)
	leo := createWebUser(t, db, "leo", "password1")
	cookie := loginCookie(t, db, leo.ID)

	rec := postForm(e, "/profile/leo/follow/", nil, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	if count != 0 {
		t.Errorf("edge rows = %d, want 0", count)
	}
}

func TestWebPostDeleteInvalidatesCache(t *testing.T) {
	e, server, db := newTestServer(t)
	leo := createWebUser(t, db, "leo", "password1")
	post := &models.Post{Text: "doomed", AuthorID: leo.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	cookie := loginCookie(t, db, leo.ID)

	getPage(e, "/", nil) // primes the cache
	if _, ok := server.pageCache.Get(context.Background(), "index"); !ok {
		t.Fatalf("index should be cached")
	}

	rec := postForm(e, fmt.Sprintf("/posts/%d/delete/", post.ID), nil, cookie)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if _, ok := server.pageCache.Get(context.Background(), "index"); ok {
		t.Errorf("delete must drop the cached index before acknowledging")
	}
}

func TestGroupPageShowsOnlyGroupPosts(t *testing.T) {
	e, _, db := newTestServer(t)
	author := createWebUser(t, db, "leo", "password1")
	science := &models.Group{Title: "Science", Slug: "science"}
	art := &models.Group{Title: "Art", Slug: "art"}
	for _, group := range []*models.Group{science, art} {
		if err := db.Create(group).Error; err != nil {
			t.Fatalf("create group: %v", err)
		}
	}
	for _, post := range []*models.Post{
		{Text: "about quarks", AuthorID: author.ID, GroupID: &science.ID},
		{Text: "about brushes", AuthorID: author.ID, GroupID: &art.ID},
		{Text: "no group at all", AuthorID: author.ID},
	} {
		if err := db.Create(post).Error; err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	rec := getPage(e, "/group/science/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "about quarks") {
		t.Errorf("group page should show its own post")
	}
	if strings.Contains(body, "about brushes") || strings.Contains(body, "no group at all") {
		t.Errorf("group page must not show other posts")
	}
}

func TestUnknownGroupRenders404(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := getPage(e, "/group/ghost/", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page not found") {
		t.Errorf("404 page should be rendered as HTML")
	}
}

func TestFormPostWithoutCSRFTokenRejected(t *testing.T) {
	e, _, db := newTestServer(t)
	leo := createWebUser(t, db, "leo", "password1")
	post := &models.Post{Text: "target", AuthorID: leo.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	cookie := loginCookie(t, db, leo.ID)

	// A cross-site POST carries the session cookie but no token.
	form := url.Values{"text": {"sneaky"}}
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/posts/%d/comment/", post.ID), strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Forbidden") {
		t.Errorf("CSRF failure should render the forbidden page")
	}
	var count int64
	db.Model(&models.Comment{}).Count(&count)
	if count != 0 {
		t.Errorf("comment rows = %d, want 0", count)
	}
}

func TestFormsCarryCSRFToken(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := getPage(e, "/auth/login/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="csrf_token"`) {
		t.Errorf("login form should embed the token field")
	}
	var issued bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" && c.Value != "" {
			issued = true
		}
	}
	if !issued {
		t.Errorf("response should set the token cookie")
	}
}

func TestUnknownPageRenders404(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := getPage(e, "/profile/ghost/", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Page not found") {
		t.Errorf("404 page should be rendered as HTML")
	}
}
