package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"yatube/internal/cache"
	"yatube/internal/repositories"
	"yatube/internal/storage"
	"yatube/pkg/config"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageSize = 10

// Server is the server-rendered surface: the same services as the API, but
// with session cookies, forms and redirects instead of tokens and JSON.
type Server struct {
	db        *gorm.DB
	cfg       *config.Config
	pageCache cache.PageCache
	uploader  *storage.Uploader

	userRepo    repositories.UserRepository
	postRepo    repositories.PostRepository
	groupRepo   repositories.GroupRepository
	commentRepo repositories.CommentRepository
	followRepo  repositories.FollowRepository

	templates *template.Template
}

func NewServer(db *gorm.DB, cfg *config.Config, pageCache cache.PageCache, uploader *storage.Uploader) *Server {
	return &Server{
		db:          db,
		cfg:         cfg,
		pageCache:   pageCache,
		uploader:    uploader,
		userRepo:    repositories.NewGormUserRepository(db),
		postRepo:    repositories.NewGormPostRepository(db),
		groupRepo:   repositories.NewGormGroupRepository(db),
		commentRepo: repositories.NewGormCommentRepository(db),
		followRepo:  repositories.NewGormFollowRepository(db),
		templates:   template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// RegisterRoutes wires the web routes onto the echo instance. Every form
// carries a CSRF token validated by echo's CSRF middleware; a session cookie
// alone is not enough to mutate state.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = s.errorHandler(e.DefaultHTTPErrorHandler)

	g := e.Group("", s.withSession, eMiddleware.CSRFWithConfig(eMiddleware.CSRFConfig{
		TokenLookup:    "form:csrf_token",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		ErrorHandler: func(err error, c echo.Context) error {
			return echo.NewHTTPError(http.StatusForbidden, "CSRF token missing or invalid")
		},
	}))

	g.GET("/", s.Index)
	g.GET("/group/:slug/", s.GroupPosts)
	g.GET("/profile/:username/", s.Profile)
	g.GET("/posts/:id/", s.PostDetail)

	authed := g.Group("", s.requireAuth)
	authed.GET("/create/", s.PostCreateForm)
	authed.POST("/create/", s.PostCreate)
	authed.GET("/posts/:id/edit/", s.PostEditForm)
	authed.POST("/posts/:id/edit/", s.PostEdit)
	authed.POST("/posts/:id/comment/", s.AddComment)
	authed.POST("/posts/:id/delete/", s.PostDelete)
	authed.GET("/follow/", s.FollowIndex)
	authed.POST("/profile/:username/follow/", s.ProfileFollow)
	authed.POST("/profile/:username/unfollow/", s.ProfileUnfollow)

	g.GET("/auth/signup/", s.SignupForm)
	g.POST("/auth/signup/", s.Signup)
	g.GET("/auth/login/", s.LoginForm)
	g.POST("/auth/login/", s.Login)
	g.GET("/auth/logout/", s.Logout)
	authed.GET("/auth/password_change/", s.PasswordChangeForm)
	authed.POST("/auth/password_change/", s.PasswordChange)
	g.GET("/auth/password_reset/", s.PasswordResetForm)
	g.POST("/auth/password_reset/", s.PasswordResetRequest)
	g.GET("/auth/password_reset/done/", s.PasswordResetDone)
	g.GET("/auth/reset/:token/", s.PasswordResetConfirmForm)
	g.POST("/auth/reset/:token/", s.PasswordResetConfirm)
}

// render executes a page template into a buffer first, so a failed render
// never leaves a half-written response.
func (s *Server) render(c echo.Context, status int, name string, data map[string]interface{}) error {
	html, err := s.renderToString(c, name, data)
	if err != nil {
		return err
	}
	return c.HTML(status, html)
}

func (s *Server) renderToString(c echo.Context, name string, data map[string]interface{}) (string, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	if user := currentUser(c); user != nil {
		data["CurrentUser"] = user
	}
	if token, ok := c.Get("csrf").(string); ok {
		data["CSRFToken"] = token
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// errorHandler keeps JSON errors for the API and renders the generic error
// pages for everything else.
func (s *Server) errorHandler(apiHandler echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		path := c.Request().URL.Path
		if len(path) >= 5 && path[:5] == "/api/" || path == "/health" {
			apiHandler(err, c)
			return
		}
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		name := "500"
		switch status {
		case http.StatusNotFound:
			name = "404"
		case http.StatusForbidden:
			name = "403"
		}
		if rerr := s.render(c, status, name, map[string]interface{}{"Path": path}); rerr != nil {
			_ = c.NoContent(status)
		}
	}
}

// page describes one slice of a listing for the templates.
type page struct {
	Number     int
	PrevNumber int
	NextNumber int
	HasPrev    bool
	HasNext    bool
	Total      int64
}

func pageNumber(c echo.Context) int {
	n, _ := strconv.Atoi(c.QueryParam("page"))
	if n < 1 {
		n = 1
	}
	return n
}

func makePage(number int, total int64) page {
	return page{
		Number:     number,
		PrevNumber: number - 1,
		NextNumber: number + 1,
		HasPrev:    number > 1,
		HasNext:    int64(number*pageSize) < total,
		Total:      total,
	}
}
