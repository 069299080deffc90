package web

import (
	"net/http"
	"time"

	"yatube/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionCookie = "session_id"

// withSession resolves the session cookie to a user and stashes it in the
// request context. Anonymous browsing just passes through.
func (s *Server) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookie)
		if err == nil && cookie.Value != "" {
			var session models.Session
			if err := s.db.First(&session, "id = ?", cookie.Value).Error; err == nil {
				if session.ExpiresAt.After(time.Now()) {
					var user models.User
					if err := s.db.First(&user, session.UserID).Error; err == nil {
						c.Set("webUser", &user)
					}
				}
			}
		}
		return next(c)
	}
}

// requireAuth redirects unauthenticated browsers to the login page.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return c.Redirect(http.StatusFound, "/auth/login/")
		}
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	user, _ := c.Get("webUser").(*models.User)
	return user
}

// startSession creates a session row and sets the cookie. Older sessions of
// the same user are dropped.
func (s *Server) startSession(c echo.Context, userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return err
	}
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.cfg.SessionLifetime),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
	})
	return nil
}

func (s *Server) endSession(c echo.Context) {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		s.db.Delete(&models.Session{}, "id = ?", cookie.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
