package web

import (
	"net/http"
	"path/filepath"
	"strconv"

	"yatube/internal/models"
	"yatube/internal/repositories"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Index renders the main feed with optional keyword search. The bare first
// page is cached whole for a bounded window; post writes invalidate it. Only
// anonymous renders are cached since the page embeds the viewer's navigation.
func (s *Server) Index(c echo.Context) error {
	keyword := c.QueryParam("q")
	number := pageNumber(c)
	cacheable := s.pageCache != nil && keyword == "" && number == 1 && currentUser(c) == nil

	if cacheable {
		if html, ok := s.pageCache.Get(c.Request().Context(), "index"); ok {
			return c.HTML(http.StatusOK, html)
		}
	}

	posts, total, err := s.postRepo.ListPosts(
		repositories.PostFilter{Keyword: keyword},
		pageSize, (number-1)*pageSize,
	)
	if err != nil {
		return err
	}

	html, err := s.renderToString(c, "index", map[string]interface{}{
		"Posts":   posts,
		"Keyword": keyword,
		"Page":    makePage(number, total),
	})
	if err != nil {
		return err
	}
	if cacheable {
		s.pageCache.Set(c.Request().Context(), "index", html, s.cfg.FeedCacheTTL)
	}
	return c.HTML(http.StatusOK, html)
}

func (s *Server) invalidateFeed(c echo.Context) {
	if s.pageCache != nil {
		s.pageCache.Invalidate(c.Request().Context(), "index")
	}
}

// GroupPosts renders the paginated posts of one group.
func (s *Server) GroupPosts(c echo.Context) error {
	group, err := s.groupRepo.GetGroupBySlug(c.Param("slug"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Group not found")
		}
		return err
	}

	number := pageNumber(c)
	posts, total, err := s.postRepo.ListPosts(
		repositories.PostFilter{GroupID: group.ID},
		pageSize, (number-1)*pageSize,
	)
	if err != nil {
		return err
	}

	return s.render(c, http.StatusOK, "group", map[string]interface{}{
		"Group": group,
		"Posts": posts,
		"Page":  makePage(number, total),
	})
}

// Profile renders an author's posts and, for other authenticated viewers,
// whether they follow the author.
func (s *Server) Profile(c echo.Context) error {
	author, err := s.userRepo.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}

	var canFollow, following bool
	if viewer := currentUser(c); viewer != nil && viewer.ID != author.ID {
		canFollow = true
		following, err = s.followRepo.IsFollowing(viewer.ID, author.ID)
		if err != nil {
			return err
		}
	}

	number := pageNumber(c)
	posts, total, err := s.postRepo.ListPosts(
		repositories.PostFilter{AuthorID: author.ID},
		pageSize, (number-1)*pageSize,
	)
	if err != nil {
		return err
	}

	return s.render(c, http.StatusOK, "profile", map[string]interface{}{
		"Author":    author,
		"CanFollow": canFollow,
		"Following": following,
		"Posts":     posts,
		"Page":      makePage(number, total),
	})
}

// PostDetail renders one post with its paginated comments.
func (s *Server) PostDetail(c echo.Context) error {
	post, err := s.getPost(c)
	if err != nil {
		return err
	}

	number := pageNumber(c)
	comments, total, err := s.commentRepo.GetCommentsByPostID(post.ID, pageSize, (number-1)*pageSize)
	if err != nil {
		return err
	}
	tags, err := s.postRepo.GetTags(post.ID)
	if err != nil {
		return err
	}

	return s.render(c, http.StatusOK, "post_detail", map[string]interface{}{
		"Post":     post,
		"Tags":     tags,
		"Comments": comments,
		"Page":     makePage(number, total),
	})
}

func (s *Server) getPost(c echo.Context) (*models.Post, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	post, err := s.postRepo.GetPostByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return nil, err
	}
	return post, nil
}

// PostCreateForm renders the empty post form.
func (s *Server) PostCreateForm(c echo.Context) error {
	return s.render(c, http.StatusOK, "post_form", map[string]interface{}{
		"IsEdit": false,
		"Groups": s.groupChoices(),
	})
}

// PostCreate handles the post form and redirects to the author's profile.
func (s *Server) PostCreate(c echo.Context) error {
	user := currentUser(c)

	text := c.FormValue("text")
	if text == "" {
		return s.render(c, http.StatusOK, "post_form", map[string]interface{}{
			"IsEdit": false,
			"Groups": s.groupChoices(),
			"Error":  "Text is required",
		})
	}

	groupID, err := s.formGroupID(c)
	if err != nil {
		return err
	}

	image, err := s.submittedImage(c)
	if err != nil {
		return err
	}
	post := &models.Post{
		Text:     text,
		AuthorID: user.ID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := s.postRepo.CreatePost(post, nil); err != nil {
		return err
	}
	s.invalidateFeed(c)

	return c.Redirect(http.StatusFound, "/profile/"+user.Username+"/")
}

// PostEditForm renders the edit form; non-authors land on the detail page.
func (s *Server) PostEditForm(c echo.Context) error {
	post, err := s.getPost(c)
	if err != nil {
		return err
	}
	if currentUser(c).ID != post.AuthorID {
		return c.Redirect(http.StatusFound, "/posts/"+strconv.Itoa(int(post.ID))+"/")
	}
	return s.render(c, http.StatusOK, "post_form", map[string]interface{}{
		"IsEdit": true,
		"Post":   post,
		"Groups": s.groupChoices(),
	})
}

// PostEdit applies the form; non-authors are bounced to the detail page with
// the post unchanged.
func (s *Server) PostEdit(c echo.Context) error {
	post, err := s.getPost(c)
	if err != nil {
		return err
	}
	detailURL := "/posts/" + strconv.Itoa(int(post.ID)) + "/"
	if currentUser(c).ID != post.AuthorID {
		return c.Redirect(http.StatusFound, detailURL)
	}

	text := c.FormValue("text")
	if text == "" {
		return s.render(c, http.StatusOK, "post_form", map[string]interface{}{
			"IsEdit": true,
			"Post":   post,
			"Groups": s.groupChoices(),
			"Error":  "Text is required",
		})
	}

	groupID, err := s.formGroupID(c)
	if err != nil {
		return err
	}

	post.Text = text
	post.GroupID = groupID
	image, err := s.submittedImage(c)
	if err != nil {
		return err
	}
	if image != "" {
		post.Image = image
	}
	if err := s.postRepo.UpdatePost(post, nil); err != nil {
		return err
	}
	s.invalidateFeed(c)

	return c.Redirect(http.StatusFound, detailURL)
}

// PostDelete removes the post if the viewer authored it, then returns to the
// index either way.
func (s *Server) PostDelete(c echo.Context) error {
	post, err := s.getPost(c)
	if err != nil {
		return err
	}
	if currentUser(c).ID == post.AuthorID {
		if err := s.postRepo.DeletePost(post.ID); err != nil {
			return err
		}
		s.invalidateFeed(c)
	}
	return c.Redirect(http.StatusFound, "/")
}

// AddComment appends a comment and returns to the post.
func (s *Server) AddComment(c echo.Context) error {
	post, err := s.getPost(c)
	if err != nil {
		return err
	}

	if text := c.FormValue("text"); text != "" {
		comment := &models.Comment{
			PostID:   post.ID,
			AuthorID: currentUser(c).ID,
			Text:     text,
		}
		if err := s.commentRepo.CreateComment(comment); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusFound, "/posts/"+strconv.Itoa(int(post.ID))+"/")
}

// FollowIndex renders posts by authors the viewer follows.
func (s *Server) FollowIndex(c echo.Context) error {
	ids, err := s.followRepo.FollowingIDs(currentUser(c).ID)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []uint{}
	}

	number := pageNumber(c)
	posts, total, err := s.postRepo.ListPosts(
		repositories.PostFilter{AuthorIn: ids},
		pageSize, (number-1)*pageSize,
	)
	if err != nil {
		return err
	}

	return s.render(c, http.StatusOK, "follow", map[string]interface{}{
		"Posts": posts,
		"Page":  makePage(number, total),
	})
}

// ProfileFollow creates the edge; duplicates and self-follows are silent
// no-ops on the web surface.
func (s *Server) ProfileFollow(c echo.Context) error {
	author, err := s.userRepo.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	if _, _, err := s.followRepo.Follow(currentUser(c).ID, author.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// ProfileUnfollow removes the edge; a missing edge is a no-op.
func (s *Server) ProfileUnfollow(c echo.Context) error {
	author, err := s.userRepo.GetUserByUsername(c.Param("username"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return err
	}
	if err := s.followRepo.Unfollow(currentUser(c).ID, author.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

func (s *Server) groupChoices() []models.Group {
	groups, err := s.groupRepo.GetGroups()
	if err != nil {
		return nil
	}
	return groups
}

// submittedImage resolves the form's image: an attached file goes to object
// storage when it is configured, otherwise the plain URL field is used.
func (s *Server) submittedImage(c echo.Context) (string, error) {
	if s.uploader != nil {
		if file, err := c.FormFile("image_file"); err == nil {
			src, err := file.Open()
			if err != nil {
				return "", err
			}
			defer src.Close()
			return s.uploader.Upload(
				c.Request().Context(),
				src,
				file.Size,
				file.Header.Get("Content-Type"),
				filepath.Ext(file.Filename),
			)
		}
	}
	return c.FormValue("image"), nil
}

// formGroupID resolves the optional group form field to an ID.
func (s *Server) formGroupID(c echo.Context) (*uint, error) {
	slug := c.FormValue("group")
	if slug == "" {
		return nil, nil
	}
	group, err := s.groupRepo.GetGroupBySlug(slug)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Unknown group")
		}
		return nil, err
	}
	return &group.ID, nil
}
