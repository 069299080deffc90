package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"yatube/internal/cache"
	"yatube/internal/models"
	"yatube/internal/repositories"

	"gorm.io/gorm"
)

func newPostHandler(t *testing.T) (*PostHandler, *gorm.DB, cache.PageCache) {
	t.Helper()
	db := newTestDB(t)
	pageCache := cache.NewMemoryPageCache()
	handler := NewPostHandler(
		repositories.NewGormPostRepository(db),
		repositories.NewGormGroupRepository(db),
		pageCache,
	)
	return handler, db, pageCache
}

func TestCreatePostRequiresAuth(t *testing.T) {
	handler, _, _ := newPostHandler(t)
	e := newTestEcho()

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/posts", `{"text":"hi"}`)
	err := handler.CreatePost(c)
	if code := httpErrorCode(t, err, rec); code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", code)
	}
}

func TestCreatePostWithGroupAndTags(t *testing.T) {
	handler, db, _ := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")
	group := &models.Group{Title: "Nature", Slug: "nature"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}

	body := `{"text":"morning walk","group":"nature","tags":[{"tag_name":"outdoors"}]}`
	c, rec := jsonContext(e, http.MethodPost, "/api/v1/posts", body)
	authAs(c, author)

	if err := handler.CreatePost(c); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var detail PostDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Author != "leo" {
		t.Errorf("author = %q, want leo", detail.Author)
	}
	if detail.Group == nil || *detail.Group != "nature" {
		t.Errorf("group = %v, want nature", detail.Group)
	}
	if len(detail.Tags) != 1 || detail.Tags[0].TagName != "outdoors" {
		t.Errorf("tags = %v, want [outdoors]", detail.Tags)
	}
}

func TestCreatePostUnknownGroupSlug(t *testing.T) {
	handler, db, _ := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/posts", `{"text":"hi","group":"nope"}`)
	authAs(c, author)

	err := handler.CreatePost(c)
	if code := httpErrorCode(t, err, rec); code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestUpdatePostForbiddenForNonAuthor(t *testing.T) {
	handler, db, _ := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")
	intruder := createTestUser(t, db, "mia")
	post := &models.Post{Text: "original", AuthorID: author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	c, rec := jsonContext(e, http.MethodPut, "/api/v1/posts/1", `{"text":"hijacked"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	authAs(c, intruder)

	err := handler.UpdatePost(c)
	if code := httpErrorCode(t, err, rec); code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}

	var unchanged models.Post
	if err := db.First(&unchanged, post.ID).Error; err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if unchanged.Text != "original" {
		t.Errorf("text = %q, post must stay unchanged", unchanged.Text)
	}
}

func TestDeletePostForbiddenForNonAuthor(t *testing.T) {
	handler, db, _ := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")
	intruder := createTestUser(t, db, "mia")
	post := &models.Post{Text: "keep me", AuthorID: author.ID}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	c, rec := jsonContext(e, http.MethodDelete, "/api/v1/posts/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	authAs(c, intruder)

	err := handler.DeletePost(c)
	if code := httpErrorCode(t, err, rec); code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", code)
	}
}

func TestGetPostNotFound(t *testing.T) {
	handler, _, _ := newPostHandler(t)
	e := newTestEcho()

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/posts/999", "")
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := handler.GetPost(c)
	if code := httpErrorCode(t, err, rec); code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", code)
	}
}

func TestGetPostsEnvelope(t *testing.T) {
	handler, db, _ := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")
	for i := 0; i < 12; i++ {
		post := &models.Post{Text: fmt.Sprintf("post %d", i), AuthorID: author.ID}
		if err := db.Create(post).Error; err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/posts", "")
	if err := handler.GetPosts(c); err != nil {
		t.Fatalf("GetPosts: %v", err)
	}

	count, items := decodeEnvelope(t, rec)
	if count != 12 {
		t.Errorf("count = %d, want 12", count)
	}
	// Default page size is 10.
	if len(items) != 10 {
		t.Errorf("page = %d items, want 10", len(items))
	}
}

func TestGetPostsSearch(t *testing.T) {
	handler, db, _ := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")
	for _, text := range []string{"a day at the lake", "city lights"} {
		post := &models.Post{Text: text, AuthorID: author.ID}
		if err := db.Create(post).Error; err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	c, rec := jsonContext(e, http.MethodGet, "/api/v1/posts?search=lake", "")
	if err := handler.GetPosts(c); err != nil {
		t.Fatalf("GetPosts: %v", err)
	}

	count, items := decodeEnvelope(t, rec)
	if count != 1 || len(items) != 1 {
		t.Fatalf("search returned %d items (count %d), want 1", len(items), count)
	}
	var item PostListItem
	if err := json.Unmarshal(items[0], &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.Text != "a day at the lake" {
		t.Errorf("matched %q, want the lake post", item.Text)
	}
}

func TestPostWritesInvalidateFeedCache(t *testing.T) {
	handler, db, pageCache := newPostHandler(t)
	e := newTestEcho()
	author := createTestUser(t, db, "leo")

	ctx := context.Background()
	pageCache.Set(ctx, "index", "cached feed", time.Minute)

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/posts", `{"text":"invalidating"}`)
	authAs(c, author)
	if err := handler.CreatePost(c); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	if _, ok := pageCache.Get(ctx, "index"); ok {
		t.Errorf("feed cache must be dropped before the write is acknowledged")
	}
}
