package post

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"blogapi/internal/auth"
	"blogapi/internal/models"
)

// fakePosts is an in-memory PostStore counting every store call, so the
// gate tests can assert that rejected mutations touch the store zero times.
type fakePosts struct {
	byID  map[string]*models.Post
	calls int
	err   error
	// dropInsertID simulates an insert that reports nothing written.
	dropInsertID bool
}

func newFakePosts() *fakePosts {
	return &fakePosts{byID: map[string]*models.Post{}}
}

func (f *fakePosts) InsertPost(ctx context.Context, p *models.Post) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.dropInsertID {
		return "", nil
	}
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	f.byID[p.ID.Hex()] = p
	return p.ID.Hex(), nil
}

func (f *fakePosts) PostByID(ctx context.Context, id string) (*models.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakePosts) ListPosts(ctx context.Context, offset, limit int64) ([]models.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Post
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePosts) UpdatePost(ctx context.Context, id, title, content string) (*models.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	p.Title = title
	p.Content = content
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (f *fakePosts) DeletePost(ctx context.Context, id string) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.byID[id]; !ok {
		return 0, nil
	}
	delete(f.byID, id)
	return 1, nil
}

func (f *fakePosts) LikePost(ctx context.Context, id string) (*models.Post, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	p.Likes++
	cp := *p
	return &cp, nil
}

// fakeAuthors resolves post authors from a fixed set of accounts.
type fakeAuthors struct {
	byID map[string]*models.User
}

func (f *fakeAuthors) UserByID(ctx context.Context, id string) (*models.User, error) {
	return f.byID[id], nil
}

type postEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	ID      string            `json:"id"`
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Author  *models.AuthorRef `json:"author"`
	Likes   int64             `json:"likes"`
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/posts", h.List)
	r.Get("/posts/{id}", h.Get)
	r.Post("/posts", h.Create)
	r.Put("/posts/{id}", h.Update)
	r.Delete("/posts/{id}", h.Delete)
	r.Post("/posts/{id}/like", h.Like)
	return r
}

func testSetup() (*fakePosts, *fakeAuthors, http.Handler, string) {
	posts := newFakePosts()
	author := &models.User{ID: primitive.NewObjectID(), UserName: "alice"}
	authors := &fakeAuthors{byID: map[string]*models.User{author.ID.Hex(): author}}
	h := NewHandler(posts, authors, zap.NewNop())
	return posts, authors, newRouter(h), author.ID.Hex()
}

func do(t *testing.T, router http.Handler, method, path string, body any, uid string) (*httptest.ResponseRecorder, postEnvelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if uid != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), uid))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env postEnvelope
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response: %v (%s)", err, w.Body.String())
		}
	}
	return w, env
}

func seedPost(posts *fakePosts, author string) *models.Post {
	p := &models.Post{
		ID:      primitive.NewObjectID(),
		Title:   "seed",
		Content: "seeded content",
		Author:  author,
		Likes:   0,
	}
	posts.byID[p.ID.Hex()] = p
	return p
}

func TestMutationsRequireIdentity(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"create", "POST", "/posts", models.CreatePostRequest{Title: "T", Content: "C"}},
		{"update", "PUT", "/posts/abc", models.UpdatePostRequest{Title: "T", Content: "C"}},
		{"delete", "DELETE", "/posts/abc", nil},
		{"like", "POST", "/posts/abc/like", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts, _, router, _ := testSetup()

			w, env := do(t, router, tc.method, tc.path, tc.body, "")
			if w.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", w.Code)
			}
			if env.Success {
				t.Error("expected failure envelope")
			}
			if env.Message != "User not found!" {
				t.Errorf("unexpected message: %s", env.Message)
			}
			if posts.calls != 0 {
				t.Errorf("expected zero store calls, got %d", posts.calls)
			}
		})
	}
}

func TestCreatePost(t *testing.T) {
	posts, _, router, uid := testSetup()

	_, env := do(t, router, "POST", "/posts", models.CreatePostRequest{
		Title: "T", Content: "C",
	}, uid)
	if !env.Success {
		t.Fatalf("create failed: %s", env.Message)
	}
	if env.Message != "Post created successfully!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
	if env.Likes != 0 {
		t.Errorf("expected likes=0, got %d", env.Likes)
	}
	if env.Author == nil || env.Author.ID != uid {
		t.Errorf("expected author %s, got %+v", uid, env.Author)
	}
	if env.ID == "" {
		t.Fatal("expected post id")
	}

	stored := posts.byID[env.ID]
	if stored == nil || stored.Author != uid {
		t.Errorf("stored post author = %+v, expected %s", stored, uid)
	}

	// Fetching it back returns the same title/content.
	w, got := do(t, router, "GET", "/posts/"+env.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	if got.Title != "T" || got.Content != "C" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreatePostValidation(t *testing.T) {
	posts, _, router, uid := testSetup()

	_, env := do(t, router, "POST", "/posts", models.CreatePostRequest{Title: "  "}, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if posts.calls != 0 {
		t.Errorf("expected zero store calls, got %d", posts.calls)
	}
}

func TestCreatePostInsertAnomaly(t *testing.T) {
	posts, _, router, uid := testSetup()
	posts.dropInsertID = true

	_, env := do(t, router, "POST", "/posts", models.CreatePostRequest{
		Title: "T", Content: "C",
	}, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.Message != "Post not found!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestUpdatePost(t *testing.T) {
	posts, _, router, uid := testSetup()
	p := seedPost(posts, uid)

	_, env := do(t, router, "PUT", "/posts/"+p.ID.Hex(), models.UpdatePostRequest{
		Title: "new title", Content: "new content",
	}, uid)
	if !env.Success {
		t.Fatalf("update failed: %s", env.Message)
	}
	if env.Message != "Post updated successfully!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
	if env.Title != "new title" {
		t.Errorf("expected updated title, got %q", env.Title)
	}
}

func TestUpdatePostMissing(t *testing.T) {
	_, _, router, uid := testSetup()

	_, env := do(t, router, "PUT", "/posts/"+primitive.NewObjectID().Hex(), models.UpdatePostRequest{
		Title: "T", Content: "C",
	}, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.Message != "Post does not exist!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestDeletePost(t *testing.T) {
	posts, _, router, uid := testSetup()
	p := seedPost(posts, uid)

	_, env := do(t, router, "DELETE", "/posts/"+p.ID.Hex(), nil, uid)
	if !env.Success {
		t.Fatalf("delete failed: %s", env.Message)
	}
	if env.Message != "Post delete successfully!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
	if env.ID != "" || env.Title != "" {
		t.Error("delete response must not carry entity fields")
	}
	if len(posts.byID) != 0 {
		t.Errorf("expected post removed, %d left", len(posts.byID))
	}
}

func TestDeletePostMissing(t *testing.T) {
	posts, _, router, uid := testSetup()
	seedPost(posts, uid)
	before := len(posts.byID)

	_, env := do(t, router, "DELETE", "/posts/"+primitive.NewObjectID().Hex(), nil, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.Message != "Post does not exist!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
	if len(posts.byID) != before {
		t.Error("collection size changed")
	}
}

func TestLikePostIncrements(t *testing.T) {
	posts, _, router, uid := testSetup()
	p := seedPost(posts, uid)

	for i := 1; i <= 3; i++ {
		_, env := do(t, router, "POST", "/posts/"+p.ID.Hex()+"/like", nil, uid)
		if !env.Success {
			t.Fatalf("like %d failed: %s", i, env.Message)
		}
		if env.Message != "Post liked successfully!" {
			t.Errorf("unexpected message: %s", env.Message)
		}
		if env.Likes != int64(i) {
			t.Errorf("after %d likes expected %d, got %d", i, i, env.Likes)
		}
	}
}

func TestLikePostMissing(t *testing.T) {
	_, _, router, uid := testSetup()

	_, env := do(t, router, "POST", "/posts/"+primitive.NewObjectID().Hex()+"/like", nil, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.Message != "Post does not exist!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestGetPostNotFound(t *testing.T) {
	_, _, router, _ := testSetup()

	w, _ := do(t, router, "GET", "/posts/nosuchid", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	var qe map[string]string
	json.Unmarshal(w.Body.Bytes(), &qe)
	if qe["error"] != "Post does not exist!" {
		t.Errorf("unexpected error: %q", qe["error"])
	}
}

func TestAuthorDegradesToNull(t *testing.T) {
	posts, _, router, _ := testSetup()
	// Post referencing an account that no longer exists.
	p := seedPost(posts, primitive.NewObjectID().Hex())

	w, env := do(t, router, "GET", "/posts/"+p.ID.Hex(), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if env.Author != nil {
		t.Errorf("expected null author, got %+v", env.Author)
	}
	if env.Title != p.Title {
		t.Error("rest of the post should still render")
	}
}

func TestStoreFailureDowngraded(t *testing.T) {
	posts, _, router, uid := testSetup()
	posts.err = errors.New("connection reset")

	_, env := do(t, router, "POST", "/posts", models.CreatePostRequest{
		Title: "T", Content: "C",
	}, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.Message != "Something went wrong!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestAuthFailureKeepsItsMessage(t *testing.T) {
	posts, _, router, uid := testSetup()
	posts.err = fmt.Errorf("refresh: %w", auth.ErrInvalidToken)

	_, env := do(t, router, "DELETE", "/posts/"+primitive.NewObjectID().Hex(), nil, uid)
	if env.Success {
		t.Fatal("expected failure")
	}
	if env.Message != "Invalid Auth token!" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestListPosts(t *testing.T) {
	posts, _, router, uid := testSetup()
	seedPost(posts, uid)
	seedPost(posts, uid)

	req := httptest.NewRequest("GET", "/posts?offset=0&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var views []models.PostView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(views) != 2 {
		t.Errorf("expected 2 posts, got %d", len(views))
	}
	for _, v := range views {
		if v.Author == nil || v.Author.UserName != "alice" {
			t.Errorf("expected resolved author, got %+v", v.Author)
		}
	}
}
