package post

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"blogapi/internal/auth"
	"blogapi/internal/models"
)

// PostStore is the slice of the document store the post operations need.
// Lookups and single-document updates return (nil, nil) when no post
// matches; a malformed id counts as no match.
type PostStore interface {
	InsertPost(ctx context.Context, p *models.Post) (string, error)
	PostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, offset, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id, title, content string) (*models.Post, error)
	DeletePost(ctx context.Context, id string) (int64, error)
	LikePost(ctx context.Context, id string) (*models.Post, error)
}

// UserStore resolves post authors.
type UserStore interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds the post HTTP handlers. Every mutation follows the same
// skeleton: gate, store call, interpret result, shape envelope.
type Handler struct {
	posts PostStore
	users UserStore
	log   *zap.Logger
}

func NewHandler(posts PostStore, users UserStore, log *zap.Logger) *Handler {
	return &Handler{posts: posts, users: users, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func fail(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, models.Envelope{Success: false, Message: message})
}

func success(w http.ResponseWriter, message string, view *models.PostView) {
	writeJSON(w, http.StatusOK, models.PostEnvelope{
		Envelope: models.Envelope{Success: true, Message: message},
		PostView: view,
	})
}

// failMessage picks the envelope message for a store failure. Identity
// failures keep their own message; everything else is downgraded so no
// internal detail reaches the caller.
func failMessage(err error) string {
	if errors.Is(err, auth.ErrInvalidToken) {
		return "Invalid Auth token!"
	}
	return "Something went wrong!"
}

// view renders a post with its author resolved to {id, userName}. A
// missing or unreadable account degrades the author field to null instead
// of failing the whole response.
func (h *Handler) view(ctx context.Context, p *models.Post) *models.PostView {
	v := &models.PostView{
		ID:        p.ID.Hex(),
		Title:     p.Title,
		Content:   p.Content,
		Likes:     p.Likes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	u, err := h.users.UserByID(ctx, p.Author)
	if err != nil {
		h.log.Warn("author lookup", zap.String("post", v.ID), zap.Error(err))
		return v
	}
	if u != nil {
		v.Author = &models.AuthorRef{ID: u.ID.Hex(), UserName: u.UserName}
	}
	return v
}

// Create handles POST /api/posts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.Identity(r.Context())
	if !ok {
		fail(w, "User not found!")
		return
	}

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "Invalid request body!")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Content == "" {
		fail(w, "Title and content are required!")
		return
	}

	p := &models.Post{Title: req.Title, Content: req.Content, Author: uid, Likes: 0}
	id, err := h.posts.InsertPost(r.Context(), p)
	if err != nil {
		h.log.Error("insert post", zap.Error(err))
		fail(w, failMessage(err))
		return
	}
	if id == "" {
		// the insert reported nothing written
		fail(w, "Post not found!")
		return
	}

	success(w, "Post created successfully!", h.view(r.Context(), p))
}

// Update handles PUT /api/posts/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.Identity(r.Context()); !ok {
		fail(w, "User not found!")
		return
	}

	var req models.UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "Invalid request body!")
		return
	}

	p, err := h.posts.UpdatePost(r.Context(), chi.URLParam(r, "id"), req.Title, req.Content)
	if err != nil {
		h.log.Error("update post", zap.Error(err))
		fail(w, failMessage(err))
		return
	}
	if p == nil {
		fail(w, "Post does not exist!")
		return
	}

	success(w, "Post updated successfully!", h.view(r.Context(), p))
}

// Delete handles DELETE /api/posts/{id}. The entity is gone on success, so
// the envelope stands alone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.Identity(r.Context()); !ok {
		fail(w, "User not found!")
		return
	}

	n, err := h.posts.DeletePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error("delete post", zap.Error(err))
		fail(w, failMessage(err))
		return
	}
	if n == 0 {
		fail(w, "Post does not exist!")
		return
	}

	writeJSON(w, http.StatusOK, models.Envelope{Success: true, Message: "Post delete successfully!"})
}

// Like handles POST /api/posts/{id}/like.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.Identity(r.Context()); !ok {
		fail(w, "User not found!")
		return
	}

	p, err := h.posts.LikePost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error("like post", zap.Error(err))
		fail(w, failMessage(err))
		return
	}
	if p == nil {
		fail(w, "Post does not exist!")
		return
	}

	success(w, "Post liked successfully!", h.view(r.Context(), p))
}

// Get handles GET /api/posts/{id}. Reads are public and fail with query
// errors, not envelopes.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.posts.PostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error("get post", zap.Error(err))
		queryError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}
	if p == nil {
		queryError(w, http.StatusNotFound, "Post does not exist!")
		return
	}

	writeJSON(w, http.StatusOK, h.view(r.Context(), p))
}

// List handles GET /api/posts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	offset := atoiDefault(r.URL.Query().Get("offset"), 0)
	limit := atoiDefault(r.URL.Query().Get("limit"), 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := h.posts.ListPosts(r.Context(), int64(offset), int64(limit))
	if err != nil {
		h.log.Error("list posts", zap.Error(err))
		queryError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}

	views := make([]*models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, h.view(r.Context(), &posts[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
