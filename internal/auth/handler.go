package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/models"
	"blogapi/internal/store"
)

// UserStore is the slice of the document store the account handlers need.
// Lookups return (nil, nil) when no account matches.
type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) (string, error)
	UserByName(ctx context.Context, name string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds the account HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *Tokens
	log    *zap.Logger
}

func NewHandler(users UserStore, tokens *Tokens, log *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, models.Envelope{Success: false, Message: message})
}

func queryError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// SignUp creates an account. The userName uniqueness check here is backed
// by the store-level unique index, which closes the read-then-write race.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "Invalid request body!")
		return
	}
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" || req.Password == "" {
		fail(w, "Username and password are required!")
		return
	}

	existing, err := h.users.UserByName(r.Context(), req.UserName)
	if err != nil {
		h.log.Error("signup lookup", zap.Error(err))
		fail(w, "Something went wrong!")
		return
	}
	if existing != nil {
		fail(w, "Username already exists!")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(w, "Something went wrong!")
		return
	}

	u := &models.User{UserName: req.UserName, PasswordHash: string(hashed)}
	id, err := h.users.InsertUser(r.Context(), u)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			fail(w, "Username already exists!")
			return
		}
		h.log.Error("signup insert", zap.Error(err))
		fail(w, "Something went wrong!")
		return
	}

	writeJSON(w, http.StatusOK, models.UserEnvelope{
		Envelope: models.Envelope{Success: true, Message: "User created successfully!"},
		ID:       id,
		UserName: u.UserName,
	})
}

// SignIn checks the password and issues a bearer token.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, "Invalid request body!")
		return
	}

	u, err := h.users.UserByName(r.Context(), strings.TrimSpace(req.UserName))
	if err != nil {
		h.log.Error("signin lookup", zap.Error(err))
		fail(w, "Something went wrong!")
		return
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		fail(w, "Invalid username or password!")
		return
	}

	tok, err := h.tokens.Issue(u.ID.Hex())
	if err != nil {
		h.log.Error("issue token", zap.Error(err))
		fail(w, "Something went wrong!")
		return
	}

	writeJSON(w, http.StatusOK, models.TokenEnvelope{
		Envelope: models.Envelope{Success: true, Message: "Login successful!"},
		Token:    tok,
	})
}

// CurrentUser returns the authenticated account. Unlike the mutations this
// is a query: it fails with a query error, and it is strict — an identity
// whose account no longer exists is rejected the same way as no identity.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	uid, ok := Identity(r.Context())
	if !ok {
		queryError(w, http.StatusUnauthorized, "Invalid user id!")
		return
	}

	u, err := h.users.UserByID(r.Context(), uid)
	if err != nil {
		h.log.Error("current user lookup", zap.Error(err))
		queryError(w, http.StatusInternalServerError, "Something went wrong!")
		return
	}
	if u == nil {
		queryError(w, http.StatusUnauthorized, "Invalid user id!")
		return
	}

	writeJSON(w, http.StatusOK, u)
}
