package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/garnizeh/mentorship/internal/mentorship"
	"github.com/garnizeh/mentorship/pkg/models"
)

type AuthHandler struct {
	accounts      *mentorship.Accounts
	jwtSecret     string
	tokenDuration time.Duration
	now           func() time.Time
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(accounts *mentorship.Accounts, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{accounts: accounts, jwtSecret: jwtSecret, tokenDuration: tokenDuration, now: time.Now}
}

type registerRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Department *string `json:"department"`
	JobTitle   *string `json:"jobTitle"`
	Telegram   *string `json:"telegram"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register always creates an employee; admins are provisioned by db_init.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, registerSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.accounts.Register(r.Context(), mentorship.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       models.RoleEmployee,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		Telegram:   req.Telegram,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, u, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, loginSchema, &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, mentorship.ErrBadCredentials) {
		writeProblem(w, http.StatusUnauthorized, kindUnauthenticated, "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.respondWithToken(w, r, u, http.StatusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	u, err := h.accounts.Me(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, u *models.User, status int) {
	tokenStr, err := IssueToken(h.jwtSecret, u, h.tokenDuration, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, authResponse{Token: tokenStr, User: u}, status)
}
