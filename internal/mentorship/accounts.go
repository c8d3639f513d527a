package mentorship

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// ErrBadCredentials is returned by Authenticate for an unknown email or a
// wrong password. The two cases are not distinguished.
var ErrBadCredentials = errors.New("invalid email or password")

// Accounts registers and authenticates users. It is the identity
// collaborator the access guard resolves principals from.
type Accounts struct {
	users  repository.UserRepo
	cost   int
	logger *slog.Logger
}

func NewAccounts(users repository.UserRepo, opts Options) *Accounts {
	opts = opts.withDefaults()
	return &Accounts{users: users, cost: bcrypt.DefaultCost, logger: opts.Logger.With("component", "accounts")}
}

// WithHashCost returns a copy using the given bcrypt cost. Tests use
// bcrypt.MinCost to stay fast.
func (a *Accounts) WithHashCost(cost int) *Accounts {
	c := *a
	c.cost = cost
	return &c
}

type RegisterInput struct {
	Name       string      `json:"name" validate:"required,max=200"`
	Email      string      `json:"email" validate:"required,email,max=254"`
	Password   string      `json:"password" validate:"required,min=8,max=72"`
	Role       models.Role `json:"role" validate:"oneof=employee admin"`
	Department *string     `json:"department" validate:"omitempty,max=200"`
	JobTitle   *string     `json:"jobTitle" validate:"omitempty,max=200"`
	Telegram   *string     `json:"telegram" validate:"omitempty,max=100"`
}

// Register creates an account. An empty role means employee.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := a.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, newError(KindConflict, "email %s is already registered", in.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user %s: %w", in.Email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Department:   trimmedOrNil(in.Department),
		JobTitle:     trimmedOrNil(in.JobTitle),
		Telegram:     trimmedOrNil(in.Telegram),
	}
	if err := a.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConstraint) {
			return nil, &Error{Kind: KindConflict, Detail: fmt.Sprintf("email %s is already registered", in.Email), Err: err}
		}
		return nil, fromStore(err, "user", in.Email)
	}

	a.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate checks a password against the stored hash.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// Me resolves the caller's own account.
func (a *Accounts) Me(ctx context.Context, p Principal) (*models.User, error) {
	if p.UserID == "" {
		return nil, newError(KindForbidden, "no authenticated caller")
	}
	u, err := a.users.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, fromStore(err, "user", p.UserID)
	}
	return u, nil
}
