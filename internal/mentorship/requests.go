package mentorship

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// Requests owns training request creation and the pending -> rejected
// transition. Approval happens only through the Coordinator.
type Requests struct {
	repo   repository.RequestRepo
	opts   Options
	logger *slog.Logger
}

func NewRequests(repo repository.RequestRepo, opts Options) *Requests {
	opts = opts.withDefaults()
	return &Requests{repo: repo, opts: opts, logger: opts.Logger.With("component", "requests")}
}

type requestInput struct {
	Topic       string `json:"topic" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

// Create files a pending request owned by the caller. Only employees file
// requests; admins act on them.
func (s *Requests) Create(ctx context.Context, p Principal, topic, description string) (*models.TrainingRequest, error) {
	if p.UserID == "" {
		return nil, newError(KindForbidden, "anonymous callers cannot file requests")
	}
	if p.Role != models.RoleEmployee {
		return nil, newError(KindForbidden, "only employees file training requests")
	}

	in := requestInput{Topic: strings.TrimSpace(topic), Description: strings.TrimSpace(description)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	tr := &models.TrainingRequest{
		UserID:      p.UserID,
		Topic:       in.Topic,
		Description: in.Description,
		Status:      models.RequestPending,
	}
	if err := s.repo.CreateRequest(ctx, tr); err != nil {
		return nil, fromStore(err, "user", p.UserID)
	}

	s.opts.Recorder.RequestStatus(tr.Status)
	s.logger.Info("request created", "request_id", tr.ID, "user_id", tr.UserID)
	return tr, nil
}

// Get returns a request visible to its owner and to admins.
func (s *Requests) Get(ctx context.Context, p Principal, id string) (*models.TrainingRequest, error) {
	tr, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, fromStore(err, "request", id)
	}
	if !p.IsAdmin() && !p.owns(tr.UserID) {
		return nil, newError(KindForbidden, "request %s belongs to another user", id)
	}
	return tr, nil
}

// ListForUser returns every request owned by userID, newest first.
func (s *Requests) ListForUser(ctx context.Context, p Principal, userID string) ([]models.TrainingRequest, error) {
	if !p.IsAdmin() && !p.owns(userID) {
		return nil, newError(KindForbidden, "cannot list requests of another user")
	}

	out, err := s.repo.ListRequestsByUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user", userID)
	}
	return out, nil
}

// ListAll returns every request system-wide, optionally filtered by status.
func (s *Requests) ListAll(ctx context.Context, p Principal, status models.RequestStatus) ([]models.TrainingRequest, error) {
	if err := requireAdmin(p, "listing all requests"); err != nil {
		return nil, err
	}
	switch status {
	case "", models.RequestPending, models.RequestApproved, models.RequestRejected:
	default:
		return nil, newError(KindValidation, "unknown request status %q", status)
	}

	out, err := s.repo.ListRequests(ctx, status)
	if err != nil {
		return nil, fromStore(err, "requests", string(status))
	}
	return out, nil
}

// Reject moves a pending request to rejected.
func (s *Requests) Reject(ctx context.Context, p Principal, id string) (*models.TrainingRequest, error) {
	if err := requireAdmin(p, "rejecting a request"); err != nil {
		return nil, err
	}

	tr, err := s.repo.GetRequest(ctx, id)
	if err != nil {
		return nil, fromStore(err, "request", id)
	}
	if tr.Status.Terminal() {
		return nil, newError(KindInvalidTransition, "request %s is already %s", id, tr.Status)
	}

	rejected, err := s.repo.RejectRequest(ctx, id, s.opts.Now())
	if errors.Is(err, repository.ErrStale) {
		// lost to a concurrent assign or reject; report against the new state
		if cur, gerr := s.repo.GetRequest(ctx, id); gerr == nil {
			return nil, newError(KindInvalidTransition, "request %s is already %s", id, cur.Status)
		}
		return nil, newError(KindInvalidTransition, "request %s is no longer pending", id)
	}
	if err != nil {
		return nil, fromStore(err, "request", id)
	}

	s.opts.Recorder.RequestStatus(rejected.Status)
	s.logger.Info("request rejected", "request_id", id, "admin_id", p.UserID)
	return rejected, nil
}
