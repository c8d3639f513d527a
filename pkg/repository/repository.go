package repository

import (
	"context"
	"errors"
	"time"

	"github.com/garnizeh/mentorship/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraint is returned when a unique or check constraint rejects a write.
	ErrConstraint = errors.New("constraint violation")
	// ErrStale is returned when a conditional write finds the row no longer
	// in the state the caller read (status moved, version bumped, capacity taken).
	ErrStale = errors.New("stale state")
	// ErrConflict is returned when the store could not take the write lock.
	// The operation had no effect and may be retried.
	ErrConflict = errors.New("write conflict")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type MentorRepo interface {
	CreateMentor(ctx context.Context, m *models.Mentor) error
	GetMentor(ctx context.Context, id string) (*models.Mentor, error)
	// ListMentors returns mentors ordered by name. A positive belowWorkload
	// keeps only mentors whose workload is strictly lower.
	ListMentors(ctx context.Context, belowWorkload int) ([]models.Mentor, error)
}

type RequestRepo interface {
	CreateRequest(ctx context.Context, r *models.TrainingRequest) error
	GetRequest(ctx context.Context, id string) (*models.TrainingRequest, error)
	ListRequestsByUser(ctx context.Context, userID string) ([]models.TrainingRequest, error)
	// ListRequests returns every request; an empty status means any.
	ListRequests(ctx context.Context, status models.RequestStatus) ([]models.TrainingRequest, error)
	// RejectRequest moves a pending request to rejected. ErrStale when it is
	// no longer pending.
	RejectRequest(ctx context.Context, id string, at time.Time) (*models.TrainingRequest, error)
}

type LearningRepo interface {
	GetLearning(ctx context.Context, id string) (*models.LearningProcess, error)
	ListLearningsByUser(ctx context.Context, userID string) ([]models.LearningProcess, error)
	// ListLearnings returns every learning process; an empty mentorID means any.
	ListLearnings(ctx context.Context, mentorID string) ([]models.LearningProcess, error)
	// UpdatePlan stores plan if the row is still active and at version.
	// ErrStale otherwise.
	UpdatePlan(ctx context.Context, id string, plan []models.PlanItem, version int64, at time.Time) (*models.LearningProcess, error)
	UpdateNotes(ctx context.Context, id string, notes string, at time.Time) (*models.LearningProcess, error)
}

// Assignment carries everything the assign transaction needs. The learner
// and topic are copied from the request row inside the transaction.
type Assignment struct {
	RequestID   string
	MentorID    string
	MaxWorkload int
	At          time.Time
}

// EngagementRepo performs the compound writes that span requests, mentors and
// learning processes. Each call is all-or-nothing.
type EngagementRepo interface {
	// Assign approves a pending request, takes one unit of mentor capacity and
	// creates the active learning process. ErrStale when the request is no
	// longer pending or the mentor has no capacity left.
	Assign(ctx context.Context, a Assignment) (*models.LearningProcess, error)
	// Complete closes an active learning process with feedback and releases
	// one unit of mentor capacity. ErrStale when it is not active.
	Complete(ctx context.Context, id string, fb models.Feedback, at time.Time) (*models.LearningProcess, error)
}
