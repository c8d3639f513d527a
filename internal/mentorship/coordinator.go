package mentorship

import (
	"context"
	"errors"
	"log/slog"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// Coordinator turns a pending request and a chosen mentor into an active
// learning process.
type Coordinator struct {
	requests    repository.RequestRepo
	mentors     repository.MentorRepo
	engagements repository.EngagementRepo
	opts        Options
	logger      *slog.Logger
}

func NewCoordinator(requests repository.RequestRepo, mentors repository.MentorRepo, engagements repository.EngagementRepo, opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		requests:    requests,
		mentors:     mentors,
		engagements: engagements,
		opts:        opts,
		logger:      opts.Logger.With("component", "coordinator"),
	}
}

// Assign approves requestID, charges one unit of mentorID's capacity and
// creates the learning process, all or nothing. A caller that loses a race
// sees the outcome against the state the winner left behind.
func (c *Coordinator) Assign(ctx context.Context, p Principal, requestID, mentorID string) (*models.LearningProcess, error) {
	if err := requireAdmin(p, "assigning a mentor"); err != nil {
		return nil, err
	}
	if requestID == "" || mentorID == "" {
		return nil, newError(KindValidation, "request id and mentor id are required")
	}

	for attempt := 1; attempt <= c.opts.Retries; attempt++ {
		if err := c.precheck(ctx, requestID, mentorID); err != nil {
			return nil, err
		}

		lp, err := c.engagements.Assign(ctx, repository.Assignment{
			RequestID:   requestID,
			MentorID:    mentorID,
			MaxWorkload: c.opts.MaxWorkload,
			At:          c.opts.Now(),
		})
		if err == nil {
			c.opts.Recorder.RequestStatus(models.RequestApproved)
			c.opts.Recorder.LearningStarted(lp)
			c.logger.Info("mentor assigned",
				"request_id", requestID, "mentor_id", mentorID, "learning_id", lp.ID, "admin_id", p.UserID)
			return lp, nil
		}

		if !errors.Is(err, repository.ErrStale) && !errors.Is(err, repository.ErrConflict) {
			return nil, fromStore(err, "request", requestID)
		}
		c.logger.Warn("assignment lost a race, re-reading state",
			"request_id", requestID, "mentor_id", mentorID, "attempt", attempt, "err", err)
	}

	return nil, newError(KindConflict, "request %s: gave up after %d contended attempts", requestID, c.opts.Retries)
}

// precheck classifies the current state: NotFound, InvalidTransition or
// CapacityExceeded. A nil result means the transaction may be attempted.
func (c *Coordinator) precheck(ctx context.Context, requestID, mentorID string) error {
	tr, err := c.requests.GetRequest(ctx, requestID)
	if err != nil {
		return fromStore(err, "request", requestID)
	}
	if tr.Status.Terminal() {
		return newError(KindInvalidTransition, "request %s is already %s", requestID, tr.Status)
	}

	m, err := c.mentors.GetMentor(ctx, mentorID)
	if err != nil {
		return fromStore(err, "mentor", mentorID)
	}
	if m.Workload >= c.opts.MaxWorkload {
		return newError(KindCapacityExceeded, "mentor %s already has %d of %d mentees", mentorID, m.Workload, c.opts.MaxWorkload)
	}

	return nil
}
