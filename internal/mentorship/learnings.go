package mentorship

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// Learnings owns the active engagement: plan items, notes and completion.
// The plan is frozen once the engagement completes; notes stay editable.
type Learnings struct {
	repo        repository.LearningRepo
	engagements repository.EngagementRepo
	opts        Options
	logger      *slog.Logger
}

func NewLearnings(repo repository.LearningRepo, engagements repository.EngagementRepo, opts Options) *Learnings {
	opts = opts.withDefaults()
	return &Learnings{repo: repo, engagements: engagements, opts: opts, logger: opts.Logger.With("component", "learnings")}
}

type planItemInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

type planInput struct {
	Plan []models.PlanItem `json:"plan" validate:"max=100,dive"`
}

type notesInput struct {
	Notes string `json:"notes" validate:"max=20000"`
}

type feedbackInput struct {
	Feedback models.Feedback `json:"feedback"`
}

// Get returns a learning process to its owner or an admin.
func (s *Learnings) Get(ctx context.Context, p Principal, id string) (*models.LearningProcess, error) {
	lp, err := s.repo.GetLearning(ctx, id)
	if err != nil {
		return nil, fromStore(err, "learning", id)
	}
	if !p.IsAdmin() && !p.owns(lp.UserID) {
		return nil, newError(KindForbidden, "learning %s belongs to another user", id)
	}
	return lp, nil
}

// ListForUser returns every learning process of userID in any status.
func (s *Learnings) ListForUser(ctx context.Context, p Principal, userID string) ([]models.LearningProcess, error) {
	if !p.IsAdmin() && !p.owns(userID) {
		return nil, newError(KindForbidden, "cannot list learnings of another user")
	}

	out, err := s.repo.ListLearningsByUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "user", userID)
	}
	return out, nil
}

// ListAll returns every learning process, optionally only those of mentorID.
func (s *Learnings) ListAll(ctx context.Context, p Principal, mentorID string) ([]models.LearningProcess, error) {
	if err := requireAdmin(p, "listing all learnings"); err != nil {
		return nil, err
	}

	out, err := s.repo.ListLearnings(ctx, mentorID)
	if err != nil {
		return nil, fromStore(err, "mentor", mentorID)
	}
	return out, nil
}

// Progress summarises plan completion for the owner or an admin.
func (s *Learnings) Progress(ctx context.Context, p Principal, id string) (models.Progress, error) {
	lp, err := s.Get(ctx, p, id)
	if err != nil {
		return models.Progress{}, err
	}
	return lp.Progress(), nil
}

// AddPlanItem appends an unchecked item to the plan.
func (s *Learnings) AddPlanItem(ctx context.Context, p Principal, id, text string) (*models.LearningProcess, error) {
	in := planItemInput{Text: strings.TrimSpace(text)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	return s.mutatePlan(ctx, p, id, func(plan []models.PlanItem) ([]models.PlanItem, error) {
		return append(plan, models.PlanItem{ID: s.opts.NewID(), Text: in.Text}), nil
	})
}

// TogglePlanItem flips the completed flag of one item.
func (s *Learnings) TogglePlanItem(ctx context.Context, p Principal, id, itemID string) (*models.LearningProcess, error) {
	return s.mutatePlan(ctx, p, id, func(plan []models.PlanItem) ([]models.PlanItem, error) {
		i, err := findItem(plan, id, itemID)
		if err != nil {
			return nil, err
		}
		plan[i].Completed = !plan[i].Completed
		return plan, nil
	})
}

// EditPlanItem rewrites one item. An empty text keeps the current text.
func (s *Learnings) EditPlanItem(ctx context.Context, p Principal, id, itemID, text string, completed bool) (*models.LearningProcess, error) {
	text = strings.TrimSpace(text)
	if text != "" {
		if err := validateStruct(planItemInput{Text: text}); err != nil {
			return nil, err
		}
	}

	return s.mutatePlan(ctx, p, id, func(plan []models.PlanItem) ([]models.PlanItem, error) {
		i, err := findItem(plan, id, itemID)
		if err != nil {
			return nil, err
		}
		if text != "" {
			plan[i].Text = text
		}
		plan[i].Completed = completed
		return plan, nil
	})
}

// RemovePlanItem deletes one item, keeping the order of the rest.
func (s *Learnings) RemovePlanItem(ctx context.Context, p Principal, id, itemID string) (*models.LearningProcess, error) {
	return s.mutatePlan(ctx, p, id, func(plan []models.PlanItem) ([]models.PlanItem, error) {
		i, err := findItem(plan, id, itemID)
		if err != nil {
			return nil, err
		}
		return append(plan[:i], plan[i+1:]...), nil
	})
}

// ReplacePlan swaps the whole plan. Items without an id get a fresh one;
// ids must be unique within the plan.
func (s *Learnings) ReplacePlan(ctx context.Context, p Principal, id string, items []models.PlanItem) (*models.LearningProcess, error) {
	plan := make([]models.PlanItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		it.Text = strings.TrimSpace(it.Text)
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" {
			it.ID = s.opts.NewID()
		}
		if _, dup := seen[it.ID]; dup {
			return nil, newError(KindValidation, "plan item id %s appears more than once", it.ID)
		}
		seen[it.ID] = struct{}{}
		plan = append(plan, it)
	}
	if err := validateStruct(planInput{Plan: plan}); err != nil {
		return nil, err
	}

	return s.mutatePlan(ctx, p, id, func([]models.PlanItem) ([]models.PlanItem, error) {
		return plan, nil
	})
}

// UpdateNotes replaces the notes wholesale. Allowed in any status.
func (s *Learnings) UpdateNotes(ctx context.Context, p Principal, id, notes string) (*models.LearningProcess, error) {
	if err := validateStruct(notesInput{Notes: notes}); err != nil {
		return nil, err
	}
	if _, err := s.ownedForWrite(ctx, p, id); err != nil {
		return nil, err
	}

	lp, err := s.repo.UpdateNotes(ctx, id, notes, s.opts.Now())
	if err != nil {
		return nil, fromStore(err, "learning", id)
	}

	s.logger.Debug("notes updated", "learning_id", id, "user_id", p.UserID)
	return lp, nil
}

// Complete closes an active engagement with feedback and releases the
// mentor's capacity.
func (s *Learnings) Complete(ctx context.Context, p Principal, id string, fb models.Feedback) (*models.LearningProcess, error) {
	lp, err := s.ownedForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !lp.IsActive() {
		return nil, newError(KindInvalidTransition, "learning %s is already %s", id, lp.Status)
	}

	fb.Comment = strings.TrimSpace(fb.Comment)
	if fb.Rating < 1 || fb.Rating > 5 {
		return nil, newError(KindValidation, "rating must be between 1 and 5, got %d", fb.Rating)
	}
	if err := validateStruct(feedbackInput{Feedback: fb}); err != nil {
		return nil, err
	}

	done, err := s.engagements.Complete(ctx, id, fb, s.opts.Now())
	if errors.Is(err, repository.ErrStale) {
		return nil, newError(KindInvalidTransition, "learning %s was completed concurrently", id)
	}
	if err != nil {
		return nil, fromStore(err, "learning", id)
	}

	s.opts.Recorder.LearningCompleted(done)
	s.logger.Info("learning completed", "learning_id", id, "mentor_id", done.MentorID, "rating", fb.Rating)
	return done, nil
}

// ownedForWrite loads id and checks the caller is its owner. Admins may read
// any engagement but only the learner edits it.
func (s *Learnings) ownedForWrite(ctx context.Context, p Principal, id string) (*models.LearningProcess, error) {
	lp, err := s.repo.GetLearning(ctx, id)
	if err != nil {
		return nil, fromStore(err, "learning", id)
	}
	if !p.owns(lp.UserID) {
		return nil, newError(KindForbidden, "only the learner may edit learning %s", id)
	}
	return lp, nil
}

// mutatePlan applies fn to the current plan and stores the result if nobody
// wrote in between; otherwise it re-reads and applies fn again, so the last
// successful writer wins per field.
func (s *Learnings) mutatePlan(ctx context.Context, p Principal, id string, fn func([]models.PlanItem) ([]models.PlanItem, error)) (*models.LearningProcess, error) {
	for attempt := 1; attempt <= s.opts.Retries; attempt++ {
		lp, err := s.ownedForWrite(ctx, p, id)
		if err != nil {
			return nil, err
		}
		if !lp.IsActive() {
			return nil, newError(KindInvalidTransition, "plan of learning %s is frozen once %s", id, lp.Status)
		}

		plan := make([]models.PlanItem, len(lp.Plan))
		copy(plan, lp.Plan)
		plan, err = fn(plan)
		if err != nil {
			return nil, err
		}

		updated, err := s.repo.UpdatePlan(ctx, id, plan, lp.Version, s.opts.Now())
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, repository.ErrStale) && !errors.Is(err, repository.ErrConflict) {
			return nil, fromStore(err, "learning", id)
		}
		s.logger.Warn("plan write raced, retrying", "learning_id", id, "attempt", attempt)
	}

	return nil, newError(KindConflict, "plan of learning %s kept changing, retry", id)
}

func findItem(plan []models.PlanItem, id, itemID string) (int, error) {
	for i := range plan {
		if plan[i].ID == itemID {
			return i, nil
		}
	}
	return -1, newError(KindNotFound, "plan item %s not found in learning %s", itemID, id)
}
