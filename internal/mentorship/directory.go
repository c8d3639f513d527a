package mentorship

import (
	"context"
	"log/slog"
	"strings"

	"github.com/garnizeh/mentorship/pkg/models"
	"github.com/garnizeh/mentorship/pkg/repository"
)

// Directory is the mentor registry. Workload is read here but only ever
// changed by the assign and complete transactions.
type Directory struct {
	repo   repository.MentorRepo
	opts   Options
	logger *slog.Logger
}

func NewDirectory(repo repository.MentorRepo, opts Options) *Directory {
	opts = opts.withDefaults()
	return &Directory{repo: repo, opts: opts, logger: opts.Logger.With("component", "directory")}
}

// MentorInput is the onboarding payload.
type MentorInput struct {
	Name       string  `json:"name" validate:"required,max=100"`
	JobTitle   string  `json:"jobTitle" validate:"required,max=200"`
	Experience string  `json:"experience" validate:"max=5000"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	Telegram   *string `json:"telegram,omitempty" validate:"omitempty,max=50"`
	Avatar     *string `json:"avatar,omitempty" validate:"omitempty,url,max=500"`
}

// List returns all mentors; availableOnly keeps those with spare capacity.
func (d *Directory) List(ctx context.Context, availableOnly bool) ([]models.Mentor, error) {
	below := 0
	if availableOnly {
		below = d.opts.MaxWorkload
	}

	out, err := d.repo.ListMentors(ctx, below)
	if err != nil {
		return nil, fromStore(err, "mentors", "")
	}
	return out, nil
}

func (d *Directory) Get(ctx context.Context, id string) (*models.Mentor, error) {
	m, err := d.repo.GetMentor(ctx, id)
	if err != nil {
		return nil, fromStore(err, "mentor", id)
	}
	return m, nil
}

// Onboard registers a mentor with no mentees.
func (d *Directory) Onboard(ctx context.Context, p Principal, in MentorInput) (*models.Mentor, error) {
	if err := requireAdmin(p, "onboarding a mentor"); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.Experience = strings.TrimSpace(in.Experience)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Telegram = trimmedOrNil(in.Telegram)
	in.Avatar = trimmedOrNil(in.Avatar)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	m := &models.Mentor{
		Name:       in.Name,
		JobTitle:   in.JobTitle,
		Experience: in.Experience,
		Workload:   0,
		Email:      in.Email,
		Telegram:   in.Telegram,
		Avatar:     in.Avatar,
	}
	if err := d.repo.CreateMentor(ctx, m); err != nil {
		return nil, fromStore(err, "mentor", in.Email)
	}

	d.logger.Info("mentor onboarded", "mentor_id", m.ID, "admin_id", p.UserID)
	return m, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
