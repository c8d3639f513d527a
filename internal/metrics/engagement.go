package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/garnizeh/mentorship/pkg/models"
)

const scrapeTimeout = 5 * time.Second

// MentorLister and LearningLister are the storage reads the collector needs.
type MentorLister interface {
	ListMentors(ctx context.Context, belowWorkload int) ([]models.Mentor, error)
}

type LearningLister interface {
	ListLearnings(ctx context.Context, mentorID string) ([]models.LearningProcess, error)
}

// EngagementCollector reports mentor workload and active learning processes
// as stored at scrape time.
type EngagementCollector struct {
	mentors   MentorLister
	learnings LearningLister

	workload *prometheus.Desc
	active   *prometheus.Desc
}

func NewEngagementCollector(mentors MentorLister, learnings LearningLister) *EngagementCollector {
	return &EngagementCollector{
		mentors:   mentors,
		learnings: learnings,
		workload: prometheus.NewDesc("mentors_workload",
			"Current number of active mentees per mentor (0-5 scale)",
			[]string{"mentor_id", "mentor_name"}, nil),
		active: prometheus.NewDesc("learning_processes_active",
			"Number of active learning processes", nil, nil),
	}
}

func (c *EngagementCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workload
	ch <- c.active
}

func (c *EngagementCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	mentors, err := c.mentors.ListMentors(ctx, 0)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.workload, err)
	} else {
		for _, m := range mentors {
			ch <- prometheus.MustNewConstMetric(c.workload, prometheus.GaugeValue, float64(m.Workload), m.ID, m.Name)
		}
	}

	learnings, err := c.learnings.ListLearnings(ctx, "")
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.active, err)
		return
	}
	active := 0
	for _, lp := range learnings {
		if lp.IsActive() {
			active++
		}
	}
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(active))
}
