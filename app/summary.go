package app

import (
	"context"
	"sort"
	"time"

	"focustrack/internal/errors"
	"focustrack/ports"

	"github.com/montanaflynn/stats"
)

// ProjectSummary aggregates tracked time for one project over a range.
// ProjectID is empty for uncategorized activities.
type ProjectSummary struct {
	ProjectID     string  `json:"project_id,omitempty"`
	Name          string  `json:"name"`
	TotalSeconds  int64   `json:"total_seconds"`
	ActivityCount int     `json:"activity_count"`
	MeanSeconds   float64 `json:"mean_seconds"`
	MedianSeconds float64 `json:"median_seconds"`
}

// Summary is a date-range report over tracked activities.
type Summary struct {
	From         time.Time        `json:"from"`
	To           time.Time        `json:"to"`
	TotalSeconds int64            `json:"total_seconds"`
	Projects     []ProjectSummary `json:"projects"`
}

// SummaryService builds reports from persisted activities.
type SummaryService struct {
	activities ports.ActivityRepository
	projects   ports.ProjectRepository
}

// NewSummaryService creates a summary service.
func NewSummaryService(activities ports.ActivityRepository, projects ports.ProjectRepository) *SummaryService {
	return &SummaryService{activities: activities, projects: projects}
}

// Build aggregates activities started in [from, to) per project.
func (s *SummaryService) Build(ctx context.Context, from, to time.Time) (*Summary, error) {
	activities, err := s.activities.QueryRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query activities")
	}

	projects, err := s.projects.List(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load projects")
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	durations := make(map[string][]float64)
	totals := make(map[string]int64)
	var grandTotal int64

	for _, a := range activities {
		key := ""
		if a.ProjectID != nil {
			key = *a.ProjectID
		}
		durations[key] = append(durations[key], float64(a.DurationSeconds))
		totals[key] += a.DurationSeconds
		grandTotal += a.DurationSeconds
	}

	summary := &Summary{From: from, To: to, TotalSeconds: grandTotal}
	for key, values := range durations {
		name := names[key]
		if key == "" {
			name = "Uncategorized"
		} else if name == "" {
			name = key
		}

		mean, _ := stats.Mean(values)
		median, _ := stats.Median(values)

		summary.Projects = append(summary.Projects, ProjectSummary{
			ProjectID:     key,
			Name:          name,
			TotalSeconds:  totals[key],
			ActivityCount: len(values),
			MeanSeconds:   mean,
			MedianSeconds: median,
		})
	}

	sort.Slice(summary.Projects, func(i, j int) bool {
		if summary.Projects[i].TotalSeconds != summary.Projects[j].TotalSeconds {
			return summary.Projects[i].TotalSeconds > summary.Projects[j].TotalSeconds
		}
		return summary.Projects[i].Name < summary.Projects[j].Name
	})

	return summary, nil
}
