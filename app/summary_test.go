package app

import (
	"context"
	"testing"
	"time"

	"focustrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSummaryBuild(t *testing.T) {
	repo := &fakeActivityRepo{inserted: []models.Activity{
		{AppName: "Terminal", DurationSeconds: 60, ProjectID: strPtr("work")},
		{AppName: "Safari", DurationSeconds: 120, ProjectID: strPtr("work")},
		{AppName: "Safari", DurationSeconds: 30, ProjectID: strPtr("gone")},
		{AppName: "Mail", DurationSeconds: 45},
	}}
	projects := &fakeProjectRepo{projects: []models.Project{activeProject("work", "Work")}}
	service := NewSummaryService(repo, projects)

	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	summary, err := service.Build(context.Background(), from, from.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(255), summary.TotalSeconds)
	require.Len(t, summary.Projects, 3)

	// Sorted by total time descending.
	work := summary.Projects[0]
	assert.Equal(t, "Work", work.Name)
	assert.Equal(t, int64(180), work.TotalSeconds)
	assert.Equal(t, 2, work.ActivityCount)
	assert.Equal(t, 90.0, work.MeanSeconds)
	assert.Equal(t, 90.0, work.MedianSeconds)

	// Unassigned activities group under a synthetic bucket.
	uncategorized := summary.Projects[1]
	assert.Equal(t, "Uncategorized", uncategorized.Name)
	assert.Empty(t, uncategorized.ProjectID)
	assert.Equal(t, int64(45), uncategorized.TotalSeconds)

	// A project id with no matching row falls back to the raw id.
	orphan := summary.Projects[2]
	assert.Equal(t, "gone", orphan.Name)
	assert.Equal(t, int64(30), orphan.TotalSeconds)
}

func TestSummaryBuild_EmptyRange(t *testing.T) {
	service := NewSummaryService(&fakeActivityRepo{}, &fakeProjectRepo{})

	from := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	summary, err := service.Build(context.Background(), from, from.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(0), summary.TotalSeconds)
	assert.Empty(t, summary.Projects)
}
