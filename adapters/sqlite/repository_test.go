package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "focustrack/internal/errors"
	"focustrack/internal/migration"
	"focustrack/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "focustrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func saveProject(t *testing.T, db *sqlx.DB, id, name string) {
	t.Helper()
	repo := NewProjectRepository(db)
	require.NoError(t, repo.Save(context.Background(), &models.Project{
		ID: id, Name: name, Color: "#3B82F6", IsActive: true,
	}))
}

func newActivity(app string, startedAt time.Time, seconds int64) *models.Activity {
	return &models.Activity{
		StartedAt:       startedAt,
		DurationSeconds: seconds,
		AppName:         app,
	}
}

func TestActivityRepository_InsertAndQuery(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	started := time.Now().Truncate(time.Second)
	activity := newActivity("Terminal", started, 30)
	activity.WindowTitle = "vim notes.md"
	activity.URL = "https://example.com"

	require.NoError(t, repo.Insert(ctx, activity))
	assert.True(t, activity.Persisted(), "insert must assign an identity")

	got, err := repo.QueryRange(ctx, started.Add(-time.Minute), started.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, activity.ID, got[0].ID)
	assert.Equal(t, "Terminal", got[0].AppName)
	assert.Equal(t, "vim notes.md", got[0].WindowTitle)
	assert.Equal(t, int64(30), got[0].DurationSeconds)
	assert.WithinDuration(t, started, got[0].StartedAt, time.Second)
	assert.Nil(t, got[0].ProjectID)
}

func TestActivityRepository_UpdateDuration(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	started := time.Now()
	activity := newActivity("Terminal", started, 30)
	require.NoError(t, repo.Insert(ctx, activity))

	require.NoError(t, repo.UpdateDuration(ctx, activity.ID, 90))

	got, err := repo.QueryRange(ctx, started.Add(-time.Minute), started.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(90), got[0].DurationSeconds)
}

func TestActivityRepository_UpdateProject(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()
	saveProject(t, db, "work", "Work")

	started := time.Now()
	activity := newActivity("Safari", started, 10)
	require.NoError(t, repo.Insert(ctx, activity))

	projectID := "work"
	confidence := 0.85
	note := "code review"
	require.NoError(t, repo.UpdateProject(ctx, activity.ID, &projectID, &confidence, false, &note))

	got, err := repo.QueryRange(ctx, started.Add(-time.Minute), started.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].ProjectID)
	assert.Equal(t, "work", *got[0].ProjectID)
	assert.Equal(t, 0.85, *got[0].Confidence)
	assert.Equal(t, "code review", *got[0].Note)
	assert.False(t, got[0].IsManual)

	// Clearing the assignment nulls every field.
	require.NoError(t, repo.UpdateProject(ctx, activity.ID, nil, nil, false, nil))
	got, err = repo.QueryRange(ctx, started.Add(-time.Minute), started.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, got[0].ProjectID)
	assert.Nil(t, got[0].Confidence)
	assert.Nil(t, got[0].Note)
}

func TestActivityRepository_QueryRangeBounds(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	base := time.Now().Truncate(time.Hour)
	require.NoError(t, repo.Insert(ctx, newActivity("Before", base.Add(-time.Minute), 10)))
	require.NoError(t, repo.Insert(ctx, newActivity("Second", base.Add(30*time.Minute), 20)))
	require.NoError(t, repo.Insert(ctx, newActivity("First", base.Add(10*time.Minute), 30)))
	require.NoError(t, repo.Insert(ctx, newActivity("After", base.Add(2*time.Hour), 40)))

	got, err := repo.QueryRange(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].AppName, "results are ordered oldest first")
	assert.Equal(t, "Second", got[1].AppName)
}

func TestActivityRepository_TotalSecondsBetween(t *testing.T) {
	db := newTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	base := time.Now().Truncate(time.Hour)

	total, err := repo.TotalSecondsBetween(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "empty range must sum to zero")

	require.NoError(t, repo.Insert(ctx, newActivity("A", base.Add(5*time.Minute), 120)))
	require.NoError(t, repo.Insert(ctx, newActivity("B", base.Add(20*time.Minute), 45)))
	require.NoError(t, repo.Insert(ctx, newActivity("C", base.Add(2*time.Hour), 999)))

	total, err = repo.TotalSecondsBetween(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(165), total)
}

func TestProjectRepository_SaveGetRoundtrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := &models.Project{ID: "work", Name: "Work", Color: "#FF0000", Icon: "briefcase", IsActive: true}
	require.NoError(t, repo.Save(ctx, project))

	got, err := repo.Get(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Name)
	assert.Equal(t, "#FF0000", got.Color)
	assert.Equal(t, "briefcase", got.Icon)
	assert.True(t, got.IsActive)

	// Save upserts on the stable identifier.
	project.Name = "Work Renamed"
	require.NoError(t, repo.Save(ctx, project))

	got, err = repo.Get(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "Work Renamed", got.Name)
}

func TestProjectRepository_GetMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)

	_, err := repo.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestProjectRepository_ListFiltersAndOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Project{ID: "b", Name: "Beta", IsActive: true}))
	require.NoError(t, repo.Save(ctx, &models.Project{ID: "a", Name: "Alpha", IsActive: true}))
	require.NoError(t, repo.Save(ctx, &models.Project{ID: "z", Name: "Zeta", IsActive: false}))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Beta", all[1].Name)
	assert.Equal(t, "Zeta", all[2].Name)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, p := range active {
		assert.True(t, p.IsActive)
	}
}

func TestProjectRepository_Deactivate(t *testing.T) {
	db := newTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()
	saveProject(t, db, "work", "Work")

	require.NoError(t, repo.Deactivate(ctx, "work"))

	got, err := repo.Get(ctx, "work")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	err = repo.Deactivate(ctx, "nope")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))
}

func TestProjectRepository_DeleteCleansReferences(t *testing.T) {
	db := newTestDB(t)
	projects := NewProjectRepository(db)
	activities := NewActivityRepository(db)
	rules := NewRuleRepository(db)
	ctx := context.Background()

	saveProject(t, db, "work", "Work")

	started := time.Now()
	activity := newActivity("Safari", started, 60)
	require.NoError(t, activities.Insert(ctx, activity))
	projectID := "work"
	confidence := 1.0
	require.NoError(t, activities.UpdateProject(ctx, activity.ID, &projectID, &confidence, true, nil))

	rule := models.NewCategoryRule(15, models.RuleKindApp, "safari", "work")
	require.NoError(t, rules.Insert(ctx, &rule))

	require.NoError(t, projects.Delete(ctx, "work"))

	_, err := projects.Get(ctx, "work")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.GetCode(err))

	// History survives with the reference nulled out.
	got, err := activities.QueryRange(ctx, started.Add(-time.Minute), started.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ProjectID)

	left, err := rules.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRuleRepository_InsertListDelete(t *testing.T) {
	db := newTestDB(t)
	rules := NewRuleRepository(db)
	ctx := context.Background()
	saveProject(t, db, "work", "Work")

	title := models.NewCategoryRule(25, models.RuleKindTitle, "quarterly", "work")
	url := models.NewCategoryRule(3, models.RuleKindURL, "github.com", "work")
	app := models.NewCategoryRule(15, models.RuleKindApp, "safari", "work")

	require.NoError(t, rules.Insert(ctx, &title))
	require.NoError(t, rules.Insert(ctx, &url))
	require.NoError(t, rules.Insert(ctx, &app))
	assert.NotEqual(t, uuid.Nil, url.ID)

	got, err := rules.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.RuleKindURL, got[0].Kind, "lowest priority value wins")
	assert.Equal(t, models.RuleKindApp, got[1].Kind)
	assert.Equal(t, models.RuleKindTitle, got[2].Kind)

	require.NoError(t, rules.Delete(ctx, url.ID))
	got, err = rules.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
