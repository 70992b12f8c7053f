package ports

import (
	"context"

	"focustrack/models"
)

// ProjectRepository manages user-defined project buckets.
type ProjectRepository interface {
	// List returns projects, optionally filtered to active ones.
	List(ctx context.Context, activeOnly bool) ([]models.Project, error)

	Get(ctx context.Context, id string) (*models.Project, error)

	// Save inserts or updates a project by its stable identifier.
	Save(ctx context.Context, project *models.Project) error

	// Deactivate soft-deletes a project, keeping activity references.
	Deactivate(ctx context.Context, id string) error

	// Delete hard-deletes a project. Implementations must null out
	// activity references and drop rules targeting it so past activities
	// are never left pointing at a missing project.
	Delete(ctx context.Context, id string) error
}
