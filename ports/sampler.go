package ports

import (
	"context"

	"focustrack/models"
)

// SamplingSource yields a snapshot of the currently focused window. It must
// always supply an application name; implementations degrade to the idle
// sample instead of failing when the OS cannot be queried.
type SamplingSource interface {
	Sample(ctx context.Context) (models.Sample, error)
}
