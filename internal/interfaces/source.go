package interfaces

import (
	"context"

	"trading-dashboard/internal/models"
)

// LogSource supplies raw log lines for a named container. Acquisition
// (docker tail, uploaded file, canned sample) is the implementation's
// concern; the core only consumes already-fetched text.
type LogSource interface {
	Tail(ctx context.Context, container string, lines int) ([]string, error)
}

// ContainerProvider reports current container states.
type ContainerProvider interface {
	Containers(ctx context.Context) ([]models.ContainerStatus, error)
}
