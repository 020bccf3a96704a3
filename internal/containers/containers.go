// Package containers reports which bot containers are up. The file
// provider infers liveness from log freshness, which works anywhere the
// log directory is mounted without needing a docker socket.
package containers

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/models"
	"trading-dashboard/internal/store"
)

// staleAfter is how long a container's log may go unwritten before it
// is reported as stopped.
const staleAfter = 5 * time.Minute

// FileProvider treats a container as running when its log file has been
// written to recently.
type FileProvider struct {
	dir  string
	refs []store.ContainerRef
	now  func() time.Time
}

var _ interfaces.ContainerProvider = (*FileProvider)(nil)

func NewFileProvider(dir string, refs []store.ContainerRef) *FileProvider {
	return &FileProvider{dir: dir, refs: refs, now: time.Now}
}

func (p *FileProvider) Containers(ctx context.Context) ([]models.ContainerStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := p.now()
	out := make([]models.ContainerStatus, 0, len(p.refs))
	for _, ref := range p.refs {
		cs := models.ContainerStatus{
			ContainerName: ref.Name,
			User:          ref.User,
			Status:        "stopped",
			LastUpdated:   now,
		}
		info, err := os.Stat(filepath.Join(p.dir, ref.Name+".log"))
		if err == nil && now.Sub(info.ModTime()) < staleAfter {
			cs.Status = "running"
			cs.Uptime = now.Sub(info.ModTime()).Truncate(time.Second).String()
		}
		out = append(out, cs)
	}
	return out, nil
}

// StaticProvider reports a fixed container set, all running. Used in
// demo mode and tests.
type StaticProvider struct {
	refs []store.ContainerRef
	now  func() time.Time
}

var _ interfaces.ContainerProvider = (*StaticProvider)(nil)

func NewStaticProvider(refs []store.ContainerRef) *StaticProvider {
	return &StaticProvider{refs: refs, now: time.Now}
}

func (p *StaticProvider) Containers(ctx context.Context) ([]models.ContainerStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := p.now()
	out := make([]models.ContainerStatus, 0, len(p.refs))
	for _, ref := range p.refs {
		out = append(out, models.ContainerStatus{
			ContainerName: ref.Name,
			User:          ref.User,
			Status:        "running",
			Uptime:        "up",
			LastUpdated:   now,
		})
	}
	return out, nil
}
