// Package source provides log sources the ingest pass reads from. A
// FileSource tails per-container log files on disk, the shape the bot
// containers write via docker's log driver. SampleSource serves canned
// output for demo mode.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"trading-dashboard/internal/interfaces"
)

// maxTailRead caps how much of a log file one tail call will scan,
// large enough for several days of bot output.
const maxTailRead = 4 << 20

// FileSource reads container logs from <dir>/<container>.log.
type FileSource struct {
	dir string
}

var _ interfaces.LogSource = (*FileSource)(nil)

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Tail returns the last n lines of the container's log file. A missing
// file is not an error: the container may simply not have started yet.
func (s *FileSource) Tail(ctx context.Context, container string, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := filepath.Join(s.dir, container+".log")
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log %s: %w", p, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log %s: %w", p, err)
	}

	// Read only the end of large files.
	offset := int64(0)
	if info.Size() > maxTailRead {
		offset = info.Size() - maxTailRead
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log %s: %w", p, err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", p, err)
	}

	lines := splitLines(string(data))
	if offset > 0 && len(lines) > 0 {
		// First line is likely truncated by the seek.
		lines = lines[1:]
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
