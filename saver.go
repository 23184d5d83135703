package tvg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/tvg/internal/parallel"
)

// Saver writes paint trees to TVG files in the background.
//
// The zero value is ready to use. Every Save must be followed by Sync,
// which waits for the write and reports its error.
type Saver struct {
	pool *parallel.WorkerPool
	task *parallel.Task
	path string
	err  error
}

// Save encodes p and posts the file write. The tree is encoded before
// Save returns, so p may be changed right away. Only the .tvg extension
// is supported.
func (s *Saver) Save(p Paint, path string) error {
	if s.task != nil {
		return fmt.Errorf("%w: save of %s not synced", ErrInsufficientCondition, s.path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".tvg" {
		return fmt.Errorf("%w: saving %q files", ErrNonSupport, ext)
	}
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if s.pool == nil {
		s.pool = parallel.NewWorkerPool(1)
	}
	s.path, s.err = path, nil
	s.task = parallel.NewTask(func() {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			s.err = classify("save "+path, err)
		}
	})
	s.pool.Post(s.task)
	Logger().Debug("tvg: save posted", "path", path, "bytes", len(data))
	return nil
}

// Sync waits for the pending save and stops the background worker.
func (s *Saver) Sync() error {
	if s.task == nil {
		return nil
	}
	s.task.Join()
	s.pool.Close()
	s.task, s.pool = nil, nil
	err := s.err
	s.err = nil
	if err != nil {
		Logger().Warn("tvg: save failed", "path", s.path, "err", err)
	}
	return err
}
