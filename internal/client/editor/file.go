package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/sketchkeeper/internal/filex"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// FileSurface keeps the drawing in a file that the user edits with any
// tool. Watch reports external modifications to OnChange listeners.
type FileSurface struct {
	listeners
	path string
	log  logging.Logger

	mu sync.Mutex
	// last is the content most recently written or observed. Events that
	// leave the file equal to it are ignored, so our own writes are not
	// reported back.
	last []byte

	watcher *fsnotify.Watcher
}

// NewFileSurface opens path, creating an empty file when it does not
// exist.
func NewFileSurface(path string, log logging.Logger) (*FileSurface, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		if _, err := filex.EnsureParentDir(abs); err != nil {
			return nil, err
		}
		if err := os.WriteFile(abs, nil, 0o600); err != nil {
			return nil, fmt.Errorf("create drawing file: %w", err)
		}
		data = []byte{}
	} else if err != nil {
		return nil, fmt.Errorf("read drawing file: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &FileSurface{path: abs, log: log, last: data}, nil
}

func (s *FileSurface) Path() string {
	return s.path
}

func (s *FileSurface) Serialize() []byte {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return bytes.Clone(s.last)
	}
	return data
}

func (s *FileSurface) Restore(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(data); err != nil {
		return err
	}
	s.last = bytes.Clone(data)
	return nil
}

func (s *FileSurface) Empty() error {
	return s.Restore(nil)
}

func (s *FileSurface) IsEmpty() bool {
	return blank(s.Serialize())
}

func (s *FileSurface) OnChange(fn func()) {
	s.add(fn)
}

func (s *FileSurface) Edit(data []byte) error {
	if err := s.Restore(data); err != nil {
		return err
	}
	s.fire()
	return nil
}

// write replaces the file through a temporary sibling so readers never see
// a half-written drawing. Callers hold s.mu.
func (s *FileSurface) write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sketch-*")
	if err != nil {
		return fmt.Errorf("write drawing file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write drawing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write drawing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write drawing file: %w", err)
	}
	return nil
}

// Start begins watching the drawing file. Events are processed until ctx
// is cancelled or Close is called.
func (s *FileSurface) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often replace files by rename, so watch the directory.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}
	s.watcher = w

	go s.run(ctx, w)
	return nil
}

func (s *FileSurface) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}

func (s *FileSurface) run(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Close()
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.changed(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.Error(ctx, "fsnotify error", "error", err)
		}
	}
}

func (s *FileSurface) changed(ctx context.Context) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	same := err == nil && bytes.Equal(data, s.last)
	if err == nil && !same {
		s.last = data
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Debug(ctx, "drawing file not readable", "path", s.path, "error", err)
		return
	}
	if same {
		return
	}
	s.log.Debug(ctx, "drawing file changed", "path", s.path, "bytes", len(data))
	s.fire()
}
