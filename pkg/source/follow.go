package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/user/log-console-tui/pkg/logging"
)

// FileFollower tails a file, delivering each complete new line as a record.
// Truncation restarts from the beginning; a replaced file is reopened.
type FileFollower struct {
	mu sync.Mutex

	path      string
	sink      Sink
	fromStart bool

	file    *os.File
	offset  int64
	partial []byte
	lines   int
}

// FollowOptions tune a FileFollower
type FollowOptions struct {
	// FromStart delivers the existing content before following
	FromStart bool
}

// NewFileFollower creates a follower for path. The file must exist.
func NewFileFollower(path string, sink Sink, opts FollowOptions) (*FileFollower, error) {
	if sink == nil {
		return nil, fmt.Errorf("follow %s: sink is required", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("follow %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("follow %s: %w", path, err)
	}
	return &FileFollower{path: abs, sink: sink, fromStart: opts.FromStart}, nil
}

// Lines returns the number of records delivered so far
func (f *FileFollower) Lines() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lines
}

// Run follows the file until ctx is done
func (f *FileFollower) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory so rotation and re-creation are seen
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(f.path), err)
	}

	if err := f.open(!f.fromStart); err != nil {
		return err
	}
	defer f.close()

	if err := f.drain(); err != nil {
		return err
	}
	logging.Info("Follow", "following %s from offset %d", f.path, f.offset)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if err := f.handleEvent(event); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("Follow", err, "watcher error on %s", f.path)
		}
	}
}

func (f *FileFollower) handleEvent(event fsnotify.Event) error {
	if filepath.Clean(event.Name) != f.path {
		return nil
	}

	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		logging.Debug("Follow", "%s was re-created, reopening", f.path)
		f.close()
		if err := f.open(false); err != nil {
			return err
		}
		return f.drain()

	case event.Op&fsnotify.Write == fsnotify.Write:
		return f.drain()

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		logging.Debug("Follow", "%s went away, waiting for it to return", f.path)
		f.close()
	}
	return nil
}

func (f *FileFollower) open(atEnd bool) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.path, err)
	}
	f.file = file
	f.offset = 0
	f.partial = nil
	if atEnd {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return fmt.Errorf("failed to seek %s: %w", f.path, err)
		}
		f.offset = end
	}
	return nil
}

func (f *FileFollower) close() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
}

// drain reads everything past the current offset
func (f *FileFollower) drain() error {
	if f.file == nil {
		return nil
	}

	info, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", f.path, err)
	}
	if info.Size() < f.offset {
		logging.Debug("Follow", "%s was truncated, restarting", f.path)
		f.offset = 0
		f.partial = nil
	}

	if _, err := f.file.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek %s: %w", f.path, err)
	}
	buf := make([]byte, 32*1024)
	for {
		n, err := f.file.Read(buf)
		if n > 0 {
			f.offset += int64(n)
			f.consume(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.path, err)
		}
	}
}

// consume splits complete lines out of data, keeping the unfinished tail
func (f *FileFollower) consume(data []byte) {
	f.partial = append(f.partial, data...)
	for {
		idx := bytes.IndexByte(f.partial, '\n')
		if idx < 0 {
			return
		}
		line := string(f.partial[:idx])
		f.partial = f.partial[idx+1:]
		if rec, ok := ParseLine(line); ok {
			f.sink(rec)
			f.mu.Lock()
			f.lines++
			f.mu.Unlock()
		}
	}
}
