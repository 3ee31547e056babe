package hasher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPoll is the File watcher's polling interval.
const DefaultPoll = 250 * time.Millisecond

// File stores the value in a text file and polls it for outside edits.
type File struct {
	handlers
	path   string
	poll   time.Duration
	logger *log.Logger

	mu      sync.Mutex
	last    string
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFile returns a watcher over path. A non-positive poll selects
// DefaultPoll.
func NewFile(path string, poll time.Duration, logger *log.Logger) *File {
	if poll <= 0 {
		poll = DefaultPoll
	}
	if logger == nil {
		logger = log.Default()
	}
	return &File{path: path, poll: poll, logger: logger}
}

// Path returns the state file location.
func (f *File) Path() string { return f.path }

func (f *File) read() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("hasher: read %s: %w", f.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *File) Init(ctx context.Context) error {
	v, err := f.read()
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return nil
	}
	f.started = true
	f.last = v
	pctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})
	f.mu.Unlock()

	f.emitInitialized(Event{Value: v, Origin: External})
	go f.watch(pctx)
	return nil
}

func (f *File) watch(ctx context.Context) {
	defer close(f.done)
	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.Check()
		}
	}
}

// Check reads the file once and reports an External change when its content
// differs from the last known value. The polling loop calls it on every
// tick.
func (f *File) Check() {
	v, err := f.read()
	if err != nil {
		f.logger.Warn("state file unreadable", "path", f.path, "err", err)
		return
	}

	f.mu.Lock()
	if v == f.last {
		f.mu.Unlock()
		return
	}
	f.last = v
	f.mu.Unlock()

	f.logger.Debug("state file changed", "path", f.path)
	f.emitChanged(Event{Value: v, Origin: External})
}

// SetHash writes value through a temporary file and a rename so pollers
// never see a partial write.
func (f *File) SetHash(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("hasher: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".arbor-state-*")
	if err != nil {
		return fmt.Errorf("hasher: %w", err)
	}
	if _, err := tmp.WriteString(value + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("hasher: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("hasher: %w", err)
	}

	f.mu.Lock()
	f.last = value
	err = os.Rename(tmp.Name(), f.path)
	f.mu.Unlock()
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("hasher: rename: %w", err)
	}

	f.emitChanged(Event{Value: value, Origin: LocalPublish})
	return nil
}

func (f *File) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func (f *File) Close() error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel = nil
	f.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
