package hasher

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Options selects and configures a watcher by kind.
type Options struct {
	Kind      string
	StateFile string
	Poll      time.Duration
	Redis     RedisOptions
	Initial   string
	Logger    *log.Logger
}

// Open builds the watcher named by opts.Kind: "memory", "file" or "redis".
func Open(opts Options) (Watcher, error) {
	switch opts.Kind {
	case "", "memory":
		return NewMemory(opts.Initial), nil
	case "file":
		if opts.StateFile == "" {
			return nil, fmt.Errorf("hasher: file watcher needs a state file")
		}
		return NewFile(opts.StateFile, opts.Poll, opts.Logger), nil
	case "redis":
		ro := opts.Redis
		if ro.Logger == nil {
			ro.Logger = opts.Logger
		}
		return NewRedis(ro), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}
