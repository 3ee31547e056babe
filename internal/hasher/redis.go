package hasher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey     = "arbor:state"
	DefaultRedisChannel = "arbor:state:changed"

	messageSep = "|"
)

var ErrBadMessage = errors.New("hasher: malformed redis message")

// RedisOptions configures a Redis watcher.
type RedisOptions struct {
	Addr    string
	Key     string
	Channel string
	Logger  *log.Logger
}

// Redis keeps the value under a key and announces changes on a channel, so
// several processes can share one scene. Each message carries the
// publisher's id; a watcher's own messages come back as LocalPublish.
type Redis struct {
	handlers
	id      string
	client  *redis.Client
	key     string
	channel string
	logger  *log.Logger

	mu     sync.Mutex
	last   string
	pubsub *redis.PubSub
	done   chan struct{}
}

// NewRedis connects lazily; no network traffic happens before Init.
func NewRedis(opts RedisOptions) *Redis {
	if opts.Key == "" {
		opts.Key = DefaultRedisKey
	}
	if opts.Channel == "" {
		opts.Channel = DefaultRedisChannel
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DialTimeout: 5 * time.Second,
	})
	return newRedis(client, opts)
}

func newRedis(client *redis.Client, opts RedisOptions) *Redis {
	return &Redis{
		id:      uuid.NewString(),
		client:  client,
		key:     opts.Key,
		channel: opts.Channel,
		logger:  opts.Logger,
	}
}

// ID is the publisher id stamped on this watcher's messages.
func (r *Redis) ID() string { return r.id }

func encodeMessage(id, value string) string {
	return id + messageSep + value
}

func decodeMessage(payload string) (id, value string, err error) {
	id, value, ok := strings.Cut(payload, messageSep)
	if !ok || id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadMessage, payload)
	}
	return id, value, nil
}

func (r *Redis) originOf(id string) Origin {
	if id == r.id {
		return LocalPublish
	}
	return External
}

func (r *Redis) Init(ctx context.Context) error {
	v, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		v, err = "", nil
	}
	if err != nil {
		return fmt.Errorf("hasher: redis get %s: %w", r.key, err)
	}

	ps := r.client.Subscribe(ctx, r.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("hasher: redis subscribe %s: %w", r.channel, err)
	}

	r.mu.Lock()
	r.last = v
	r.pubsub = ps
	r.done = make(chan struct{})
	r.mu.Unlock()

	r.emitInitialized(Event{Value: v, Origin: External})
	go r.listen(ps.Channel())
	return nil
}

func (r *Redis) listen(msgs <-chan *redis.Message) {
	defer close(r.done)
	for msg := range msgs {
		r.handle(msg.Payload)
	}
}

func (r *Redis) handle(payload string) {
	id, value, err := decodeMessage(payload)
	if err != nil {
		r.logger.Warn("dropping redis message", "err", err)
		return
	}
	origin := r.originOf(id)
	if origin == External {
		r.mu.Lock()
		r.last = value
		r.mu.Unlock()
	}
	r.emitChanged(Event{Value: value, Origin: origin})
}

func (r *Redis) SetHash(ctx context.Context, value string) error {
	r.mu.Lock()
	r.last = value
	r.mu.Unlock()

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key, value, 0)
		p.Publish(ctx, r.channel, encodeMessage(r.id, value))
		return nil
	})
	if err != nil {
		return fmt.Errorf("hasher: redis publish: %w", err)
	}
	return nil
}

func (r *Redis) Value() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Redis) Close() error {
	r.mu.Lock()
	ps, done := r.pubsub, r.done
	r.pubsub = nil
	r.mu.Unlock()

	if ps != nil {
		if err := ps.Close(); err != nil {
			return err
		}
		<-done
	}
	return r.client.Close()
}
