package hasher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func TestMemory_Origins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("a")
	var inits, changes recorder
	m.OnInitialized(inits.handle)
	m.OnChanged(changes.handle)

	if err := m.Init(ctx); err != nil {
		t.Fatal(err)
	}
	if got := inits.all(); len(got) != 1 || got[0] != (Event{"a", External}) {
		t.Fatalf("init events = %v", got)
	}

	_ = m.SetHash(ctx, "b")
	_ = m.Push("c")
	_ = m.Push("c")

	want := []Event{{"b", LocalPublish}, {"c", External}}
	got := changes.all()
	if len(got) != len(want) {
		t.Fatalf("change events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if m.Value() != "c" {
		t.Errorf("Value() = %q", m.Value())
	}
}

func TestMemory_Closed(t *testing.T) {
	m := NewMemory("")
	_ = m.Close()
	if err := m.SetHash(context.Background(), "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetHash after Close = %v", err)
	}
	if err := m.Push("x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Push after Close = %v", err)
	}
}

func TestFile_InitReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	if err := os.WriteFile(path, []byte("65_35_0.625_6_0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewFile(path, time.Hour, log.New(os.Stderr))
	defer f.Close()
	var inits recorder
	f.OnInitialized(inits.handle)

	if err := f.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := inits.all()
	if len(got) != 1 || got[0].Value != "65_35_0.625_6_0" || got[0].Origin != External {
		t.Errorf("init events = %v", got)
	}
}

func TestFile_MissingIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "none"), time.Hour, nil)
	defer f.Close()
	var inits recorder
	f.OnInitialized(inits.handle)
	if err := f.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := inits.all(); len(got) != 1 || got[0].Value != "" {
		t.Errorf("init events = %v", got)
	}
}

func TestFile_SetHashAndCheck(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state")
	f := NewFile(path, time.Hour, nil)
	defer f.Close()
	var changes recorder
	f.OnChanged(changes.handle)
	if err := f.Init(ctx); err != nil {
		t.Fatal(err)
	}

	if err := f.SetHash(ctx, "1_2_0.5_3_0"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "1_2_0.5_3_0\n" {
		t.Fatalf("file content %q, %v", data, err)
	}

	// our own write is not reported again by the poller
	f.Check()

	if err := os.WriteFile(path, []byte("9_9_0.6_6_1"), 0644); err != nil {
		t.Fatal(err)
	}
	f.Check()
	f.Check()

	got := changes.all()
	want := []Event{{"1_2_0.5_3_0", LocalPublish}, {"9_9_0.6_6_1", External}}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFile_Polls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	f := NewFile(path, 5*time.Millisecond, nil)
	defer f.Close()

	seen := make(chan Event, 1)
	f.OnChanged(func(e Event) {
		select {
		case seen <- e:
		default:
		}
	})
	if err := f.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-seen:
		if e.Value != "x" || e.Origin != External {
			t.Errorf("event = %v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller never reported the change")
	}
}

func TestRedis_MessageCodec(t *testing.T) {
	id, value, err := decodeMessage(encodeMessage("abc", "65_35_0.625_6_0,70_40_0.6_6_1"))
	if err != nil {
		t.Fatal(err)
	}
	if id != "abc" || value != "65_35_0.625_6_0,70_40_0.6_6_1" {
		t.Errorf("decoded %q %q", id, value)
	}

	for _, bad := range []string{"", "novalue", "|value"} {
		if _, _, err := decodeMessage(bad); !errors.Is(err, ErrBadMessage) {
			t.Errorf("decodeMessage(%q) = %v", bad, err)
		}
	}

	// an empty value is still a valid message
	if _, v, err := decodeMessage("abc|"); err != nil || v != "" {
		t.Errorf("empty value: %q %v", v, err)
	}
}

func TestRedis_HandleOrigins(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	r := newRedis(client, RedisOptions{Key: DefaultRedisKey, Channel: DefaultRedisChannel, Logger: log.New(os.Stderr)})
	defer client.Close()

	var changes recorder
	r.OnChanged(changes.handle)

	r.handle(encodeMessage(r.ID(), "mine"))
	r.handle(encodeMessage("someone-else", "theirs"))
	r.handle("garbage")

	got := changes.all()
	want := []Event{{"mine", LocalPublish}, {"theirs", External}}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if r.Value() != "theirs" {
		t.Errorf("Value() = %q", r.Value())
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		kind    string
		file    string
		wantErr bool
	}{
		{"", "", false},
		{"memory", "", false},
		{"file", filepath.Join(t.TempDir(), "s"), false},
		{"file", "", true},
		{"redis", "", false},
		{"carrier-pigeon", "", true},
	}
	for _, tt := range tests {
		w, err := Open(Options{Kind: tt.kind, StateFile: tt.file, Redis: RedisOptions{Addr: "127.0.0.1:0"}})
		if (err != nil) != tt.wantErr {
			t.Errorf("Open(%q) err = %v", tt.kind, err)
			continue
		}
		if w != nil {
			w.Close()
		}
	}
}
