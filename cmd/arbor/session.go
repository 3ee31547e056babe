package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/config"
	"github.com/san-kum/arbor/internal/hasher"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/scene"
	"github.com/san-kum/arbor/internal/storage"
	"github.com/san-kum/arbor/internal/tree"
)

// session is a started scene with its watcher and optional journal run.
type session struct {
	scene   *scene.Scene
	watcher hasher.Watcher
	run     *storage.Run
	seed    int64
}

// openSession wires one renderer per surface into a scene and starts it.
// initial seeds a memory watcher, as if the state had been in the address
// bar already.
func openSession(ctx context.Context, c *config.Config, surfaces []render.Surface, sched render.Scheduler, initial string) (*session, error) {
	logger := loggerFromContext(ctx)

	table, err := c.Table()
	if err != nil {
		return nil, err
	}

	views := make([]tree.View, len(surfaces))
	for i, s := range surfaces {
		r, err := render.New(s, render.Options{
			Delay:     c.Delay(),
			Margin:    c.Margin,
			Scheduler: sched,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		views[i] = r
	}

	w, err := hasher.Open(hasher.Options{
		Kind:      c.Watcher,
		StateFile: c.StateFile,
		Poll:      c.Poll(),
		Redis: hasher.RedisOptions{
			Addr:    c.Redis.Addr,
			Key:     c.Redis.Key,
			Channel: c.Redis.Channel,
		},
		Initial: initial,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	sd := c.Seed
	if sd == 0 {
		sd = time.Now().UnixNano()
	}
	s, err := scene.New(views, w, scene.Options{
		Table:  table,
		Rand:   rand.New(rand.NewSource(sd)),
		Logger: logger,
	})
	if err != nil {
		w.Close()
		return nil, err
	}

	sess := &session{scene: s, watcher: w, seed: sd}
	if c.Journal {
		if sess.run, err = openJournal(c, sd, logger); err != nil {
			w.Close()
			return nil, err
		}
		s.AddObserver(sess.run)
		logger.Info("journaling", "run", sess.run.ID(), "dir", c.DataDir)
	}

	if err := s.Start(ctx); err != nil {
		w.Close()
		return nil, fmt.Errorf("start scene: %w", err)
	}
	logger.Debug("scene started", "trees", s.Len(), "watcher", c.Watcher, "seed", sd)
	return sess, nil
}

func openJournal(c *config.Config, seed int64, logger *log.Logger) (*storage.Run, error) {
	st := storage.New(c.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st.Create(storage.RunMetadata{Seed: seed, Preset: c.Preset}, logger)
}

func (s *session) Close() error {
	return s.watcher.Close()
}

// recorders returns n recording surfaces of w x h units.
func recorders(n int, w, h float64) ([]*render.Recorder, []render.Surface) {
	recs := make([]*render.Recorder, n)
	surfaces := make([]render.Surface, n)
	for i := range recs {
		recs[i] = render.NewRecorder(w, h)
		surfaces[i] = recs[i]
	}
	return recs, surfaces
}
