//go:build !cgo

package gui

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/scene"
)

// App is unavailable without cgo; Run always fails.
type App struct{}

func NewApp(s *scene.Scene, recorders []*render.Recorder, opts Options, logger *log.Logger) *App {
	return &App{}
}

func (a *App) Run(ctx context.Context) error { return ErrUnavailable }
