package main

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"wikitrans/internal/bootstrap"
)

// App holds the desktop runtime context.
type App struct {
	ctx context.Context
	svc *bootstrap.Services
}

// NewApp creates a new App application struct
func NewApp(svc *bootstrap.Services) *App {
	return &App{svc: svc}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.svc.Events.Attach(wailsEmitter{ctx: ctx})
}

// shutdown detaches the event bridge before the runtime context goes away.
func (a *App) shutdown(ctx context.Context) {
	a.svc.Events.Attach(nil)
}

// Version reports the build version to the frontend.
func (a *App) Version() string { return version }

type wailsEmitter struct{ ctx context.Context }

func (w wailsEmitter) Emit(name string, payload any) {
	runtime.EventsEmit(w.ctx, name, payload)
}
