// Package desktop binds the library to the Wails webview shell. Every
// exported App method is callable from the frontend as
// window.go.desktop.App.<Method>; errors reject the JS promise.
package desktop

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/cliptray/cliptray/internal/bus"
	"github.com/cliptray/cliptray/internal/library"
	"github.com/cliptray/cliptray/internal/search"
	"github.com/cliptray/cliptray/internal/store"
)

const busSubscriberID = "desktop"

// ScreenshotSaver stores captured images and returns their file names.
type ScreenshotSaver interface {
	SaveDataURL(dataURL string) (string, error)
}

// App is the object bound into the webview.
type App struct {
	lib   *library.Library
	shots ScreenshotSaver
	bus   *bus.Bus

	ctx context.Context

	// Wails runtime hooks; replaced in tests.
	emit      func(ctx context.Context, name string, data ...any)
	chooseDir func(ctx context.Context, opts runtime.OpenDialogOptions) (string, error)
}

// NewApp creates the binding. b may be nil, in which case library events are
// not relayed to the frontend.
func NewApp(lib *library.Library, shots ScreenshotSaver, b *bus.Bus) *App {
	return &App{
		lib:       lib,
		shots:     shots,
		bus:       b,
		ctx:       context.Background(),
		emit:      runtime.EventsEmit,
		chooseDir: runtime.OpenDirectoryDialog,
	}
}

// startup is called by Wails once the window exists.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if a.bus != nil {
		a.bus.Subscribe(busSubscriberID, a.relay)
	}
	slog.Info("desktop shell started")
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(context.Context) {
	if a.bus != nil {
		a.bus.Unsubscribe(busSubscriberID)
	}
	slog.Info("desktop shell stopped")
}

// relay forwards library events to the frontend as Wails events.
func (a *App) relay(e bus.Event) {
	a.emit(a.ctx, e.Name, map[string]any{
		"payload": e.Payload,
		"source":  e.Source,
		"seq":     e.Seq,
	})
}

func (a *App) uiCtx() context.Context {
	return store.WithSource(a.ctx, store.SourceUI)
}

// ---- sections ----

func (a *App) ListAll() library.Snapshot { return a.lib.ListAll() }

func (a *App) CreateSection(name string) (*store.Section, error) {
	return a.lib.CreateSection(a.uiCtx(), name)
}

func (a *App) RenameSection(id, name string) (*store.Section, error) {
	return a.lib.RenameSection(a.uiCtx(), id, name)
}

func (a *App) DeleteSection(id string) error {
	return a.lib.DeleteSection(a.uiCtx(), id)
}

func (a *App) SetLocked(id string, locked bool) (*store.Section, error) {
	return a.lib.SetLocked(a.uiCtx(), id, locked)
}

func (a *App) ReorderSections(sourceID, targetID string) ([]store.Section, error) {
	return a.lib.ReorderSections(a.uiCtx(), sourceID, targetID)
}

func (a *App) SetSectionColor(id, color string) (*store.Section, error) {
	return a.lib.SetSectionColor(a.uiCtx(), id, color)
}

func (a *App) SetSectionIcon(id, icon string) (*store.Section, error) {
	return a.lib.SetSectionIcon(a.uiCtx(), id, icon)
}

func (a *App) SetExportPath(id, path string) (*store.Section, error) {
	return a.lib.SetExportPath(a.uiCtx(), id, path)
}

func (a *App) SetSchema(id string, fields []string) (*store.Section, error) {
	return a.lib.SetSchema(a.uiCtx(), id, fields)
}

func (a *App) SetActiveSection(id string) error {
	return a.lib.SetActiveSection(a.uiCtx(), id)
}

// ChooseExportFolder opens the native folder picker and assigns the chosen
// folder to the section. Cancelling the dialog leaves the section unchanged
// and returns nil.
func (a *App) ChooseExportFolder(sectionID string) (*store.Section, error) {
	sec, ok := a.lib.Section(sectionID)
	if !ok {
		return nil, fmt.Errorf("section %q: %w", sectionID, store.ErrNotFound)
	}
	dir, err := a.chooseDir(a.ctx, runtime.OpenDialogOptions{
		Title:                "Export folder for " + sec.Label,
		DefaultDirectory:     sec.ExportPath,
		CanCreateDirectories: true,
	})
	if err != nil {
		return nil, fmt.Errorf("folder picker: %w", err)
	}
	if dir == "" {
		return nil, nil
	}
	return a.lib.SetExportPath(a.uiCtx(), sectionID, dir)
}

// ---- clips ----

func (a *App) SaveClip(patch map[string]any) (*store.Clip, error) {
	clip, _, err := a.lib.SaveClip(a.uiCtx(), store.ClipPatch(patch))
	return clip, err
}

func (a *App) DeleteClip(id string) error {
	return a.lib.DeleteClip(a.uiCtx(), id)
}

func (a *App) DeleteClips(ids []string) ([]string, error) {
	return a.lib.DeleteClips(a.uiCtx(), ids)
}

func (a *App) DeleteSelection() ([]string, error) {
	return a.lib.DeleteSelection(a.uiCtx())
}

func (a *App) MoveClips(ids []string, sectionID string) ([]string, error) {
	return a.lib.MoveClips(a.uiCtx(), ids, sectionID)
}

func (a *App) ReorderClips(sectionID, clipID, beforeClipID string) (*store.Section, error) {
	return a.lib.ReorderClips(a.uiCtx(), sectionID, clipID, beforeClipID)
}

// SaveScreenshot stores a captured image and, when clipID is set, appends it
// to that clip's screenshots. Returns the stored file name.
func (a *App) SaveScreenshot(clipID, dataURL string) (string, error) {
	if a.shots == nil {
		return "", fmt.Errorf("screenshots are not configured")
	}
	name, err := a.shots.SaveDataURL(dataURL)
	if err != nil {
		return "", err
	}
	if clipID == "" {
		return name, nil
	}

	clip, ok := a.lib.Clip(clipID)
	if !ok {
		return name, fmt.Errorf("clip %q: %w", clipID, store.ErrNotFound)
	}
	shots := append(clip.Screenshots, name)
	if _, _, err := a.lib.SaveClip(a.uiCtx(), store.ClipPatch{"id": clipID, "screenshots": shots}); err != nil {
		return name, err
	}
	return name, nil
}

// ---- view state ----

func (a *App) Select(id string) { a.lib.Select(a.uiCtx(), id) }

func (a *App) ToggleSelect(id string) bool { return a.lib.ToggleSelect(a.uiCtx(), id) }

func (a *App) ClearSelection() { a.lib.ClearSelection(a.uiCtx()) }

func (a *App) SetFilters(searchText, tagFilter string) {
	a.lib.SetFilters(a.uiCtx(), searchText, tagFilter)
}

func (a *App) SetSortMode(mode string) { a.lib.SetSortMode(a.uiCtx(), mode) }

func (a *App) VisibleClips() []store.Clip { return a.lib.VisibleClips() }

// SortModes lists the accepted sort modes for the toolbar.
func (a *App) SortModes() []string {
	return []string{search.SortDefault, search.SortNewest, search.SortOldest, search.SortTitle}
}

// ---- settings ----

func (a *App) GetSettings() map[string]any { return a.lib.GetSettings() }

func (a *App) SaveSettings(settings map[string]any) error {
	return a.lib.SaveSettings(a.uiCtx(), settings)
}
