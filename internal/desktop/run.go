package desktop

import (
	"embed"
	"fmt"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"github.com/cliptray/cliptray/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

// Run opens the desktop window and blocks until it is closed. It must be
// called from the main goroutine.
func Run(app *App, cfg config.DesktopConfig) error {
	err := wails.Run(&options.App{
		Title:     cfg.Title,
		Width:     cfg.Width,
		Height:    cfg.Height,
		MinWidth:  640,
		MinHeight: 420,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind:       []interface{}{app},
	})
	if err != nil {
		return fmt.Errorf("desktop shell: %w", err)
	}
	return nil
}
