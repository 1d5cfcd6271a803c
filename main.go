package main

import (
	"context"
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	apiapp "wikitrans/internal/api/app"
	"wikitrans/internal/bootstrap"
	"wikitrans/internal/cli"
)

//go:embed all:frontend/dist
var assets embed.FS

var version = "dev"

func main() {
	cli.Version = version
	root := cli.CreateRootCommand(cli.NewFlags(), runDesktop)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// runDesktop opens the editor window on top of the wired services.
func runDesktop(ctx context.Context, svc *bootstrap.Services) error {
	app := NewApp(svc)
	vm := svc.NewEditor()

	// API bindings
	editorAPI := apiapp.NewEditorAPI(vm, svc.Session)
	historyAPI := apiapp.NewHistoryAPI(svc.Journal)
	importAPI := apiapp.NewImportAPI(svc.Importer, vm)
	exportAPI := apiapp.NewExportAPI(svc.Exporter, vm)

	return wails.Run(&options.App{
		Title:  "wikitrans",
		Width:  1024,
		Height: 768,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind: []interface{}{
			app,
			editorAPI,
			historyAPI,
			importAPI,
			exportAPI,
		},
	})
}
