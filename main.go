package main

import (
	"embed"
	"log"
	"os"

	"github.com/chazu/conduit/pkg/config"
	"github.com/chazu/conduit/pkg/mesh"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app := NewApp()
	// CONDUIT_CONFIG names a TOML or YAML file with the starting parameters.
	if path := os.Getenv("CONDUIT_CONFIG"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatal(err)
		}
		cfg.Winding = mesh.CounterClockwise.String()
		if app, err = NewAppWithConfig(cfg); err != nil {
			log.Fatal(err)
		}
	}

	err := wails.Run(&options.App{
		Title:  "conduit",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
