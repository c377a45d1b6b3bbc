package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jaki95/music-freshener/config"
	"github.com/jaki95/music-freshener/internal/history"
	"github.com/jaki95/music-freshener/internal/library"
	"github.com/jaki95/music-freshener/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Logs would corrupt the alternate screen, keep only errors on stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	if cfg.Library == "" {
		if path, err := library.DefaultLibraryPath(); err == nil {
			cfg.Library = path
		}
	}
	if cfg.History.Path == "" {
		if path, err := history.DefaultPath(); err == nil {
			cfg.History.Path = path
		}
	}

	if err := tui.Run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
