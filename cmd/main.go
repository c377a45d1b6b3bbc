package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	ansi "github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/music-freshener/config"
	"github.com/jaki95/music-freshener/internal/domain"
	"github.com/jaki95/music-freshener/internal/freshen"
	"github.com/jaki95/music-freshener/internal/history"
	"github.com/jaki95/music-freshener/internal/library"
	"github.com/jaki95/music-freshener/internal/partition"
	"github.com/jaki95/music-freshener/internal/progress"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to a YAML config file")
	libraryPath := flag.String("library", "", "Path to the library export XML (default: standard locations)")
	target := flag.String("target", "", "Device mount path (may also be given as a positional argument)")
	playlist := flag.String("playlist", "", "Limit additions to one playlist")
	ratio := flag.Float64("ratio", 0, "Fraction of device tracks to replace, in [0, 1]")
	minFree := flag.Int64("minfree", 0, "Free space to leave on the device, in MB")
	maxSize := flag.Int64("maxsize", 0, "Cap on the total size of music on the device, in MB (0 = no cap)")
	initialFill := flag.Int("initial-fill", 0, "Tracks to copy onto an empty device")
	dryRun := flag.Bool("dry-run", false, "Compute and print the plan without touching the device")
	partitionMB := flag.Int64("partition", 0, "Print the playlist split into chunks of this many MB, then exit")
	logLevel := flag.Int("log-level", int(slog.LevelWarn), "Log level (slog numeric levels, -4=debug 0=info 4=warn 8=error)")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Flags set on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "library":
			cfg.Library = *libraryPath
		case "target":
			cfg.Target = *target
		case "playlist":
			cfg.Playlist = *playlist
		case "ratio":
			cfg.Ratio = *ratio
		case "minfree":
			cfg.MinFreeMB = *minFree
		case "maxsize":
			cfg.MaxSizeMB = *maxSize
		case "initial-fill":
			cfg.InitialFill = *initialFill
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if flag.NArg() > 0 && cfg.Target == "" {
		cfg.Target = flag.Arg(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := fillDefaults(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *partitionMB > 0 {
		if err := printPartition(cfg, *partitionMB); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := runPass(ctx, cfg, *dryRun)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	report(cfg, res, *dryRun)
	if res.Summary.Err() != nil || res.Summary.Canceled {
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// fillDefaults resolves the library export and history paths when neither the
// config file nor the flags set them.
func fillDefaults(cfg *config.Config) error {
	if cfg.Library == "" {
		path, err := library.DefaultLibraryPath()
		if err != nil {
			return fmt.Errorf("no library export found, pass -library: %w", err)
		}
		cfg.Library = path
	}
	if cfg.History.Path == "" {
		path, err := history.DefaultPath()
		if err != nil {
			return err
		}
		cfg.History.Path = path
	}
	return nil
}

// runPass executes one freshening pass with a terminal progress bar attached.
func runPass(ctx context.Context, cfg *config.Config, dryRun bool) (*freshen.RunResult, error) {
	tracker := progress.NewTracker()

	var bar *progressbar.ProgressBar
	tracker.AddListener(func(e progress.Event) {
		if e.Total == 0 {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(
				e.Total,
				progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetTheme(progressbar.ThemeASCII),
				progressbar.OptionFullWidth(),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Freshening device...[reset]"),
			)
		}
		_ = bar.Set(e.Index)
	})

	res, err := freshen.New(cfg, tracker, dryRun).Run(ctx)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	return res, err
}

func report(cfg *config.Config, res *freshen.RunResult, dryRun bool) {
	if len(res.Missing) > 0 {
		fmt.Printf("Warning: %d library tracks point at files that no longer exist\n", len(res.Missing))
	}

	if dryRun {
		fmt.Printf("Dry run: would remove %d and add %d of %d tracks on %s\n",
			len(res.Plan.Removals), len(res.Plan.Additions), res.Plan.DeviceCount, cfg.Target)
		for _, r := range res.Plan.Removals {
			fmt.Printf("  - %s\n", r.Path)
		}
		for _, a := range res.Plan.Additions {
			fmt.Printf("  + %s - %s\n", a.Artist, a.Title)
		}
		return
	}

	if res.Summary.Canceled {
		fmt.Println("Canceled.")
		return
	}
	if err := res.Summary.Err(); err != nil {
		fmt.Printf("Finished with errors: %v\n", err)
		for _, f := range res.Summary.Failed() {
			fmt.Printf("  %s %s: %v\n", f.Op, f.Path, f.Err)
		}
		return
	}
	fmt.Printf("Removed %d and added %d tracks on %s\n",
		len(res.Plan.Removals), len(res.Plan.Additions), cfg.Target)
}

// printPartition splits the selected tracks into size-limited chunks and
// prints them, for copying a large playlist across several devices.
func printPartition(cfg *config.Config, limitMB int64) error {
	lib, err := library.Load(cfg.Library)
	if err != nil {
		return err
	}

	var scoped []*domain.Track
	if cfg.Playlist != "" {
		scoped, err = lib.PlaylistTracks(cfg.Playlist)
		if err != nil {
			return err
		}
	} else {
		scoped = lib.AllTracks()
	}

	chunks, err := partition.Chunks(scoped, limitMB*(1<<20), partition.DefaultBlockSize)
	if err != nil {
		return err
	}

	for i, chunk := range chunks {
		var bytes int64
		for _, t := range chunk {
			bytes += t.SizeBytes
		}
		fmt.Printf("Chunk %d: %d tracks, %.1f MB\n", i+1, len(chunk), float64(bytes)/(1<<20))
		for _, t := range chunk {
			fmt.Printf("  %s - %s\n", t.Artist, t.Title)
		}
	}
	return nil
}
