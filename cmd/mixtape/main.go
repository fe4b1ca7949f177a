// Package main provides the mixtape CLI entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/nabeo104/mixtape/internal/app/parser"
	"github.com/nabeo104/mixtape/internal/app/pipeline"
	"github.com/nabeo104/mixtape/internal/domain/entry"
	"github.com/nabeo104/mixtape/internal/infra/config"
	"github.com/nabeo104/mixtape/internal/infra/lastfm"
	"github.com/nabeo104/mixtape/internal/infra/logger"
	"github.com/nabeo104/mixtape/internal/infra/pacer"
	"github.com/nabeo104/mixtape/internal/infra/spotify"
)

var (
	app        = kingpin.New("mixtape", "Resolve playlist-directive text into canonical track IDs")
	configPath = app.Flag("config", "Config file path").Default("config.yaml").String()

	resolveCmd  = app.Command("resolve", "Resolve playlist text and print one track ID per line")
	resolveFile = resolveCmd.Arg("file", "Playlist file, or '-' for stdin").Default("-").String()

	inspectCmd  = app.Command("inspect", "Parse playlist text and show the classified entries without resolving")
	inspectFile = inspectCmd.Arg("file", "Playlist file, or '-' for stdin").Default("-").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch command {
	case resolveCmd.FullCommand():
		resolve(cfg, *resolveFile)
	case inspectCmd.FullCommand():
		inspect(*inspectFile)
	}
}

func resolve(cfg *config.Config, file string) {
	text, err := readInput(file)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to read playlist text")
	}

	ctx := context.Background()
	pace := pacer.NewFixed(cfg.PacingDelay())

	cat, err := spotify.New(ctx, spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RefreshToken: cfg.Spotify.RefreshToken,
		SearchLimit:  cfg.Spotify.SearchLimit,
	}, pace)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create catalog client")
	}

	var counts pipeline.Playcounter
	if cfg.LastFM.APIKey != "" {
		lfm, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFM.APIKey}, pace)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to create last.fm client")
		}
		counts = lfm
	}

	out := pipeline.New(cat, counts).Run(ctx, text)
	if out != "" {
		fmt.Println(out)
	}
}

func inspect(file string) {
	text, err := readInput(file)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to read playlist text")
	}

	entries, settings := parser.Parse(text)
	fmt.Printf("settings: ordering=%s grouping=%s dedup=%t\n",
		settings.Ordering, settings.Grouping, settings.Deduplicate)
	for _, e := range entries.Items() {
		switch v := e.(type) {
		case *entry.Album:
			fmt.Printf("album  %-40q limit=%s\n", v.OriginalText(), formatLimit(v.Limit()))
		case *entry.Artist:
			fmt.Printf("artist %-40q limit=%s\n", v.OriginalText(), formatLimit(v.Limit()))
		default:
			fmt.Printf("track  %-40q\n", e.OriginalText())
		}
	}
}

func formatLimit(limit int) string {
	if limit == 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", limit)
}

func readInput(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
