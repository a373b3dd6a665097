package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	speech "cloud.google.com/go/speech/apiv1"
	"github.com/joho/godotenv"

	"github.com/petems/speech-search/internal/audio"
	"github.com/petems/speech-search/internal/config"
	"github.com/petems/speech-search/internal/dispatch"
	"github.com/petems/speech-search/internal/logging"
	"github.com/petems/speech-search/internal/search"
	"github.com/petems/speech-search/internal/session"
	"github.com/petems/speech-search/internal/speak"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
)

func main() {
	useBrowser := flag.Bool("browser", false, "open results in the default web browser instead of speaking them")
	listDevices := flag.Bool("list-devices", false, "list audio input devices and exit")
	device := flag.String("device", "", "audio input device name (default device if empty)")
	flag.Parse()

	// Credentials (CSE key, GOOGLE_APPLICATION_CREDENTIALS) may live in .env
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	if *listDevices {
		devices, err := audio.ListDevices()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list devices")
		}
		for _, d := range devices {
			marker := " "
			if d.Default {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, d.Name)
		}
		return
	}

	if *device != "" {
		cfg.Audio.DeviceID = *device
	}
	if *useBrowser {
		cfg.Search.UseBrowser = true
	}
	if cfg.Search.APIKey == "" || cfg.Search.EngineID == "" {
		log.Info().Msg("Search credentials not configured, opening results in the browser")
		cfg.Search.UseBrowser = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, err := audio.New(cfg.Audio, cfg.SampleRate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open audio device")
	}
	defer source.Close()

	speechClient, err := speech.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create speech client")
	}
	defer speechClient.Close()

	var searcher dispatch.Searcher
	if cfg.Search.UseBrowser {
		searcher = search.NewBrowser(log)
	} else {
		searcher, err = search.NewProvider(ctx, cfg.Search.APIKey, cfg.Search.EngineID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create search provider")
		}
	}

	var speaker dispatch.Speaker
	switch cfg.Speak.Backend {
	case "google":
		g, err := speak.NewGoogle(ctx, cfg.Language, cfg.Speak.Voice)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create speech output")
		}
		defer g.Close()
		speaker = g
	default:
		if cfg.Speak.Command != "" {
			speaker = speak.NewCommand(cfg.Speak.Command)
		} else {
			speaker = speak.DefaultCommand()
		}
	}

	sess := session.New(session.Config{
		Source:  source,
		Speech:  speechClient,
		Search:  searcher,
		Speaker: speaker,
		Config:  cfg,
		Logger:  log,
	})

	// An interrupt cancels the in-flight stream; the session treats the
	// resulting cancellation as a normal shutdown.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	log.Info().Str("version", Version).Msg("Listening, say \"exit\" or \"quit\" to stop")
	if err := sess.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Session failed")
	}
}
