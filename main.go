// rigchat - a terminal chat client with a conversation sidebar.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/jeranaias/rigchat/internal/cloud"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/logging"
	"github.com/jeranaias/rigchat/internal/session"
	"github.com/jeranaias/rigchat/internal/storage"
	"github.com/jeranaias/rigchat/internal/ui/chat"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Startup warnings shown as toasts once the UI is up.
const (
	warnMalformedHistory = "Could not load chat history. Starting a new session."
	warnBrokenConfig     = "Config file has errors. Using defaults."
	warnInvalidEnv       = "Some RIGCHAT_* environment settings are invalid. Using defaults for those."
	warnNoAPIKey         = "No API key set. Set OPENAI_API_KEY or RIGCHAT_API_KEY."
)

func main() {
	os.Exit(run())
}

func run() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "rigchat needs an interactive terminal")
		return 1
	}

	// Environment first so .env values feed the config overrides.
	dotEnvErr := config.LoadDotEnv()

	cfg, cfgErr := config.Load()

	closer, err := logging.Init(logging.Options{
		Level: cfg.Logging.Level,
		File:  cfg.LogFile(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer closer.Close()

	log.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Str("built", BuildDate).
		Msg("rigchat starting")
	log.Debug().Stringer("config", cfg).Msg("configuration")

	var warnings []string
	if dotEnvErr != nil {
		log.Warn().Err(dotEnvErr).Msg(".env not loaded")
	}
	switch {
	case errors.Is(cfgErr, config.ErrInvalidEnvironment):
		log.Warn().Err(cfgErr).Msg("environment overrides rejected, using defaults for those")
		warnings = append(warnings, warnInvalidEnv)
	case cfgErr != nil:
		log.Warn().Err(cfgErr).Msg("config not loaded, using defaults")
		warnings = append(warnings, warnBrokenConfig)
	}

	// Conversations
	store := session.NewStore(storage.NewHistoryFile(cfg.HistoryPath()))
	if err := store.Open(); err != nil {
		log.Warn().Err(err).Msg("chat history not loaded")
		warnings = append(warnings, warnMalformedHistory)
	}

	// Completion client
	client := cloud.NewClient(cfg.Completion.APIKey).
		WithBaseURL(cfg.Completion.BaseURL).
		WithModel(cfg.Completion.Model).
		WithTimeout(cfg.Timeout()).
		WithRateLimit(cfg.Completion.RequestsPerMinute)
	if !client.IsConfigured() {
		warnings = append(warnings, warnNoAPIKey)
	}
	log.Info().
		Str("base_url", cfg.Completion.BaseURL).
		Str("model", client.Model()).
		Str("api_key", client.APIKeyMasked()).
		Msg("completion client ready")

	m := chat.New(store, client, chat.Options{
		Theme:          styles.NewTheme(cfg.UI.Theme),
		ModelName:      client.Model(),
		SidebarWidth:   cfg.UI.SidebarWidth,
		Markdown:       cfg.UI.Markdown,
		ExportDir:      cfg.ExportDir(),
		StartupWarning: strings.Join(warnings, " "),
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse wheel scrolling
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watchConfig(ctx, p)

	_, runErr := p.Run()

	// The UI saves on quit; this covers every other way out.
	if err := store.Flush(); err != nil {
		log.Error().Err(err).Msg("final save failed")
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("program failed")
		fmt.Fprintf(os.Stderr, "Error running rigchat: %v\n", runErr)
		return 1
	}
	log.Info().Msg("rigchat exiting")
	return 0
}

// watchConfig posts a ConfigReloadedMsg whenever the config file changes.
// A first run gets a default config file to edit.
func watchConfig(ctx context.Context, p *tea.Program) {
	path, err := config.ConfigPath()
	if err != nil {
		log.Debug().Err(err).Msg("config reload disabled")
		return
	}

	if created, err := config.EnsureFile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not write default config")
	} else if created {
		log.Info().Str("path", path).Msg("wrote default config")
	}

	w, err := config.NewWatcher(path, config.DefaultReloadDebounce, func(cfg *config.Config, err error) {
		p.Send(chat.ConfigReloadedMsg{Cfg: cfg, Err: err})
	})
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("config reload disabled")
		return
	}
	go w.Run(ctx)
}
