// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for rigchat.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, validation, and an optional file watcher for live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CompletionConfig: Endpoint, model, credentials and request limits
//   - StorageConfig: Location of the chat history file
//   - UIConfig: Theme and layout settings
//   - LoggingConfig: Log level and log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (OPENAI_API_KEY, RIGCHAT_*)
//   - A .env file in the working directory
//   - ~/.rigchat/config.toml (or the file named by RIGCHAT_CONFIG)
//   - Built-in defaults
//
// # Usage
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err != nil {
//	    // cfg still holds usable defaults
//	}
//	history := cfg.HistoryPath()
package config
