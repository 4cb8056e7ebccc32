// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
//
// The terminal is owned by the UI, so log lines go to a size-rotated file
// rather than stdout or stderr.
//
// # Usage
//
//	closer, err := logging.Init(logging.Options{Level: "info", File: path})
//	if err != nil {
//	    // logging is disabled; the app still runs
//	}
//	defer closer.Close()
package logging
