// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

// Package logging owns the process-wide zerolog logger.
//
// main calls Init once with the logging section of the configuration; every
// other package receives a zerolog.Logger by value and derives a child with
// a component field:
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//	engineLogger := logging.Component("feed")
//
// HTTP handlers log through Ctx, which attaches the request id that the API
// middleware stored in the request context. Composition cycles attach a
// short correlation id the same way.
//
// The supervision tree speaks log/slog; NewSlogLogger adapts a zerolog
// logger for it so supervisor events land in the same stream.
//
// Always finish an event with Msg or Send; an unfinished event is dropped.
package logging
