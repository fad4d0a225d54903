// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

/*
Package config loads and validates the server configuration with koanf.

Sources are layered, later ones winning:

 1. built-in defaults (defaultConfig)
 2. a YAML file: $CONFIG_PATH, ./config.yaml or /etc/reelcast/config.yaml
 3. environment variables listed in envMappings

Only mapped environment variables are read, so unrelated variables in the
process environment never leak into the configuration. Slice settings such
as CORS_ORIGINS accept comma-separated values.

Example config.yaml:

	catalog:
	  url: https://cdn.example.com/catalog.json
	  cache_ttl: 1m
	ranking:
	  url: https://ranker.example.com/v1/rank
	  timeout: 10s
	storage:
	  backend: badger
	  path: /data/reelcast
	refresh:
	  interval: 5m

Validate reports the first bad setting as "section.field must ...". The
*Options methods convert sections into the option structs of the packages
they configure, so those packages never import config.
*/
package config
