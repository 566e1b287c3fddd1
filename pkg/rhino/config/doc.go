/*
Package config provides type-safe configuration extraction from
map[string]any for the rhino runtime.

# Overview

config wraps a map[string]any with typed accessors that swallow missing
keys and type mismatches by returning caller-supplied defaults. Registry
and realm setup read YAML/JSON structures through it without verbose
type assertions.

# Basic Usage

	cfg := config.New(map[string]any{
	    "drain_interval": "250ms",
	    "journal_path":   "./lifecycle.db",
	    "metrics":        true,
	})

	interval := cfg.Duration("drain_interval", time.Second) // 250ms
	journal := cfg.String("journal_path", "")               // "./lifecycle.db"
	metrics := cfg.Bool("metrics", false)                   // true
	missing := cfg.Int("max_pending", 1024)                 // 1024

# Type Coercion

Duration accepts strings ("250ms", "1h30m"), numbers (seconds), and
time.Duration. Int and Float convert between numeric types; an Int read
of a float with a fractional part returns the default rather than
truncating.

# File Loading

	cfg, err := config.FromFile("registry.yaml")
	if err != nil {
	    log.Fatal(err)
	}

FromYAML and FromJSON parse raw bytes; FromFile dispatches on the
extension.

# Thread Safety

Config is safe for concurrent reads. The wrapped map is never modified
after creation; modifying the original map externally is undefined.
*/
package config
