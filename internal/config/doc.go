// Package config provides layered configuration for rubytext.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command line overrides  │  ← Highest priority (Set)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← RUBYTEXT_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, YAML, or JSON
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Usage:
//
//	cfg := config.New(config.WithFile("rubytext.toml"))
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	rules := cfg.Kinsoku().Rules()
//	width := cfg.Ruler().MaxWidth
//
// The typed section accessors fall back to defaults on type errors and
// record the problem; callers can inspect ConfigErrors after loading.
package config
