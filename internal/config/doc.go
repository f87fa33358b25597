// Package config provides the configuration of kbdconv.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (Set)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← KBDCONV_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← kbdconv.toml or kbdconv.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Settings are addressed by dot-separated paths such as "output.dir". The
// Setting* constants name every setting kbdconv reads.
//
// # Usage
//
//	cfg := config.New(config.WithFile("kbdconv.toml"))
//	if err := cfg.Load(ctx); err != nil {
//		return err
//	}
//	dir, err := cfg.GetString(config.SettingOutputDir)
//
// # Sub-packages
//
//   - loader: Configuration file loading (TOML, YAML, environment variables)
package config
