// Package config provides board configuration management for the 2048 engine.
//
// The config package handles:
//   - Loading board configurations from JSON or YAML files
//   - Configuration validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//   - Watching the directory so edited files are reloaded
//
// Configuration Format:
//
// Each file in the configs directory defines one board:
//   - grid_size: side length of the square grid
//   - initial_tiles: tiles seeded by a new game
//   - four_probability: chance that a spawned tile is a 4 instead of a 2
//   - winning_tile: tile value that sets the victory flag (0 disables it)
//   - seed: optional seed for reproducible games
//   - messages: strings attached to merges, blocked moves, victory and game over
//
// The config ID is the file name without its extension.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("classic")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
//	// Per-file report, including boards whose winning tile is unreachable
//	results, err := manager.Validate()
//
//	// Reload files edited while the process runs
//	go manager.Watch(ctx)
package config
