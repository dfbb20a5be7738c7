// Package engine provides the core board logic for the 2048 puzzle.
//
// The engine package implements the game mechanics including:
//   - A fixed-size square grid of power-of-two tiles
//   - Slide and merge of every line in one of four directions
//   - Score accumulation from merges
//   - Random tile spawning after every effective move
//   - Game over and victory detection
//
// Core Types:
//
// The Engine interface defines the main contract for board operations,
// implemented by GameEngine. GameState holds the grid, score and terminal
// flags, while GameConfig defines the board rules loaded from JSON or YAML
// files.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := gameEngine.Move(engine.Left)
//	grid := gameEngine.Snapshot()
//
// Game Rules:
//
// Every move compacts each row (left/right) or column (up/down) toward the
// leading edge and merges equal neighbours pairwise. A merged tile cannot
// merge again in the same move. When a move changes the grid one new tile
// (2, or 4 with a small probability) appears on a random empty cell. The game
// is over once the grid is full and no two adjacent tiles are equal.
//
// Concurrency:
//
// GameEngine performs no locking. Callers serialize every call on a given
// engine; the service package does this per session.
package engine
