package engine

import (
	"fmt"
	"math/rand/v2"
)

// Engine provides the main interface for board operations
type Engine interface {
	// Game state management
	GetState() *GameState
	NewGame() *GameState
	LoadGrid(grid [][]Tile) error
	IsOver() bool
	IsVictory() bool
	Score() uint64
	BestTile() Tile
	FilledCount() int
	Snapshot() [][]Tile

	// Movement operations
	Move(dir Direction) MoveOutcome
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent use.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    *rand.Rand
}

// NewEngine creates a new board engine with the provided configuration and starts a game
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if config.Seed != nil {
		rng = rand.New(rand.NewPCG(*config.Seed, *config.Seed^0x9e3779b97f4a7c15))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return NewEngineWithRand(config, rng)
}

// NewEngineWithRand creates an engine that draws tile positions and values from rng
func NewEngineWithRand(config *GameConfig, rng *rand.Rand) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source cannot be nil")
	}
	config = config.Clone()
	config.ApplyDefaults()

	engine := &GameEngine{
		config: config,
		rng:    rng,
	}
	engine.NewGame()

	return engine, nil
}

// NewEngineWithDefaults creates a new board engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		// DefaultConfig is always valid
		panic(err)
	}
	return engine
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// NewGame clears the board, resets score and flags, and seeds the initial tiles.
// Cumulative move history survives; the current segment is cleared.
func (e *GameEngine) NewGame() *GameState {
	var prevHistory []MoveHistoryEntry
	prevTotal := 0
	if e.state != nil {
		prevHistory = e.state.MoveHistory
		prevTotal = e.state.TotalMoves
	}

	e.state = InitGameStateFromConfig(e.config)
	if prevHistory != nil {
		e.state.MoveHistory = prevHistory
	}
	e.state.TotalMoves = prevTotal

	for i := 0; i < e.config.InitialTiles; i++ {
		e.state.SpawnTile(e.rng, e.config.FourProbability)
	}
	e.state.FilledCount = CountFilled(e.state.Grid)

	return e.state
}

// LoadGrid replaces the board with a copy of grid, keeping the score.
// Terminal flags are recomputed from the new grid.
func (e *GameEngine) LoadGrid(grid [][]Tile) error {
	if err := ValidateGrid(grid, e.config.GridSize); err != nil {
		return err
	}

	e.state.Grid = CloneGrid(grid)
	e.state.FilledCount = CountFilled(e.state.Grid)
	e.state.GameOver = IsTerminal(e.state.Grid)
	e.state.Victory = e.config.WinningTile != 0 && MaxTile(e.state.Grid) >= e.config.WinningTile
	return nil
}

// IsOver returns whether the game is over
func (e *GameEngine) IsOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the winning tile has been reached
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// Score returns the cumulative score
func (e *GameEngine) Score() uint64 {
	return e.state.Score
}

// BestTile returns the largest tile on the board
func (e *GameEngine) BestTile() Tile {
	return MaxTile(e.state.Grid)
}

// FilledCount returns the number of non-empty cells
func (e *GameEngine) FilledCount() int {
	return e.state.FilledCount
}

// Snapshot returns a read-only copy of the grid for rendering
func (e *GameEngine) Snapshot() [][]Tile {
	return CloneGrid(e.state.Grid)
}

// CheckGameOver recomputes the terminal flag from the grid
func (e *GameEngine) CheckGameOver() bool {
	e.state.GameOver = IsTerminal(e.state.Grid)
	return e.state.GameOver
}

// Move slides the board in dir. It panics when dir is not one of the four directions.
func (e *GameEngine) Move(dir Direction) MoveOutcome {
	outcome := e.state.ApplyMove(dir, e.config, e.rng)
	e.state.AddMoveToHistory(outcome)
	return outcome
}

// CanMove checks whether a move in dir would change the board
func (e *GameEngine) CanMove(dir Direction) bool {
	if e.state.GameOver || !dir.Valid() {
		return false
	}
	return e.state.CanSlide(dir)
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetConfig returns a copy of the board configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config.Clone()
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BulkMove applies moves in sequence, stopping once the game is over
func (e *GameEngine) BulkMove(moves []Direction) []MoveOutcome {
	results := make([]MoveOutcome, 0, len(moves))

	for _, dir := range moves {
		if e.IsOver() {
			break
		}
		results = append(results, e.Move(dir))
	}

	return results
}
