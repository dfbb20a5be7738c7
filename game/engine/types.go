package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Tile is the magnitude stored in a grid cell. Zero means empty.
type Tile uint32

// Direction is one of the four slide directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"

	// Validation constants
	MinGridSize         = 2
	MaxGridSize         = 16
	DefaultGridSize     = 4
	DefaultInitialTiles = 2
	DefaultFourChance   = 0.1
	DefaultWinningTile  = Tile(2048)
	MaxBulkMoves        = 50

	// MaxTileValue is the largest power of two a Tile holds. Two of them never merge.
	MaxTileValue = Tile(1 << 31)
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidGrid      = errors.New("invalid grid")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection converts user input into a Direction (case-insensitive)
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// IsPowerOfTwo reports whether t is a legal non-empty tile value
func (t Tile) IsPowerOfTwo() bool {
	return t >= 2 && t&(t-1) == 0
}

// CanMergeWith reports whether t and other combine into a single tile
func (t Tile) CanMergeWith(other Tile) bool {
	return t != 0 && t == other && t < MaxTileValue
}

// Position represents x,y coordinates; X is the column, Y the row
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Spawn records a tile placed by the engine
type Spawn struct {
	Position Position `json:"position"`
	Value    Tile     `json:"value"`
}

// GameState represents the complete board state of one session
type GameState struct {
	Grid        [][]Tile `json:"grid"`
	Size        int      `json:"size"`
	Score       uint64   `json:"score"`
	FilledCount int      `json:"filled_count"`
	GameOver    bool     `json:"game_over"`
	Victory     bool     `json:"victory"`
	Message     string   `json:"message"`
	ConfigName  string   `json:"config_name"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last new game. It mirrors MoveHistory
	// entries but gets cleared by NewGame while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper views (not required for core game logic)
	BestTile      Tile        `json:"best_tile,omitempty"`
	PossibleMoves []Direction `json:"possible_moves,omitempty"`
}

// MoveOutcome describes the effect of a single move
type MoveOutcome struct {
	Direction  Direction `json:"direction"`
	Effective  bool      `json:"effective"`
	ScoreDelta uint64    `json:"score_delta"`
	Merges     int       `json:"merges"`
	Spawned    *Spawn    `json:"spawned,omitempty"`
	GameOver   bool      `json:"game_over"`
	Victory    bool      `json:"victory"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action     Direction `json:"action"`
	Effective  bool      `json:"effective"`
	ScoreDelta uint64    `json:"score_delta"`
	Score      uint64    `json:"score"`
	Spawned    *Spawn    `json:"spawned,omitempty"`
	Timestamp  int64     `json:"timestamp"`
	MoveNumber int       `json:"move_number"`
}
