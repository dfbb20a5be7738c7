package service

import (
	"errors"
	"time"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// Bulk move stop codes
const (
	StopGameOver = "game_over"
	StopBlocked  = "blocked"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool               `json:"success"`
	Outcome   engine.MoveOutcome `json:"outcome"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	RequestedMoves int               `json:"requested_moves"`
	MovesExecuted  int               `json:"moves_executed"`
	EffectiveMoves int               `json:"effective_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // game_over|blocked
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	StartScore uint64 `json:"start_score"`
	EndScore   uint64 `json:"end_score"`
	ScoreDelta uint64 `json:"score_delta"`

	// Per-step trace for this call only
	Steps []StepInfo `json:"steps,omitempty"`

	GameOver      bool               `json:"game_over"`
	Victory       bool               `json:"victory"`
	BestTile      engine.Tile        `json:"best_tile"`
	Message       string             `json:"message,omitempty"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move in a bulk call
type StepInfo struct {
	Idx        int              `json:"idx"`
	Dir        engine.Direction `json:"dir"`
	Effective  bool             `json:"effective"`
	ScoreDelta uint64           `json:"score_delta"`
	Merges     int              `json:"merges,omitempty"`
	Spawned    *engine.Spawn    `json:"spawned,omitempty"`
	ScoreAfter uint64           `json:"score_after"`
	Victory    bool             `json:"victory,omitempty"`
}

// Suggestion is the advisor's pick for a session's next move
type Suggestion struct {
	Direction     engine.Direction   `json:"direction,omitempty"`
	Available     bool               `json:"available"`
	PossibleMoves []engine.Direction `json:"possible_moves,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "new_game", "move", "blocked", "merge", "spawn", "victory", "game_over"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename        string      `json:"filename"`
	ConfigID        string      `json:"config_id"` // The identifier to use for session creation
	Name            string      `json:"name"`      // Display name
	Description     string      `json:"description"`
	GridSize        int         `json:"grid_size"`
	InitialTiles    int         `json:"initial_tiles"`
	FourProbability float64     `json:"four_probability"`
	WinningTile     engine.Tile `json:"winning_tile"`
}
