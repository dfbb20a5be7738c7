package strategy

import (
	"context"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Stop reasons reported by Play
const (
	StopGameOver = "game_over"
	StopVictory  = "victory"
	StopMaxMoves = "max_moves"
	StopNoMove   = "no_move"
	StopCanceled = "canceled"
	StopStuck    = "stuck"
)

// StuckReporter is implemented by strategies that track how long the board
// has gone without getting emptier
type StuckReporter interface {
	StuckCount() int
}

// PlayResult summarizes one automated game
type PlayResult struct {
	Moves         int         `json:"moves"`
	Score         uint64      `json:"score"`
	BestTile      engine.Tile `json:"best_tile"`
	GameOver      bool        `json:"game_over"`
	Victory       bool        `json:"victory"`
	StoppedReason string      `json:"stopped_reason"`
}

// PlayOptions bounds an automated game
type PlayOptions struct {
	MaxMoves      int  // 0 means no limit
	StopOnVictory bool // stop as soon as the winning tile appears
	MaxStuck      int  // stop once a StuckReporter strategy reports this many; 0 means no limit
}

// Play drives eng with s until the game ends, a limit is reached or ctx is
// cancelled. It does not start a new game; callers reset the engine first.
func Play(ctx context.Context, eng engine.Engine, s Strategy, opts PlayOptions) *PlayResult {
	s.Reset()
	result := &PlayResult{}

	for {
		if ctx.Err() != nil {
			result.StoppedReason = StopCanceled
			break
		}
		if eng.IsOver() {
			result.StoppedReason = StopGameOver
			break
		}
		if opts.StopOnVictory && eng.IsVictory() {
			result.StoppedReason = StopVictory
			break
		}
		if opts.MaxMoves > 0 && result.Moves >= opts.MaxMoves {
			result.StoppedReason = StopMaxMoves
			break
		}

		dir, ok := s.NextMove(eng.GetState())
		if !ok {
			result.StoppedReason = StopNoMove
			break
		}
		if r, isReporter := s.(StuckReporter); isReporter && opts.MaxStuck > 0 && r.StuckCount() >= opts.MaxStuck {
			result.StoppedReason = StopStuck
			break
		}
		eng.Move(dir)
		result.Moves++
	}

	result.Score = eng.Score()
	result.BestTile = eng.BestTile()
	result.GameOver = eng.IsOver()
	result.Victory = eng.IsVictory()
	return result
}
