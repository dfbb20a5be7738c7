package strategy

import (
	"math"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// Strategy picks the next direction for a board
type Strategy interface {
	// NextMove returns a direction that changes the board, or false when none does
	NextMove(state *engine.GameState) (engine.Direction, bool)
	// Reset clears any per-game memory
	Reset()
}

// Weights scale the terms of the board evaluation
type Weights struct {
	Empty     float64 // per empty cell
	Merges    float64 // per adjacent equal pair
	Monotonic float64 // penalty for lines that rise and fall
	Corner    float64 // bonus when the best tile sits in a corner
	Score     float64 // per log2 of points gained by the move
}

// DefaultWeights work well on the classic 4x4 board
var DefaultWeights = Weights{
	Empty:     2.7,
	Merges:    1.0,
	Monotonic: 1.0,
	Corner:    1.5,
	Score:     1.0,
}

// Lookahead scores each direction by sliding a copy of the grid and averaging
// the evaluation over every cell a 2 could spawn into. It is deterministic:
// ties go to the first direction in engine.Directions.
type Lookahead struct {
	weights Weights

	// Per-game bookkeeping
	moves      int
	stuckCount int
	lastFilled int
}

// NewLookahead creates a lookahead strategy with the given weights
func NewLookahead(w Weights) *Lookahead {
	return &Lookahead{weights: w}
}

// Reset clears per-game counters
func (s *Lookahead) Reset() {
	s.moves = 0
	s.stuckCount = 0
	s.lastFilled = 0
}

// Moves returns how many directions the strategy has suggested since Reset
func (s *Lookahead) Moves() int {
	return s.moves
}

// StuckCount returns how many consecutive suggestions left the board at least as full
func (s *Lookahead) StuckCount() int {
	return s.stuckCount
}

// NextMove implements Strategy
func (s *Lookahead) NextMove(state *engine.GameState) (engine.Direction, bool) {
	if state == nil || state.GameOver {
		return "", false
	}

	filled := engine.CountFilled(state.Grid)
	if s.moves > 0 && filled >= s.lastFilled {
		s.stuckCount++
	} else {
		s.stuckCount = 0
	}
	s.lastFilled = filled

	best := engine.Direction("")
	bestValue := math.Inf(-1)

	for _, dir := range engine.Directions {
		value, ok := s.score(state.Grid, dir)
		if !ok {
			continue
		}
		if value > bestValue {
			bestValue = value
			best = dir
		}
	}

	if best == "" {
		return "", false
	}
	s.moves++
	return best, true
}

// score evaluates dir on a copy of grid
func (s *Lookahead) score(grid [][]engine.Tile, dir engine.Direction) (float64, bool) {
	trial := &engine.GameState{Grid: engine.CloneGrid(grid)}
	gained, _, changed := trial.Slide(dir)
	if !changed {
		return 0, false
	}

	moveValue := s.weights.Score * math.Log2(1+float64(gained))

	empty := engine.EmptyCells(trial.Grid)
	if len(empty) == 0 {
		return moveValue + Evaluate(trial.Grid, s.weights), true
	}

	var total float64
	for _, p := range empty {
		trial.Grid[p.Y][p.X] = 2
		total += Evaluate(trial.Grid, s.weights)
		trial.Grid[p.Y][p.X] = 0
	}
	return moveValue + total/float64(len(empty)), true
}

// Evaluate rates a grid; higher is better
func Evaluate(grid [][]engine.Tile, w Weights) float64 {
	size := len(grid)
	if size == 0 {
		return 0
	}

	empty := 0
	pairs := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := grid[y][x]
			if v == 0 {
				empty++
				continue
			}
			if x+1 < size && grid[y][x+1] == v {
				pairs++
			}
			if y+1 < size && grid[y+1][x] == v {
				pairs++
			}
		}
	}

	var mono float64
	line := make([]float64, size)
	for i := 0; i < size; i++ {
		for k := 0; k < size; k++ {
			line[k] = log2(grid[i][k])
		}
		mono += monotonicPenalty(line)
		for k := 0; k < size; k++ {
			line[k] = log2(grid[k][i])
		}
		mono += monotonicPenalty(line)
	}

	var corner float64
	best := engine.MaxTile(grid)
	last := size - 1
	if best > 0 && (grid[0][0] == best || grid[0][last] == best || grid[last][0] == best || grid[last][last] == best) {
		corner = log2(best)
	}

	return w.Empty*float64(empty) +
		w.Merges*float64(pairs) -
		w.Monotonic*mono +
		w.Corner*corner
}

// monotonicPenalty is the smaller of the total rise and total fall along line
func monotonicPenalty(line []float64) float64 {
	var up, down float64
	for k := 1; k < len(line); k++ {
		if d := line[k] - line[k-1]; d > 0 {
			up += d
		} else {
			down -= d
		}
	}
	return math.Min(up, down)
}

func log2(t engine.Tile) float64 {
	if t == 0 {
		return 0
	}
	return math.Log2(float64(t))
}
