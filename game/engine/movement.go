package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// lineCells returns the coordinates of line i ordered from the leading edge
// of travel. Rows are lines for left/right, columns for up/down.
func lineCells(size, i int, dir Direction) []Position {
	cells := make([]Position, size)
	for k := 0; k < size; k++ {
		switch dir {
		case Left:
			cells[k] = Position{X: k, Y: i}
		case Right:
			cells[k] = Position{X: size - 1 - k, Y: i}
		case Up:
			cells[k] = Position{X: i, Y: k}
		case Down:
			cells[k] = Position{X: i, Y: size - 1 - k}
		default:
			panic(fmt.Sprintf("engine: invalid direction %q", dir))
		}
	}
	return cells
}

// slideLine compacts line toward index 0 and merges equal neighbours pairwise.
// A tile produced by a merge does not merge again. It returns the new line,
// the points gained and the number of merges.
func slideLine(line []Tile) ([]Tile, uint64, int) {
	out := make([]Tile, len(line))
	var gained uint64
	merges := 0
	n := 0
	canMerge := false

	for _, v := range line {
		if v == 0 {
			continue
		}
		if canMerge && out[n-1].CanMergeWith(v) {
			out[n-1] = v * 2
			gained += uint64(v) * 2
			merges++
			canMerge = false
			continue
		}
		out[n] = v
		n++
		canMerge = true
	}

	return out, gained, merges
}

// Slide applies the slide/merge pass for dir to every line of the grid.
// It does not spawn; it reports the points gained, merges, and whether any cell changed.
func (gs *GameState) Slide(dir Direction) (uint64, int, bool) {
	size := len(gs.Grid)
	var gained uint64
	merges := 0
	changed := false

	line := make([]Tile, size)
	for i := 0; i < size; i++ {
		cells := lineCells(size, i, dir)
		for k, p := range cells {
			line[k] = gs.Grid[p.Y][p.X]
		}

		out, g, m := slideLine(line)
		gained += g
		merges += m

		for k, p := range cells {
			if gs.Grid[p.Y][p.X] != out[k] {
				gs.Grid[p.Y][p.X] = out[k]
				changed = true
			}
		}
	}

	return gained, merges, changed
}

// CanSlide reports whether dir would change the grid, without mutating it
func (gs *GameState) CanSlide(dir Direction) bool {
	size := len(gs.Grid)
	for i := 0; i < size; i++ {
		cells := lineCells(size, i, dir)
		seenEmpty := false
		var prev Tile
		for _, p := range cells {
			v := gs.Grid[p.Y][p.X]
			if v == 0 {
				seenEmpty = true
				continue
			}
			if seenEmpty || v == prev {
				return true
			}
			prev = v
		}
	}
	return false
}

// SpawnTile places one tile on a uniformly chosen empty cell. The tile is a 4
// with probability fourChance, otherwise a 2. It returns nil when the grid is full.
func (gs *GameState) SpawnTile(rng *rand.Rand, fourChance float64) *Spawn {
	empty := EmptyCells(gs.Grid)
	if len(empty) == 0 {
		return nil
	}

	pos := empty[rng.IntN(len(empty))]
	value := Tile(2)
	if rng.Float64() < fourChance {
		value = 4
	}

	gs.Grid[pos.Y][pos.X] = value
	gs.FilledCount++
	return &Spawn{Position: pos, Value: value}
}

// ApplyMove runs one full move: slide, and on an effective move spawn one tile
// and refresh the terminal flags. Moves on a finished game are no-ops.
func (gs *GameState) ApplyMove(dir Direction, config *GameConfig, rng *rand.Rand) MoveOutcome {
	outcome := MoveOutcome{Direction: dir, GameOver: gs.GameOver, Victory: gs.Victory}
	if !dir.Valid() {
		panic(fmt.Sprintf("engine: invalid direction %q", dir))
	}
	if gs.GameOver {
		return outcome
	}

	gained, merges, changed := gs.Slide(dir)
	if !changed {
		gs.Message = config.Messages.Blocked
		return outcome
	}

	gs.Score += gained
	gs.FilledCount = CountFilled(gs.Grid)
	outcome.Effective = true
	outcome.ScoreDelta = gained
	outcome.Merges = merges
	outcome.Spawned = gs.SpawnTile(rng, config.FourProbability)

	gs.Message = ""
	if merges > 0 {
		gs.Message = fmt.Sprintf(config.Messages.Merged, merges, gained)
	}

	if !gs.Victory && config.WinningTile != 0 && MaxTile(gs.Grid) >= config.WinningTile {
		gs.Victory = true
		gs.Message = fmt.Sprintf(config.Messages.Victory, config.WinningTile)
	}

	if IsTerminal(gs.Grid) {
		gs.GameOver = true
		gs.Message = config.Messages.GameOver
	}

	outcome.GameOver = gs.GameOver
	outcome.Victory = gs.Victory
	return outcome
}

// AddMoveToHistory adds a move to the game's move history
func (gs *GameState) AddMoveToHistory(outcome MoveOutcome) {
	entry := MoveHistoryEntry{
		Action:     outcome.Direction,
		Effective:  outcome.Effective,
		ScoreDelta: outcome.ScoreDelta,
		Score:      gs.Score,
		Spawned:    outcome.Spawned,
		Timestamp:  time.Now().Unix(),
		MoveNumber: gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by new game) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
