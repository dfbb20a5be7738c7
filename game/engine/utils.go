package engine

import "fmt"

// NewGrid allocates an empty size x size grid
func NewGrid(size int) [][]Tile {
	grid := make([][]Tile, size)
	for i := range grid {
		grid[i] = make([]Tile, size)
	}
	return grid
}

// CloneGrid returns a deep copy of grid
func CloneGrid(grid [][]Tile) [][]Tile {
	out := make([][]Tile, len(grid))
	for y, row := range grid {
		out[y] = append([]Tile(nil), row...)
	}
	return out
}

// GridsEqual reports whether two grids hold the same values
func GridsEqual(a, b [][]Tile) bool {
	if len(a) != len(b) {
		return false
	}
	for y := range a {
		if len(a[y]) != len(b[y]) {
			return false
		}
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				return false
			}
		}
	}
	return true
}

// CountFilled counts the non-empty cells in the grid
func CountFilled(grid [][]Tile) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell != 0 {
				count++
			}
		}
	}
	return count
}

// EmptyCells lists the empty cells in row-major order
func EmptyCells(grid [][]Tile) []Position {
	var cells []Position
	for y, row := range grid {
		for x, cell := range row {
			if cell == 0 {
				cells = append(cells, Position{X: x, Y: y})
			}
		}
	}
	return cells
}

// MaxTile returns the largest value on the grid, 0 when the grid is empty
func MaxTile(grid [][]Tile) Tile {
	var best Tile
	for _, row := range grid {
		for _, cell := range row {
			if cell > best {
				best = cell
			}
		}
	}
	return best
}

// HasAdjacentPair reports whether two horizontally or vertically adjacent cells hold the same tile
func HasAdjacentPair(grid [][]Tile) bool {
	for y, row := range grid {
		for x, cell := range row {
			if cell == 0 {
				continue
			}
			if x+1 < len(row) && cell.CanMergeWith(row[x+1]) {
				return true
			}
			if y+1 < len(grid) && x < len(grid[y+1]) && cell.CanMergeWith(grid[y+1][x]) {
				return true
			}
		}
	}
	return false
}

// IsTerminal reports whether no move can change the grid:
// every cell is filled and no adjacent pair can merge.
func IsTerminal(grid [][]Tile) bool {
	for _, row := range grid {
		for _, cell := range row {
			if cell == 0 {
				return false
			}
		}
	}
	return !HasAdjacentPair(grid)
}

// ValidateGrid checks that grid is size x size and every non-zero value is a power of two >= 2
func ValidateGrid(grid [][]Tile, size int) error {
	if len(grid) != size {
		return fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidGrid, size, len(grid))
	}
	for y, row := range grid {
		if len(row) != size {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidGrid, y, len(row), size)
		}
		for x, cell := range row {
			if cell != 0 && !cell.IsPowerOfTwo() {
				return fmt.Errorf("%w: cell (%d,%d) holds %d, not a power of two", ErrInvalidGrid, x, y, cell)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the state. Spawn records are shared; they are never mutated.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.Grid = CloneGrid(gs.Grid)
	c.MoveHistory = append(make([]MoveHistoryEntry, 0, len(gs.MoveHistory)), gs.MoveHistory...)
	c.CurrentMoves = append(make([]MoveHistoryEntry, 0, len(gs.CurrentMoves)), gs.CurrentMoves...)
	if gs.PossibleMoves != nil {
		c.PossibleMoves = append([]Direction(nil), gs.PossibleMoves...)
	}
	return &c
}
