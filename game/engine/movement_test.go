package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlideLine(t *testing.T) {
	tests := []struct {
		name   string
		line   []Tile
		want   []Tile
		gained uint64
		merges int
	}{
		{"empty", []Tile{0, 0, 0, 0}, []Tile{0, 0, 0, 0}, 0, 0},
		{"compact only", []Tile{0, 2, 0, 4}, []Tile{2, 4, 0, 0}, 0, 0},
		{"pair then other", []Tile{2, 2, 4, 0}, []Tile{4, 4, 0, 0}, 4, 1},
		{"four equal merge pairwise", []Tile{2, 2, 2, 2}, []Tile{4, 4, 0, 0}, 8, 2},
		{"three equal merge leading pair", []Tile{2, 2, 2, 0}, []Tile{4, 2, 0, 0}, 4, 1},
		{"merged tile does not merge again", []Tile{4, 2, 2, 0}, []Tile{4, 4, 0, 0}, 4, 1},
		{"gap between equals", []Tile{8, 0, 0, 8}, []Tile{16, 0, 0, 0}, 16, 1},
		{"no merges", []Tile{2, 4, 8, 16}, []Tile{2, 4, 8, 16}, 0, 0},
		{"two pairs", []Tile{4, 4, 8, 8}, []Tile{8, 16, 0, 0}, 24, 2},
		{"largest tiles do not merge", []Tile{0, MaxTileValue, MaxTileValue, 0}, []Tile{MaxTileValue, MaxTileValue, 0, 0}, 0, 0},
		{"merge up to largest tile", []Tile{MaxTileValue / 2, MaxTileValue / 2, 0, 0}, []Tile{MaxTileValue, 0, 0, 0}, uint64(MaxTileValue), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gained, merges := slideLine(tt.line)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("slideLine(%v) mismatch (-want +got):\n%s", tt.line, diff)
			}
			assert.Equal(t, tt.gained, gained)
			assert.Equal(t, tt.merges, merges)
		})
	}
}

func TestLineCells_LeadingEdge(t *testing.T) {
	tests := []struct {
		dir  Direction
		want []Position
	}{
		{Left, []Position{{0, 1}, {1, 1}, {2, 1}}},
		{Right, []Position{{2, 1}, {1, 1}, {0, 1}}},
		{Up, []Position{{1, 0}, {1, 1}, {1, 2}}},
		{Down, []Position{{1, 2}, {1, 1}, {1, 0}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.want, lineCells(3, 1, tt.dir))
		})
	}
}

func TestLineCells_InvalidDirectionPanics(t *testing.T) {
	assert.Panics(t, func() { lineCells(4, 0, Direction("diagonal")) })
}

func TestSlide_AllDirections(t *testing.T) {
	start := [][]Tile{
		{2, 0, 2, 4},
		{0, 0, 0, 0},
		{2, 0, 0, 4},
		{0, 8, 0, 0},
	}

	tests := []struct {
		dir    Direction
		want   [][]Tile
		gained uint64
	}{
		{Left, [][]Tile{
			{4, 4, 0, 0},
			{0, 0, 0, 0},
			{2, 4, 0, 0},
			{8, 0, 0, 0},
		}, 4},
		{Right, [][]Tile{
			{0, 0, 4, 4},
			{0, 0, 0, 0},
			{0, 0, 2, 4},
			{0, 0, 0, 8},
		}, 4},
		{Up, [][]Tile{
			{4, 8, 2, 8},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
		}, 12},
		{Down, [][]Tile{
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{0, 0, 0, 0},
			{4, 8, 2, 8},
		}, 12},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			gs := &GameState{Grid: CloneGrid(start)}
			gained, _, changed := gs.Slide(tt.dir)
			require.True(t, changed)
			assert.Equal(t, tt.gained, gained)
			if diff := cmp.Diff(tt.want, gs.Grid); diff != "" {
				t.Errorf("Slide(%s) mismatch (-want +got):\n%s", tt.dir, diff)
			}
		})
	}
}

func TestSlide_LinesAreIndependent(t *testing.T) {
	gs := &GameState{Grid: [][]Tile{
		{2, 0},
		{0, 2},
	}}

	_, merges, changed := gs.Slide(Left)
	require.True(t, changed)
	assert.Zero(t, merges, "tiles in different rows must not merge")
	assert.Equal(t, [][]Tile{{2, 0}, {2, 0}}, gs.Grid)
}

func TestCanSlide_MatchesSlide(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	values := []Tile{0, 0, 0, 2, 4, 8}

	for i := 0; i < 200; i++ {
		grid := NewGrid(4)
		for y := range grid {
			for x := range grid[y] {
				grid[y][x] = values[rng.IntN(len(values))]
			}
		}

		for _, dir := range Directions {
			gs := &GameState{Grid: CloneGrid(grid)}
			predicted := gs.CanSlide(dir)
			_, _, changed := gs.Slide(dir)
			require.Equal(t, changed, predicted, "grid %v dir %s", grid, dir)
		}
	}
}

func TestSpawnTile(t *testing.T) {
	t.Run("fills an empty cell with a 2", func(t *testing.T) {
		gs := &GameState{Grid: [][]Tile{{2, 4}, {0, 8}}, FilledCount: 3}
		spawn := gs.SpawnTile(rand.New(rand.NewPCG(1, 2)), 0)
		require.NotNil(t, spawn)
		assert.Equal(t, Position{X: 0, Y: 1}, spawn.Position)
		assert.Equal(t, Tile(2), spawn.Value)
		assert.Equal(t, Tile(2), gs.Grid[1][0])
		assert.Equal(t, 4, gs.FilledCount)
	})

	t.Run("always four when probability is one", func(t *testing.T) {
		gs := &GameState{Grid: NewGrid(3)}
		spawn := gs.SpawnTile(rand.New(rand.NewPCG(1, 2)), 1)
		require.NotNil(t, spawn)
		assert.Equal(t, Tile(4), spawn.Value)
	})

	t.Run("full grid spawns nothing", func(t *testing.T) {
		gs := &GameState{Grid: [][]Tile{{2, 4}, {8, 16}}, FilledCount: 4}
		assert.Nil(t, gs.SpawnTile(rand.New(rand.NewPCG(1, 2)), 0.1))
		assert.Equal(t, 4, gs.FilledCount)
	})

	t.Run("ratio close to configured probability", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(3, 5))
		fours := 0
		const draws = 10000
		for i := 0; i < draws; i++ {
			gs := &GameState{Grid: NewGrid(2)}
			if gs.SpawnTile(rng, 0.1).Value == 4 {
				fours++
			}
		}
		assert.InDelta(t, 0.1, float64(fours)/draws, 0.02)
	})
}

func TestAddMoveToHistory(t *testing.T) {
	gs := InitGameStateFromConfig(DefaultConfig())
	gs.Score = 12

	gs.AddMoveToHistory(MoveOutcome{Direction: Left, Effective: true, ScoreDelta: 4})
	gs.AddMoveToHistory(MoveOutcome{Direction: Up})

	require.Len(t, gs.MoveHistory, 2)
	assert.Equal(t, 2, gs.TotalMoves)
	assert.Equal(t, 2, gs.CurrentMovesCount)
	assert.Equal(t, 1, gs.MoveHistory[0].MoveNumber)
	assert.Equal(t, 2, gs.MoveHistory[1].MoveNumber)
	assert.Equal(t, uint64(12), gs.MoveHistory[0].Score)
	assert.False(t, gs.MoveHistory[1].Effective)
}
