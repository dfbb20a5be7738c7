package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *GameConfig {
	seed := uint64(42)
	return &GameConfig{
		Name:            "Test Config",
		Description:     "Test configuration for engine tests",
		GridSize:        4,
		InitialTiles:    2,
		FourProbability: 0.1,
		WinningTile:     2048,
		Seed:            &seed,
	}
}

func createTestEngine(t *testing.T, mutate func(*GameConfig)) *GameEngine {
	t.Helper()
	config := createTestConfig()
	if mutate != nil {
		mutate(config)
	}
	e, err := NewEngine(config)
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	e := createTestEngine(t, nil)

	state := e.GetState()
	assert.Equal(t, 4, state.Size)
	assert.Len(t, state.Grid, 4)
	assert.Equal(t, 2, e.FilledCount())
	assert.Equal(t, 2, CountFilled(state.Grid))
	assert.Zero(t, e.Score())
	assert.False(t, e.IsOver())
	assert.Equal(t, "Test Config", state.ConfigName)
	assert.NotEmpty(t, state.Message, "welcome message should come from defaults")

	for _, row := range state.Grid {
		for _, v := range row {
			if v != 0 {
				assert.Contains(t, []Tile{2, 4}, v)
			}
		}
	}
}

func TestNewEngine_OwnsItsConfig(t *testing.T) {
	config := createTestConfig()
	seed := uint64(7)
	config.Seed = &seed

	e, err := NewEngine(config)
	require.NoError(t, err)

	config.GridSize = 8
	config.InitialTiles = 5
	*config.Seed = 99
	e.GetConfig().WinningTile = 4

	e.NewGame()
	assert.Len(t, e.GetState().Grid, 4)
	assert.Equal(t, 2, e.FilledCount())
	assert.Equal(t, uint64(7), *e.GetConfig().Seed)
	assert.NotEqual(t, Tile(4), e.GetConfig().WinningTile)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(&GameConfig{Name: "bad", GridSize: 1, InitialTiles: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewEngineWithRand(createTestConfig(), nil)
	require.Error(t, err)
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.Equal(t, DefaultGridSize, e.GetState().Size)
	assert.Equal(t, DefaultInitialTiles, e.FilledCount())
	assert.Equal(t, "classic", e.GetConfig().Name)
}

func TestNewEngine_SeedIsDeterministic(t *testing.T) {
	a := createTestEngine(t, nil)
	b := createTestEngine(t, nil)
	for _, dir := range []Direction{Left, Up, Right, Down, Left, Left, Up} {
		a.Move(dir)
		b.Move(dir)
	}
	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Errorf("seeded engines diverged (-a +b):\n%s", diff)
	}
	assert.Equal(t, a.Score(), b.Score())
}

func TestNewGame_ResetsState(t *testing.T) {
	e := createTestEngine(t, func(c *GameConfig) { c.InitialTiles = 3 })

	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{4, 2, 4, 2},
	}))
	e.GetState().Score = 1234
	require.True(t, e.IsOver())
	e.GetState().AddMoveToHistory(MoveOutcome{Direction: Left})

	state := e.NewGame()

	assert.Zero(t, state.Score)
	assert.False(t, state.GameOver)
	assert.False(t, state.Victory)
	assert.Equal(t, 3, state.FilledCount)
	assert.Equal(t, 3, CountFilled(state.Grid))
	assert.Len(t, state.MoveHistory, 1, "cumulative history survives a new game")
	assert.Equal(t, 1, state.TotalMoves)
	assert.Empty(t, state.CurrentMoves)
	assert.Zero(t, state.CurrentMovesCount)
}

func TestMove_PairThenOther(t *testing.T) {
	e := createTestEngine(t, nil)
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 2, 4, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	outcome := e.Move(Left)

	require.True(t, outcome.Effective)
	assert.Equal(t, uint64(4), outcome.ScoreDelta)
	assert.Equal(t, uint64(4), e.Score())
	assert.Equal(t, 1, outcome.Merges)
	grid := e.Snapshot()
	assert.Equal(t, Tile(4), grid[0][0])
	assert.Equal(t, Tile(4), grid[0][1])
	require.NotNil(t, outcome.Spawned)
	spawned := outcome.Spawned.Position
	for x := 2; x < 4; x++ {
		if spawned.Y == 0 && spawned.X == x {
			continue
		}
		assert.Zero(t, grid[0][x])
	}
}

func TestMove_NoTripleMerge(t *testing.T) {
	e := createTestEngine(t, nil)
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 2, 2, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	outcome := e.Move(Left)

	require.True(t, outcome.Effective)
	assert.Equal(t, uint64(8), outcome.ScoreDelta)
	assert.Equal(t, 2, outcome.Merges)
	grid := e.Snapshot()
	assert.Equal(t, []Tile{4, 4}, grid[0][:2])
}

func TestMove_NoOpIsIdempotent(t *testing.T) {
	e := createTestEngine(t, nil)
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 4, 0, 0},
		{8, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))
	e.GetState().Score = 16
	before := e.Snapshot()

	for i := 0; i < 2; i++ {
		outcome := e.Move(Left)
		assert.False(t, outcome.Effective)
		assert.Nil(t, outcome.Spawned)
		assert.Zero(t, outcome.ScoreDelta)
		assert.Equal(t, uint64(16), e.Score())
		assert.Equal(t, 3, e.FilledCount())
		if diff := cmp.Diff(before, e.Snapshot()); diff != "" {
			t.Fatalf("no-op move changed the grid (-before +after):\n%s", diff)
		}
	}
	assert.Equal(t, 2, e.GetState().TotalMoves, "no-op moves are still recorded")
}

func TestMove_SpawnInvariant(t *testing.T) {
	e := createTestEngine(t, nil)
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 2, 0, 4},
		{4, 0, 4, 0},
		{0, 0, 0, 0},
		{8, 8, 8, 0},
	}))
	filledBefore := e.FilledCount()

	outcome := e.Move(Left)

	require.True(t, outcome.Effective)
	require.NotNil(t, outcome.Spawned)
	assert.Equal(t, 3, outcome.Merges)
	assert.Equal(t, filledBefore-outcome.Merges+1, e.FilledCount())
	assert.Equal(t, CountFilled(e.Snapshot()), e.FilledCount())
}

func TestMove_TriggersGameOver(t *testing.T) {
	e := createTestEngine(t, func(c *GameConfig) { c.FourProbability = 0 })
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{0, 8, 16, 32},
	}))
	require.False(t, e.IsOver())

	outcome := e.Move(Left)

	require.True(t, outcome.Effective)
	require.NotNil(t, outcome.Spawned)
	assert.Equal(t, Position{X: 3, Y: 3}, outcome.Spawned.Position)
	assert.True(t, outcome.GameOver)
	assert.True(t, e.IsOver())
	assert.Equal(t, e.GetConfig().Messages.GameOver, e.GetState().Message)
	assert.Empty(t, e.GetPossibleMoves())

	before := e.Snapshot()
	score := e.Score()
	for _, dir := range Directions {
		after := e.Move(dir)
		assert.False(t, after.Effective, "move %s after game over", dir)
		assert.Equal(t, score, e.Score())
		assert.Equal(t, before, e.Snapshot())
	}
}

func TestMove_Victory(t *testing.T) {
	e := createTestEngine(t, func(c *GameConfig) { c.WinningTile = 16 })
	require.NoError(t, e.LoadGrid([][]Tile{
		{8, 8, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	outcome := e.Move(Left)

	assert.True(t, outcome.Victory)
	assert.True(t, e.IsVictory())
	assert.False(t, e.IsOver(), "play continues after victory")
	assert.Equal(t, "You reached 16!", e.GetState().Message)
}

func TestMove_InvalidDirectionPanics(t *testing.T) {
	e := createTestEngine(t, nil)
	assert.Panics(t, func() { e.Move(Direction("sideways")) })
	assert.Zero(t, e.GetState().TotalMoves)
}

func TestCanMoveAndPossibleMoves(t *testing.T) {
	e := createTestEngine(t, nil)
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 4, 8, 16},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	assert.False(t, e.CanMove(Up))
	assert.True(t, e.CanMove(Down))
	assert.False(t, e.CanMove(Left))
	assert.False(t, e.CanMove(Right))
	assert.False(t, e.CanMove(Direction("nope")))
	assert.Equal(t, []Direction{Down}, e.GetPossibleMoves())
}

func TestBestTile(t *testing.T) {
	e := createTestEngine(t, nil)
	require.NoError(t, e.LoadGrid(NewGrid(4)))
	assert.Equal(t, Tile(0), e.BestTile())

	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 0, 0, 0},
		{0, 256, 0, 0},
		{0, 0, 64, 0},
		{0, 0, 0, 4},
	}))
	assert.Equal(t, Tile(256), e.BestTile())
}

func TestLoadGrid_Validation(t *testing.T) {
	e := createTestEngine(t, nil)

	tests := []struct {
		name string
		grid [][]Tile
	}{
		{"wrong row count", NewGrid(3)},
		{"ragged row", [][]Tile{{0, 0, 0, 0}, {0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
		{"not a power of two", [][]Tile{{3, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
		{"one is not a tile", [][]Tile{{1, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, e.LoadGrid(tt.grid), ErrInvalidGrid)
		})
	}
}

func TestMove_LargestTilesKeepTheirValue(t *testing.T) {
	e := createTestEngine(t, func(c *GameConfig) { c.FourProbability = 0 })
	require.NoError(t, e.LoadGrid([][]Tile{
		{0, MaxTileValue, MaxTileValue, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}))

	outcome := e.Move(Left)
	assert.True(t, outcome.Effective)
	assert.Zero(t, outcome.ScoreDelta)
	assert.Zero(t, outcome.Merges)
	assert.Equal(t, []Tile{MaxTileValue, MaxTileValue, 0, 0}, e.GetState().Grid[0])
	assert.Equal(t, MaxTileValue, e.BestTile())
	assert.NoError(t, ValidateGrid(e.Snapshot(), 4))
	assert.Equal(t, uint64(0), e.Score())
}

func TestSnapshot_IsACopy(t *testing.T) {
	e := createTestEngine(t, nil)
	snap := e.Snapshot()
	snap[0][0] = 1024
	assert.NotEqual(t, Tile(1024), e.GetState().Grid[0][0])
}

func TestBulkMove_StopsAtGameOver(t *testing.T) {
	e := createTestEngine(t, func(c *GameConfig) { c.FourProbability = 0 })
	require.NoError(t, e.LoadGrid([][]Tile{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{0, 8, 16, 32},
	}))

	results := e.BulkMove([]Direction{Left, Right, Up})
	assert.Len(t, results, 1)
	assert.True(t, e.IsOver())
}

func TestGetLastMove(t *testing.T) {
	e := createTestEngine(t, nil)
	assert.Nil(t, e.GetLastMove())

	e.Move(Left)
	last := e.GetLastMove()
	require.NotNil(t, last)
	assert.Equal(t, Left, last.Action)
	assert.Len(t, e.GetMoveHistory(), 1)
}

// TestRandomPlay_Invariants plays seeded random games and checks conservation,
// the power-of-two invariant, the spawn invariant and terminal correctness after every move.
func TestRandomPlay_Invariants(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		s := seed
		e := createTestEngine(t, func(c *GameConfig) { c.Seed = &s })
		picker := rand.New(rand.NewPCG(seed, seed*31))

		for step := 0; step < 2000 && !e.IsOver(); step++ {
			before := e.Snapshot()
			sumBefore := gridSum(before)
			filledBefore := e.FilledCount()
			scoreBefore := e.Score()

			outcome := e.Move(Directions[picker.IntN(len(Directions))])
			after := e.Snapshot()

			require.NoError(t, ValidateGrid(after, 4))
			require.Equal(t, CountFilled(after), e.FilledCount())
			require.Equal(t, scoreBefore+outcome.ScoreDelta, e.Score())

			if !outcome.Effective {
				require.Equal(t, before, after)
				require.Nil(t, outcome.Spawned)
				continue
			}

			require.NotNil(t, outcome.Spawned)
			require.Equal(t, sumBefore+uint64(outcome.Spawned.Value), gridSum(after),
				"merges preserve the tile sum; only the spawn adds to it")
			require.Equal(t, filledBefore-outcome.Merges+1, e.FilledCount())
			require.Equal(t, IsTerminal(after), e.IsOver())
		}
	}
}

func gridSum(grid [][]Tile) uint64 {
	var sum uint64
	for _, row := range grid {
		for _, v := range row {
			sum += uint64(v)
		}
	}
	return sum
}
