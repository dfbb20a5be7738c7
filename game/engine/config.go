package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigMessages holds the user-facing strings attached to state changes
type ConfigMessages struct {
	Welcome  string `json:"welcome" yaml:"welcome"`
	Merged   string `json:"merged" yaml:"merged"`
	Blocked  string `json:"blocked" yaml:"blocked"`
	GameOver string `json:"game_over" yaml:"game_over"`
	Victory  string `json:"victory" yaml:"victory"`
}

// GameConfig represents the board rules loaded from a JSON or YAML file
type GameConfig struct {
	Name            string         `json:"name" yaml:"name"`
	Description     string         `json:"description" yaml:"description"`
	GridSize        int            `json:"grid_size" yaml:"grid_size"`
	InitialTiles    int            `json:"initial_tiles" yaml:"initial_tiles"`
	FourProbability float64        `json:"four_probability" yaml:"four_probability"`
	WinningTile     Tile           `json:"winning_tile" yaml:"winning_tile"` // 0 disables victory
	Seed            *uint64        `json:"seed,omitempty" yaml:"seed,omitempty"`
	Messages        ConfigMessages `json:"messages" yaml:"messages"`
}

// DefaultConfig returns the classic 4x4 board
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:            "classic",
		Description:     "Classic 4x4 board, two starting tiles, 10% fours",
		GridSize:        DefaultGridSize,
		InitialTiles:    DefaultInitialTiles,
		FourProbability: DefaultFourChance,
		WinningTile:     DefaultWinningTile,
		Messages:        defaultMessages(),
	}
}

func defaultMessages() ConfigMessages {
	return ConfigMessages{
		Welcome:  "Join the tiles, get to 2048!",
		Merged:   "Merged %d tiles (+%d)",
		Blocked:  "Nothing moves that way",
		GameOver: "No moves left. Game over!",
		Victory:  "You reached %d!",
	}
}

// ValidateGameConfig validates a board configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d",
			ErrInvalidConfig, MinGridSize, MaxGridSize, config.GridSize)
	}

	cells := config.GridSize * config.GridSize
	if config.InitialTiles < 1 || config.InitialTiles > cells {
		return fmt.Errorf("%w: initial_tiles must be between 1 and %d, got %d",
			ErrInvalidConfig, cells, config.InitialTiles)
	}

	if config.FourProbability < 0 || config.FourProbability > 1 {
		return fmt.Errorf("%w: four_probability must be within [0, 1], got %v",
			ErrInvalidConfig, config.FourProbability)
	}

	if config.WinningTile != 0 && (!config.WinningTile.IsPowerOfTwo() || config.WinningTile < 4) {
		return fmt.Errorf("%w: winning_tile must be 0 or a power of two >= 4, got %d",
			ErrInvalidConfig, config.WinningTile)
	}

	// Validate format strings
	if config.Messages.Merged != "" && strings.Count(config.Messages.Merged, "%d") != 2 {
		return fmt.Errorf("%w: messages.merged must contain %%d twice (merges, points)", ErrInvalidConfig)
	}
	if config.Messages.Victory != "" && !strings.Contains(config.Messages.Victory, "%d") {
		return fmt.Errorf("%w: messages.victory must contain %%d for the winning tile", ErrInvalidConfig)
	}

	return nil
}

// Clone returns a deep copy of the configuration, including the seed
func (c *GameConfig) Clone() *GameConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Seed != nil {
		seed := *c.Seed
		clone.Seed = &seed
	}
	return &clone
}

// ApplyDefaults fills unset messages with the built-in strings
func (c *GameConfig) ApplyDefaults() {
	d := defaultMessages()
	if c.Messages.Welcome == "" {
		c.Messages.Welcome = d.Welcome
	}
	if c.Messages.Merged == "" {
		c.Messages.Merged = d.Merged
	}
	if c.Messages.Blocked == "" {
		c.Messages.Blocked = d.Blocked
	}
	if c.Messages.GameOver == "" {
		c.Messages.GameOver = d.GameOver
	}
	if c.Messages.Victory == "" {
		c.Messages.Victory = d.Victory
	}
}

// IsConfigFile reports whether name carries a supported config extension
func IsConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// DecodeConfig parses config bytes; the file extension selects JSON or YAML
func DecodeConfig(data []byte, filename string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse json config: %w", err)
		}
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	return &config, nil
}

// EncodeConfig serializes a config; the file extension selects JSON or YAML
func EncodeConfig(config *GameConfig, filename string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return yaml.Marshal(config)
	default:
		return json.MarshalIndent(config, "", "  ")
	}
}

// LoadGameConfig loads a board configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return DecodeConfig(data, configPath)
}

// LoadConfigByName loads a board configuration by name from the configs directory.
// The name may omit its extension; .json, .yaml and .yml are tried in that order.
func LoadConfigByName(configName string) (*GameConfig, error) {
	dir := "configs"
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		dir = configDir
	}

	candidates := []string{configName}
	if !IsConfigFile(configName) {
		candidates = []string{configName + ".json", configName + ".yaml", configName + ".yml"}
	}

	for _, candidate := range candidates {
		configPath := filepath.Join(dir, candidate)
		data, err := os.ReadFile(configPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", candidate, err)
		}

		config, err := DecodeConfig(data, candidate)
		if err != nil {
			return nil, fmt.Errorf("invalid config '%s': %w", candidate, err)
		}
		return config, nil
	}

	return nil, fmt.Errorf("config file '%s' not found", configName)
}

// InitGameStateFromConfig creates an empty board sized by the provided configuration.
// Tiles are seeded by GameEngine.NewGame, which owns the random source.
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	return &GameState{
		Grid:              NewGrid(config.GridSize),
		Size:              config.GridSize,
		Message:           config.Messages.Welcome,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
}
