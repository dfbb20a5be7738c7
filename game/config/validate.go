package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/game2048/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors lists the problems found; Info summarizes a valid board.
type ValidationResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
	Info   []string `json:"info,omitempty"`
}

// MaxReachableTile is the largest tile a size x size board can ever hold:
// every cell filled with a distinct power of two, fed by a spawned 4.
// It never exceeds engine.MaxTileValue.
func MaxReachableTile(size int) uint64 {
	cells := size * size
	if cells+1 >= 31 {
		return uint64(engine.MaxTileValue)
	}
	return 1 << uint(cells+1)
}

// ValidateFile decodes and checks one configuration file
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}

	config, err := engine.DecodeConfig(data, path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if config.WinningTile != 0 && uint64(config.WinningTile) > MaxReachableTile(config.GridSize) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("winning_tile %d cannot be reached on a %dx%d board",
			config.WinningTile, config.GridSize, config.GridSize))
	}

	if !result.Valid {
		return result
	}

	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", config.Name),
		fmt.Sprintf("Grid: %dx%d", config.GridSize, config.GridSize),
		fmt.Sprintf("Initial tiles: %d", config.InitialTiles),
		fmt.Sprintf("Four probability: %.2f", config.FourProbability),
	)
	if config.WinningTile == 0 {
		result.Info = append(result.Info, "Winning tile: disabled")
	} else {
		result.Info = append(result.Info, fmt.Sprintf("Winning tile: %d", config.WinningTile))
	}
	if config.Seed != nil {
		result.Info = append(result.Info, fmt.Sprintf("Seed: %d (deterministic)", *config.Seed))
	}
	return result
}

// Validate checks every configuration file in the manager's directory,
// sorted by file name. Two files sharing a display name are both flagged.
func (m *Manager) Validate() ([]ValidationResult, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var results []ValidationResult
	names := make(map[string][]int)

	for _, entry := range entries {
		if entry.IsDir() || !engine.IsConfigFile(entry.Name()) {
			continue
		}
		path := filepath.Join(m.configDir, entry.Name())
		result := ValidateFile(path)
		if result.Valid {
			if config, err := m.LoadConfig(entry.Name()); err == nil {
				names[config.Name] = append(names[config.Name], len(results))
			}
		} else {
			m.logger.Warn().Str("file", entry.Name()).Strs("errors", result.Errors).Msg("invalid config")
		}
		results = append(results, result)
	}

	for name, idx := range names {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			results[i].Valid = false
			results[i].Errors = append(results[i].Errors, fmt.Sprintf("duplicate config name %q", name))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].File < results[j].File
	})
	return results, nil
}
