package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/game2048/game/engine"
	"github.com/wricardo/mcp-training/game2048/game/strategy"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	notifier Notifier
	advisor  strategy.Strategy
	metrics  *Metrics
	logger   zerolog.Logger
	mu       sync.Mutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *gameServiceImpl) {
		s.logger = logger
	}
}

// WithMetrics registers the service collectors on reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *gameServiceImpl) {
		s.metrics = NewMetrics(reg, s.sessions.Count)
	}
}

// WithNotifier sends a state snapshot to n after every change
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// WithStrategy replaces the move advisor used by SuggestMove
func WithStrategy(st strategy.Strategy) Option {
	return func(s *gameServiceImpl) {
		s.advisor = st
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		advisor:  strategy.NewLookahead(strategy.DefaultWeights),
		logger:   log.With().Str("component", "service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks up a session and refreshes its access time. Callers hold s.mu.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("session %q: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session", sessionID).Msg("failed to update last access time")
	}
	return sess, nil
}

// snapshot copies the live state and fills the computed helper views
func snapshot(sess *Session) *engine.GameState {
	state := sess.Engine.GetState().Clone()
	state.BestTile = sess.Engine.BestTile()
	state.PossibleMoves = sess.Engine.GetPossibleMoves()
	return state
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      snapshot(sess),
		GameConfig:     sess.Config.Clone(),
	}
}

func (s *gameServiceImpl) notify(sessionID string, state *engine.GameState) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToSession(sessionID, state.Clone())
}

// CreateSession creates a new session and starts its first game
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					configIDs := make([]string, 0, len(availableConfigs))
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, ErrConfigNotFound)
				}
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.RecordGameStarted()

	info := s.sessionInfo(sess)
	if configName != "" {
		info.ConfigName = configName
	}

	s.logger.Info().
		Str("session", sess.ID).
		Str("config", info.ConfigName).
		Int("grid_size", config.GridSize).
		Msg("session created")
	s.notify(sess.ID, info.GameState)

	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.logger.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// NewGame clears the board and seeds the initial tiles
func (s *gameServiceImpl) NewGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.NewGame()
	s.metrics.RecordGameStarted()

	state := snapshot(sess)
	s.logger.Debug().Str("session", sessionID).Int("filled", state.FilledCount).Msg("new game")
	s.notify(sessionID, state)
	return state, nil
}

// Move applies a single direction to a session's board
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	wasVictory := sess.Engine.IsVictory()
	outcome := sess.Engine.Move(dir)
	s.metrics.RecordMove(outcome, wasVictory, sess.Engine.BestTile())

	state := snapshot(sess)
	result := &MoveResult{
		Success:   outcome.Effective,
		Outcome:   outcome,
		GameState: state,
		Message:   state.Message,
		Events:    extractMoveEvents(outcome, wasVictory, state.Message),
	}

	s.logger.Debug().
		Str("session", sessionID).
		Str("direction", string(dir)).
		Bool("effective", outcome.Effective).
		Uint64("score", state.Score).
		Msg("move")

	if outcome.Effective {
		if outcome.GameOver {
			s.logger.Info().Str("session", sessionID).Uint64("score", state.Score).
				Uint32("best_tile", uint32(state.BestTile)).Msg("game over")
		}
		s.notify(sessionID, state)
	}

	return result, nil
}

// extractMoveEvents describes what a single move did
func extractMoveEvents(outcome engine.MoveOutcome, wasVictory bool, message string) []GameEvent {
	now := time.Now()
	if !outcome.Effective {
		msg := message
		if msg == "" {
			msg = fmt.Sprintf("Nothing moves %s", outcome.Direction)
		}
		return []GameEvent{{Type: "blocked", Message: msg, Timestamp: now}}
	}

	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s", outcome.Direction),
		Timestamp: now,
	}}
	if outcome.Merges > 0 {
		events = append(events, GameEvent{
			Type:      "merge",
			Message:   fmt.Sprintf("Merged %d tiles (+%d)", outcome.Merges, outcome.ScoreDelta),
			Timestamp: now,
		})
	}
	if outcome.Spawned != nil {
		events = append(events, GameEvent{
			Type:      "spawn",
			Message:   fmt.Sprintf("Spawned %d", outcome.Spawned.Value),
			Timestamp: now,
			Position:  outcome.Spawned.Position,
		})
	}
	if outcome.Victory && !wasVictory {
		events = append(events, GameEvent{Type: "victory", Message: message, Timestamp: now})
	}
	if outcome.GameOver {
		events = append(events, GameEvent{Type: "game_over", Message: message, Timestamp: now})
	}
	return events
}

// BulkMove applies up to engine.MaxBulkMoves directions in order, stopping at
// game over. All directions are validated before any is applied.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	requested := len(moves)
	truncated := false
	if requested > engine.MaxBulkMoves {
		moves = moves[:engine.MaxBulkMoves]
		truncated = true
	}

	dirs := make([]engine.Direction, 0, len(moves))
	for i, m := range moves {
		dir, err := engine.ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: requested,
		Truncated:      truncated,
		StartScore:     sess.Engine.Score(),
		Events:         []GameEvent{},
	}
	if truncated {
		result.Limit = engine.MaxBulkMoves
	}

	for i, dir := range dirs {
		if err := ctx.Err(); err != nil {
			s.logger.Warn().Err(err).Str("session", sessionID).Int("executed", result.MovesExecuted).
				Msg("bulk move cancelled")
			break
		}
		if sess.Engine.IsOver() {
			break
		}

		wasVictory := sess.Engine.IsVictory()
		outcome := sess.Engine.Move(dir)
		s.metrics.RecordMove(outcome, wasVictory, sess.Engine.BestTile())

		result.MovesExecuted++
		if outcome.Effective {
			result.EffectiveMoves++
		}
		result.Steps = append(result.Steps, StepInfo{
			Idx:        i + 1,
			Dir:        dir,
			Effective:  outcome.Effective,
			ScoreDelta: outcome.ScoreDelta,
			Merges:     outcome.Merges,
			Spawned:    outcome.Spawned,
			ScoreAfter: sess.Engine.Score(),
			Victory:    outcome.Victory && !wasVictory,
		})
		result.Events = append(result.Events, extractMoveEvents(outcome, wasVictory, sess.Engine.GetState().Message)...)
	}

	state := snapshot(sess)
	result.GameState = state
	result.EndScore = state.Score
	result.ScoreDelta = state.Score - result.StartScore
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.BestTile = state.BestTile
	result.Message = state.Message
	result.PossibleMoves = state.PossibleMoves
	result.Success = result.EffectiveMoves > 0
	switch {
	case result.GameOver:
		result.StopReasonCode = StopGameOver
		result.StoppedReason = sess.Engine.GetConfig().Messages.GameOver
		result.StoppedOnMove = result.MovesExecuted
	case result.EffectiveMoves == 0 && result.MovesExecuted > 0:
		result.StopReasonCode = StopBlocked
		result.StoppedReason = sess.Engine.GetConfig().Messages.Blocked
	}

	s.logger.Debug().
		Str("session", sessionID).
		Int("requested", requested).
		Int("executed", result.MovesExecuted).
		Int("effective", result.EffectiveMoves).
		Uint64("score_delta", result.ScoreDelta).
		Msg("bulk move")

	if result.EffectiveMoves > 0 {
		s.notify(sessionID, state)
	}
	return result, nil
}

// SuggestMove asks the advisor for the session's next move. A finished
// game yields an unavailable suggestion, not an error.
func (s *gameServiceImpl) SuggestMove(ctx context.Context, sessionID string) (*Suggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	suggestion := &Suggestion{PossibleMoves: sess.Engine.GetPossibleMoves()}
	s.advisor.Reset()
	if dir, ok := s.advisor.NextMove(sess.Engine.GetState()); ok {
		suggestion.Direction = dir
		suggestion.Available = true
	}
	return suggestion, nil
}

// GetGameState returns a copy of the session's current state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// GridSnapshot returns a copy of the session's grid for rendering
func (s *gameServiceImpl) GridSnapshot(ctx context.Context, sessionID string) ([][]engine.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// BestTile returns the largest tile on the session's board
func (s *gameServiceImpl) BestTile(ctx context.Context, sessionID string) (engine.Tile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.Engine.BestTile(), nil
}

// Score returns the session's cumulative score
func (s *gameServiceImpl) Score(ctx context.Context, sessionID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.Engine.Score(), nil
}

// IsOver reports whether the session's board admits no further moves
func (s *gameServiceImpl) IsOver(ctx context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return false, err
	}
	return sess.Engine.IsOver(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	config, err := s.configs.LoadConfig(configName)
	if err != nil {
		return nil, err
	}
	return config.Clone(), nil
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info().Str("config", configName).Msg("config saved")
	return nil
}
