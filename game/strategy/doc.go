// Package strategy suggests moves for a 2048 board and can play whole games.
//
// Lookahead is a one-ply search with an averaged spawn: each candidate
// direction is applied to a copy of the grid, a 2 is tried in every empty
// cell, and the mean board evaluation wins. Evaluate rewards empty cells,
// adjacent equal pairs, monotonic rows and columns, and a cornered best tile.
//
//	s := strategy.NewLookahead(strategy.DefaultWeights)
//	dir, ok := s.NextMove(eng.GetState())
//
// Play runs a strategy against an engine until game over or a move limit.
package strategy
