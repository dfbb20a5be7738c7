// Package service provides the host-facing layer over the 2048 board engine.
//
// The service package implements:
//   - Multi-session board management behind opaque handles
//   - Configuration listing, loading and saving
//   - Move validation and processing, single and bulk
//   - Move history pagination
//   - Prometheus metrics and subscriber notification
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages configuration loading and validation.
// Notifier receives state snapshots after every change.
//
// Every call is serialized under one service mutex, so a session's engine is
// only touched by one goroutine at a time. Returned states are copies.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr,
//		service.WithMetrics(prometheus.DefaultRegisterer))
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		return err
//	}
//	result, err := svc.Move(ctx, info.ID, "left")
package service
