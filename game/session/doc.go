// Package session provides in-memory session management for 2048 boards.
//
// Manager allocates one engine per session behind an opaque handle
// (a random UUID unless the caller supplies one), looks sessions up
// case-insensitively, and releases them on Delete or when they sit idle.
// It satisfies service.SessionManager.
//
// The manager is safe for concurrent use. It guards its map only: the
// engines it hands out are not synchronized, so callers serialize access
// to a session themselves (the service layer does).
//
// Janitor runs CleanupExpiredSessions on a robfig/cron schedule:
//
//	manager := session.NewManager()
//	janitor, err := session.NewJanitor(manager, "@every 10m", time.Hour)
//	if err != nil {
//		return err
//	}
//	go janitor.Run(ctx)
package session
