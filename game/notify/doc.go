// Package notify fans board snapshots out to in-process subscribers.
//
// A renderer subscribes to a session and repaints whenever a message
// arrives:
//
//	hub := notify.NewHub()
//	go hub.Run(ctx)
//
//	sub := hub.Subscribe(sessionID, 0)
//	defer sub.Close()
//	for msg := range sub.C() {
//		paint(msg.GameState.Grid)
//	}
//
// Hub implements service.Notifier. All bookkeeping happens on the Run
// goroutine; broadcasts never block the caller, and a subscriber whose
// queue fills up is dropped.
package notify
