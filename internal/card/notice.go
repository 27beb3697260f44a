package card

import "context"

// Notice is the acknowledgment shown to the user after a join attempt.
type Notice struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var (
	joinedNotice = Notice{Success: true, Message: "Joined the game!"}
	failedNotice = Notice{Success: false, Message: "Failed to join the game. Please try again."}
)

// Notifier delivers a notice and returns once it has been acknowledged.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(context.Context, Notice) {})
