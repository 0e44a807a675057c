// Package server routes direct messages between authenticated sessions.
package server

// PrivateMessageRouter resolves a username to its live session and delivers
// a direct message outside any room's broadcast scope.
type PrivateMessageRouter struct {
	registry *Registry
}

// NewPrivateMessageRouter creates a router backed by the given registry.
func NewPrivateMessageRouter(registry *Registry) *PrivateMessageRouter {
	return &PrivateMessageRouter{registry: registry}
}

// Route delivers body from sender to the session holding target. The target
// receives the message with is_self=false; the sender receives an echo copy
// with is_self=true and the target name attached, so its client can render
// the outgoing message. When no authenticated session holds the target
// username, only the sender is notified and nobody else receives anything.
func (r *PrivateMessageRouter) Route(sender *Session, target, body string) {
	targetSession, ok := r.registry.Lookup(target)
	if !ok {
		notice := systemNotice("User " + target + " not found or offline")
		notice.stamp()
		sender.send(notice)
		return
	}

	msg := Message{
		Type:     ResponsePrivateMessage,
		Username: sender.Username(),
		Body:     body,
	}
	msg.stamp()

	targetSession.send(withSelf(msg, false))

	echo := msg
	echo.Target = target
	sender.send(withSelf(echo, true))

	privateMessagesTotal.Inc()
}
