package messaging

// Bus moves opaque messages between publishers and subject subscribers.
// Messages on one subject are delivered in publish order.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// SessionSubject is the subject a session's frames are delivered on.
func SessionSubject(sessionID string) string {
	return "session." + sessionID
}
