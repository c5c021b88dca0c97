package backend

import "context"

type sessionKey struct{}

// Session carries the caller's upstream credentials through a request
// context so every backend call made on the caller's behalf is
// authenticated as them.
type Session struct {
	// Cookie is the value of the browser's backend session cookie.
	Cookie string

	// RequestID correlates upstream logs with ours.
	RequestID string
}

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, or the zero Session.
func SessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}
