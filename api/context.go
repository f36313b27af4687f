package api

import (
	"context"

	"github.com/rpupo63/blog-backend/services"
)

type keyType string

const sessionKey keyType = "session"

// ctxWithSession adds the caller's session to the context
func ctxWithSession(ctx context.Context, session *services.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ctxGetSession returns the caller's session, or nil for anonymous requests
func ctxGetSession(ctx context.Context) *services.Session {
	session, _ := ctx.Value(sessionKey).(*services.Session)
	return session
}
