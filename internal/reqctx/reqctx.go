// Package reqctx carries a read-only snapshot of the inbound request along
// the invocation call chain. Values travel on the context.Context handed to
// each tool invocation; there is no ambient global state, and no snapshot is
// ever shared across concurrent invocations.
package reqctx

import (
	"context"
	"net/http"
)

type contextKey struct{}

// SessionHeader is the inbound header the session identifier is read from.
const SessionHeader = "Mcp-Session-Id"

// Inbound is the per-request snapshot taken when a request enters the
// server.
type Inbound struct {
	Headers   http.Header
	SessionID string
}

// Snapshot captures the inbound request. Headers are copied so the snapshot
// stays valid after the handler returns.
func Snapshot(r *http.Request) *Inbound {
	return &Inbound{
		Headers:   r.Header.Clone(),
		SessionID: r.Header.Get(SessionHeader),
	}
}

// With attaches an inbound snapshot to the context.
func With(ctx context.Context, in *Inbound) context.Context {
	return context.WithValue(ctx, contextKey{}, in)
}

// From returns the inbound snapshot attached to the context, if any.
func From(ctx context.Context) (*Inbound, bool) {
	in, ok := ctx.Value(contextKey{}).(*Inbound)
	return in, ok
}
