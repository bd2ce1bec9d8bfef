// Package ports defines the interfaces the engine's collaborators implement.
package ports

import (
	"context"

	"partyhub/internal/domain"
)

// AccessGate answers whether a player may start a given game kind. Access
// control lives outside the session engine; the transport layer consults the
// gate before a start command reaches it.
type AccessGate interface {
	CanStart(ctx context.Context, userID string, kind domain.GameKind) bool
}

// StaticGate gates configured premium kinds behind a preloaded user list.
type StaticGate struct {
	gated map[domain.GameKind]bool
	users map[string]bool
}

// NewStaticGate builds a gate from configured premium kinds and users.
func NewStaticGate(premiumKinds, premiumUsers []string) *StaticGate {
	g := &StaticGate{
		gated: make(map[domain.GameKind]bool, len(premiumKinds)),
		users: make(map[string]bool, len(premiumUsers)),
	}
	for _, k := range premiumKinds {
		g.gated[domain.GameKind(k)] = true
	}
	for _, u := range premiumUsers {
		g.users[u] = true
	}
	return g
}

// CanStart allows any non-gated kind, and gated kinds only for listed users.
func (g *StaticGate) CanStart(_ context.Context, userID string, kind domain.GameKind) bool {
	if !g.gated[kind] {
		return true
	}
	return g.users[userID]
}
