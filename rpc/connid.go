package rpc

import "github.com/google/uuid"

// NewConnID generates a unique per-connection identifier for log and trace
// correlation. Callers typically generate one at accept time and pass it to
// NewSession.
func NewConnID() string {
	return uuid.NewString()
}
