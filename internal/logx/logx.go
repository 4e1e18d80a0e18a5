// Package logx provides small helpers for binding common identity
// fields onto a pslog logger.
package logx

import (
	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

// WithSession annotates the logger with a session id when present.
func WithSession(log pslog.Logger, sessionID schema.SessionID) pslog.Logger {
	if sessionID == "" {
		return log
	}
	return log.With("session", sessionID)
}

// WithEpoch annotates the logger with the connection epoch.
func WithEpoch(log pslog.Logger, epoch uint64) pslog.Logger {
	return log.With("epoch", epoch)
}

// WithTool annotates the logger with a tool name when available.
func WithTool(log pslog.Logger, tool string) pslog.Logger {
	if tool != "" {
		log = log.With("tool", tool)
	}
	return log
}
