package core

import (
	"time"

	"pkt.systems/agentdeck/schema"
)

const defaultLedgerMax = 100

// ledger is the append-mostly log of tool invocations. Entries live in
// a bounded slice ordered oldest-first; past the cap the oldest is
// evicted. Matching start to end goes by tool name: the producer sends
// no correlation id, so the end closes the OLDEST running entry with
// that name. Deterministic, though two overlapping invocations of the
// same tool can still attribute output to the wrong one.
type ledger struct {
	entries []schema.ToolActivity
	max     int
	nextID  schema.ActivityID
}

func newLedger(max int) *ledger {
	if max <= 0 {
		max = defaultLedgerMax
	}
	return &ledger{max: max}
}

// start records a running invocation and returns its activity id.
func (l *ledger) start(tool, input string, now time.Time) schema.ActivityID {
	l.nextID++
	l.entries = append(l.entries, schema.ToolActivity{
		ID:        l.nextID,
		Tool:      tool,
		Input:     input,
		Status:    schema.ToolRunning,
		StartedAt: now,
	})
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	return l.nextID
}

// end completes the oldest running entry with the given tool name.
// Returns false when no such entry exists.
func (l *ledger) end(tool, output string, now time.Time) (schema.ToolActivity, bool) {
	for i := range l.entries {
		if l.entries[i].Tool != tool || l.entries[i].Status != schema.ToolRunning {
			continue
		}
		l.entries[i].Output = output
		l.entries[i].Status = schema.ToolCompleted
		l.entries[i].EndedAt = now
		if l.entries[i].EndedAt.Before(l.entries[i].StartedAt) {
			l.entries[i].EndedAt = l.entries[i].StartedAt
		}
		return l.entries[i], true
	}
	return schema.ToolActivity{}, false
}

// snapshot returns a copy of the retained history, oldest first.
func (l *ledger) snapshot() []schema.ToolActivity {
	if len(l.entries) == 0 {
		return nil
	}
	return append([]schema.ToolActivity(nil), l.entries...)
}

// reset drops all history.
func (l *ledger) reset() {
	l.entries = nil
}
