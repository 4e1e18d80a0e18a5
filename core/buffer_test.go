package core

import "testing"

func TestBufferEvictsOldestPastCap(t *testing.T) {
	b := newBuffer(3)
	b.Append("one", "two")
	b.Append("three", "four")
	got := b.Snapshot()
	if len(got) != 3 {
		t.Fatalf("retained %d lines, want 3", len(got))
	}
	if got[0] != "two" || got[2] != "four" {
		t.Fatalf("retained %v, want [two three four]", got)
	}
}

func TestBufferSnapshotIsCopy(t *testing.T) {
	b := newBuffer(10)
	b.Append("line")
	snap := b.Snapshot()
	snap[0] = "mutated"
	if b.Snapshot()[0] != "line" {
		t.Fatal("snapshot aliases internal storage")
	}
}

func TestBufferReset(t *testing.T) {
	b := newBuffer(10)
	b.Append("line")
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("Len after reset = %d, want 0", b.Len())
	}
	if b.Snapshot() != nil {
		t.Fatal("Snapshot after reset must be nil")
	}
}
