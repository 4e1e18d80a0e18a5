package core

import (
	"testing"

	"pkt.systems/agentdeck/schema"
)

func TestHandleFrameDropsMalformed(t *testing.T) {
	rig := newTestRig(t)
	rig.svc.HandleFrame(1, []byte("{not json"))
	rig.svc.HandleFrame(1, []byte(`{"content":"no type"}`))
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if len(rig.sink.transcripts)+len(rig.sink.systemLines)+len(rig.sink.statuses) != 0 {
		t.Fatal("malformed frames produced sink events")
	}
}

func TestHandleFrameDispatchesDecodedEnvelope(t *testing.T) {
	rig := newTestRig(t)
	rig.svc.HandleFrame(1, []byte(`{"type":"stream_start"}`))
	rig.svc.HandleFrame(1, []byte(`{"type":"token","content":"hi"}`))
	rig.svc.HandleFrame(1, []byte(`{"type":"stream_end"}`))
	last := rig.sink.lastTranscript(t)
	if !last.Final || last.Lines[0] != "hi" {
		t.Fatalf("frame pipeline produced %+v", last)
	}
}

func TestUnknownEventKindIgnored(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: "someday_maybe", Content: "x"})
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if len(rig.sink.systemLines) != 0 {
		t.Fatal("unknown kind produced output")
	}
}

func TestToolStartEndUpdatesLedgerAndStatus(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventToolStart, Tool: "search", Input: "go generics"})

	acts := rig.svc.ToolActivities()
	if len(acts) != 1 || acts[0].Status != schema.ToolRunning {
		t.Fatalf("ledger after tool_start: %+v", acts)
	}
	rig.sink.mu.Lock()
	lastStatus := rig.sink.statuses[len(rig.sink.statuses)-1]
	rig.sink.mu.Unlock()
	if lastStatus.Phase != schema.StatusTool || lastStatus.Message != "search" {
		t.Fatalf("status after tool_start: %+v", lastStatus)
	}

	rig.dispatch(schema.Envelope{Type: schema.EventToolEnd, Tool: "search", Output: "results"})
	acts = rig.svc.ToolActivities()
	if acts[0].Status != schema.ToolCompleted || acts[0].Output != "results" {
		t.Fatalf("ledger after tool_end: %+v", acts)
	}
}

func TestToolEndWithoutStartLeavesLedgerUntouched(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventToolEnd, Tool: "search", Output: "orphan"})
	if len(rig.svc.ToolActivities()) != 0 {
		t.Fatal("orphan tool_end created a ledger entry")
	}
}

func TestOverlappingSameToolClosesOldestFirst(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventToolStart, Tool: "fetch", Input: "first"})
	rig.dispatch(schema.Envelope{Type: schema.EventToolStart, Tool: "fetch", Input: "second"})
	rig.dispatch(schema.Envelope{Type: schema.EventToolEnd, Tool: "fetch", Output: "done"})

	acts := rig.svc.ToolActivities()
	if acts[0].Status != schema.ToolCompleted || acts[0].Input != "first" {
		t.Fatalf("oldest entry not closed first: %+v", acts)
	}
	if acts[1].Status != schema.ToolRunning {
		t.Fatalf("newer entry closed prematurely: %+v", acts[1])
	}
}

func TestBrowserStartDrivesPreviewNotLedger(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventToolStart, Tool: "browser", Input: "docs"})
	rig.dispatch(schema.Envelope{Type: schema.EventBrowserStart, URL: "example.com/docs"})

	if n := len(rig.svc.ToolActivities()); n != 1 {
		t.Fatalf("browser_start changed the ledger: %d entries", n)
	}
	snap, _ := rig.svc.Preview()
	if snap.Mode != schema.PreviewWeb || snap.URL != "https://example.com/docs" {
		t.Fatalf("preview after browser_start: %+v", snap)
	}

	rig.dispatch(schema.Envelope{Type: schema.EventBrowserResult, Tool: "browser", Content: "page text"})
	acts := rig.svc.ToolActivities()
	if acts[0].Status != schema.ToolCompleted || acts[0].Output != "page text" {
		t.Fatalf("browser_result did not close the entry: %+v", acts[0])
	}
}

func TestSessionCreatedSetsIdentity(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventSessionCreated, SessionID: "sess-9"})
	if got := rig.svc.Session().ID; got != "sess-9" {
		t.Fatalf("session id = %q, want sess-9", got)
	}
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if len(rig.sink.sessions) != 1 || rig.sink.sessions[0].Switched {
		t.Fatalf("session events = %+v", rig.sink.sessions)
	}
}

func TestStatusCarriesModelIdentity(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventStatus, Status: "thinking", Model: "gpt-large"})
	rig.dispatch(schema.Envelope{Type: schema.EventStatus, Status: "switching", Message: "falling back"})

	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	last := rig.sink.statuses[len(rig.sink.statuses)-1]
	if last.Phase != schema.StatusSwitching || last.Message != "falling back" {
		t.Fatalf("status = %+v", last)
	}
	if last.Model != "gpt-large" {
		t.Fatalf("model identity not retained across status events: %q", last.Model)
	}
}

func TestDockerEventsAppendToSandbox(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventDockerCommand, Command: "ls /"})
	rig.dispatch(schema.Envelope{Type: schema.EventDockerOutput, Output: "bin\netc\n"})

	got := rig.svc.SandboxOutput()
	want := []string{"$ ls /", "bin", "etc"}
	if len(got) != len(want) {
		t.Fatalf("sandbox = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sandbox[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestServerStartedOpensWebPreview(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventServerStarted, Port: 3000, ServerType: "vite"})
	snap, _ := rig.svc.Preview()
	if snap.Mode != schema.PreviewWeb || snap.URL != "http://localhost:3000" {
		t.Fatalf("preview after server_started: %+v", snap)
	}
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if len(rig.sink.systemLines) == 0 {
		t.Fatal("server_started emitted no notice line")
	}
}

func TestServerStartedNormalizesURL(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventServerStarted, URL: "localhost:8080"})
	snap, _ := rig.svc.Preview()
	if snap.Mode != schema.PreviewWeb || snap.URL != "https://localhost:8080" {
		t.Fatalf("preview after bare-host server_started: %+v", snap)
	}
}

func TestServerStartedBadURLIgnored(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventServerStarted, URL: "ftp://example.com"})
	snap, _ := rig.svc.Preview()
	if snap.Mode != schema.PreviewEmpty {
		t.Fatalf("invalid server url changed mode to %s", snap.Mode)
	}
}

func TestErrorEventFinalizesAndNotifies(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventStreamStart})
	rig.dispatch(schema.Envelope{Type: schema.EventToken, Content: "partial"})
	rig.dispatch(schema.Envelope{Type: schema.EventError, Message: "rate limited"})

	last := rig.sink.lastTranscript(t)
	if !last.Final {
		t.Fatal("error did not finalize the stream")
	}
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if rig.sink.systemLines[len(rig.sink.systemLines)-1] != "error: rate limited" {
		t.Fatalf("system lines = %v", rig.sink.systemLines)
	}
}

func TestTodoUpdateForwarded(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventTodoUpdate, Todos: []schema.TodoItem{
		{Text: "write tests", Completed: true},
		{Text: "ship"},
	}})
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if len(rig.sink.todos) != 1 || len(rig.sink.todos[0].Items) != 2 {
		t.Fatalf("todo events = %+v", rig.sink.todos)
	}
}

func TestReminderTriggeredBecomesSystemLine(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{
		Type:     schema.EventReminderTriggered,
		Reminder: &schema.Reminder{Message: "stand up"},
	})
	rig.sink.mu.Lock()
	defer rig.sink.mu.Unlock()
	if rig.sink.systemLines[len(rig.sink.systemLines)-1] != "reminder: stand up" {
		t.Fatalf("system lines = %v", rig.sink.systemLines)
	}
}
