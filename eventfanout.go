package agentdeck

import (
	"pkt.systems/agentdeck/core"
	"pkt.systems/agentdeck/schema"
)

type eventFanout struct {
	sinks []core.EventSink
}

func (f eventFanout) OnTranscript(event schema.TranscriptEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnTranscript(event)
	}
}

func (f eventFanout) OnThinking(event schema.ThinkingEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnThinking(event)
	}
}

func (f eventFanout) OnSystemLine(event schema.SystemLineEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSystemLine(event)
	}
}

func (f eventFanout) OnStatus(event schema.StatusEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnStatus(event)
	}
}

func (f eventFanout) OnConn(event schema.ConnEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnConn(event)
	}
}

func (f eventFanout) OnToolActivity(event schema.ToolEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnToolActivity(event)
	}
}

func (f eventFanout) OnSandboxOutput(event schema.SandboxEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSandboxOutput(event)
	}
}

func (f eventFanout) OnPreview(event schema.PreviewEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnPreview(event)
	}
}

func (f eventFanout) OnSession(event schema.SessionEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSession(event)
	}
}

func (f eventFanout) OnTodo(event schema.TodoEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnTodo(event)
	}
}
