package core

import (
	"strings"

	"pkt.systems/agentdeck/internal/logx"
	"pkt.systems/agentdeck/schema"
)

// HandleFrame decodes and dispatches one transport frame. Malformed
// frames are logged and dropped; the stream state machine never sees
// them.
func (s *Service) HandleFrame(epoch uint64, frame []byte) {
	env, err := schema.DecodeEnvelope(frame)
	if err != nil {
		s.log.Warn("dropping malformed frame", "epoch", epoch, "err", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(env)
}

// Dispatch routes one decoded envelope. Exported for surfaces that
// inject synthetic events (scripted demos, tests).
func (s *Service) Dispatch(env schema.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(env)
}

func (s *Service) dispatchLocked(env schema.Envelope) {
	switch env.Type {
	case schema.EventSessionCreated:
		s.handleSessionCreated(env)

	case schema.EventStreamStart:
		s.handleStreamStart()
		s.setStatusLocked(schema.StatusThinking, "")

	case schema.EventToken:
		s.handleToken(env.Content)

	case schema.EventThinkingStart:
		s.handleThinkingStart(env.Title)

	case schema.EventThinkingToken:
		s.handleThinkingToken(env.Content)

	case schema.EventThinkingEnd:
		s.handleThinkingEnd()

	case schema.EventToolStart:
		logx.WithTool(s.log, env.Tool).Debug("tool started")
		s.ledger.start(env.Tool, env.Input, s.now())
		s.sink.OnToolActivity(schema.ToolEvent{Activities: s.ledger.snapshot()})
		s.setStatusLocked(schema.StatusTool, env.Tool)

	case schema.EventToolEnd:
		if _, ok := s.ledger.end(env.Tool, env.Output, s.now()); !ok {
			logx.WithTool(s.log, env.Tool).Debug("tool_end without running entry")
			break
		}
		s.sink.OnToolActivity(schema.ToolEvent{Activities: s.ledger.snapshot()})
		if s.stream.live() {
			s.setStatusLocked(schema.StatusThinking, "")
		}

	case schema.EventTodoUpdate:
		s.sink.OnTodo(schema.TodoEvent{Items: env.Todos})

	case schema.EventMemoryUpdate:
		s.systemLineLocked(firstNonEmpty(env.Message, "memory updated"))

	case schema.EventBrowserStart:
		// The browsing tool itself is ledgered by its tool_start; this
		// event only drives the preview.
		if url, err := schema.NormalizeURL(env.URL); err == nil {
			s.showWeb(url)
		} else {
			s.log.Warn("browser_start with bad url", "url", env.URL)
		}

	case schema.EventBrowserResult:
		if _, ok := s.ledger.end(firstNonEmpty(env.Tool, "browser"), env.Content, s.now()); ok {
			s.sink.OnToolActivity(schema.ToolEvent{Activities: s.ledger.snapshot()})
		}

	case schema.EventStreamEnd:
		s.finalizeStream()
		s.setStatusLocked(schema.StatusReady, "")

	case schema.EventError:
		s.finalizeStream()
		s.systemLineLocked("error: " + firstNonEmpty(env.Message, env.Content, "unknown error"))
		s.setStatusLocked(schema.StatusReady, "")

	case schema.EventStopped:
		s.finalizeStream()
		s.systemLineLocked("generation stopped")
		s.setStatusLocked(schema.StatusReady, "")

	case schema.EventSystem:
		s.systemLineLocked(firstNonEmpty(env.Content, env.Message))

	case schema.EventStatus:
		if env.Model != "" {
			s.model = env.Model
		}
		s.setStatusLocked(schema.StatusPhase(env.Status), env.Message)

	case schema.EventDockerCommand:
		s.appendSandboxLocked("$ " + env.Command)

	case schema.EventDockerOutput:
		s.appendSandboxLocked(strings.Split(strings.TrimRight(env.Output, "\n"), "\n")...)

	case schema.EventServerStarted:
		raw := env.URL
		if raw == "" && env.Port > 0 {
			raw = serverURL(env.Port)
		}
		if raw == "" {
			break
		}
		if url, err := schema.NormalizeURL(raw); err == nil {
			s.systemLineLocked(firstNonEmpty(env.ServerType, "server") + " started at " + url)
			s.showWeb(url)
		} else {
			s.log.Warn("server_started with bad url", "url", raw)
		}

	case schema.EventCanvasURL:
		if url, err := schema.NormalizeURL(env.URL); err == nil {
			s.showWeb(url)
		} else {
			s.log.Warn("canvas_url with bad url", "url", env.URL)
		}

	case schema.EventHTMLCreated:
		if env.Path != "" {
			s.showDocument(env.Path)
		}

	case schema.EventGUIStarted:
		s.showDesktop()

	case schema.EventReminderTriggered:
		if env.Reminder != nil {
			s.systemLineLocked("reminder: " + env.Reminder.Message)
		} else {
			s.systemLineLocked("reminder: " + firstNonEmpty(env.Message, env.Content))
		}

	default:
		s.log.Trace("ignoring unknown event kind", "kind", env.Type)
	}
}

func (s *Service) handleSessionCreated(env schema.Envelope) {
	info := schema.SessionInfo{ID: env.SessionID}
	if env.Session != nil {
		info = *env.Session
	}
	if info.ID == "" {
		s.log.Warn("session_created without session id")
		return
	}
	s.session.ID = info.ID
	s.session.Title = info.Title
	s.log = logx.WithSession(s.baseLog, info.ID)
	s.sink.OnSession(schema.SessionEvent{Session: info})
}

func (s *Service) systemLineLocked(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	s.sink.OnSystemLine(schema.SystemLineEvent{Lines: []string{line}})
}

func (s *Service) appendSandboxLocked(lines ...string) {
	s.sandbox.Append(lines...)
	s.sink.OnSandboxOutput(schema.SandboxEvent{Lines: lines})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
