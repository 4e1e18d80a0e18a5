package core

import (
	"strings"
	"time"

	"pkt.systems/agentdeck/schema"
)

// streamPhase tracks the accumulator state machine:
// idle -> pending (stream_start) -> accumulating (first non-whitespace
// token) -> finalized (stream_end | stopped | error).
type streamPhase int

const (
	streamIdle streamPhase = iota
	streamPending
	streamAccumulating
	streamFinalized
)

// streamBuffer is the single live in-flight response. At most one
// exists at a time; a second stream_start finalizes the live one first.
type streamBuffer struct {
	phase      streamPhase
	content    strings.Builder
	hasContent bool
	sessionID  schema.SessionID
	startedAt  time.Time
}

func newStreamBuffer(sessionID schema.SessionID, now time.Time) *streamBuffer {
	return &streamBuffer{
		phase:     streamPending,
		sessionID: sessionID,
		startedAt: now,
	}
}

// append adds one token. Returns true once the buffer holds visible
// content; whitespace-only prefixes keep the buffer pending so a
// backend retry that streams nothing but blanks still discards cleanly.
func (b *streamBuffer) append(token string) bool {
	b.content.WriteString(token)
	if !b.hasContent && strings.TrimSpace(b.content.String()) != "" {
		b.hasContent = true
		b.phase = streamAccumulating
	}
	return b.hasContent
}

func (b *streamBuffer) live() bool {
	return b != nil && (b.phase == streamPending || b.phase == streamAccumulating)
}

// handleStreamStart creates the stream buffer. A stream_start while a
// buffer is live is a protocol violation; the live buffer is finalized
// first, then recreated.
func (s *Service) handleStreamStart() {
	if s.stream.live() {
		s.log.Warn("stream_start while stream live, finalizing previous")
		s.finalizeStream()
	}
	s.stream = newStreamBuffer(s.session.ID, s.now())
	s.session.Active = true
}

// handleToken appends one token and re-renders the whole accumulated
// content. Rendering from scratch on every token is deliberate: a
// partial fence or inline marker never renders malformed, at O(n²)
// total render cost over the response.
func (s *Service) handleToken(token string) {
	if !s.stream.live() {
		s.log.Trace("token without live stream dropped")
		return
	}
	if !s.stream.append(token) {
		return
	}
	s.sink.OnTranscript(schema.TranscriptEvent{
		SessionID: s.stream.sessionID,
		Lines:     s.renderer.Render(s.stream.content.String()),
	})
}

// finalizeStream ends the live stream. Zero accumulated content
// discards the buffer silently: a backend retry producing an empty
// start/end pair must not leave an empty message visible.
func (s *Service) finalizeStream() {
	if !s.stream.live() {
		return
	}
	buf := s.stream
	buf.phase = streamFinalized
	s.stream = nil
	s.session.Active = false
	if !buf.hasContent {
		s.log.Debug("empty stream discarded")
		return
	}
	s.sink.OnTranscript(schema.TranscriptEvent{
		SessionID: buf.sessionID,
		Lines:     s.renderer.RenderFinal(buf.content.String()),
		Final:     true,
	})
}

// Thinking stream: reasoning tokens accumulate separately and never
// leak into the response content.

func (s *Service) handleThinkingStart(title string) {
	s.thinking.Reset()
	s.thinkingTitle = title
	s.thinkingActive = true
	s.emitThinking()
}

func (s *Service) handleThinkingToken(token string) {
	if !s.thinkingActive {
		return
	}
	s.thinking.WriteString(token)
	s.emitThinking()
}

func (s *Service) handleThinkingEnd() {
	if !s.thinkingActive {
		return
	}
	s.thinkingActive = false
	s.emitThinking()
}

func (s *Service) emitThinking() {
	var lines []string
	if s.thinkingTitle != "" {
		lines = append(lines, s.thinkingTitle)
	}
	if content := s.thinking.String(); content != "" {
		lines = append(lines, strings.Split(content, "\n")...)
	}
	s.sink.OnThinking(schema.ThinkingEvent{
		SessionID: s.session.ID,
		Lines:     lines,
		Active:    s.thinkingActive,
	})
}
