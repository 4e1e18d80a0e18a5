package schema

import "errors"

var (
	// ErrMalformedEnvelope indicates an undecodable transport frame.
	ErrMalformedEnvelope = errors.New("malformed envelope")
	// ErrNotConnected indicates the transport is not open.
	ErrNotConnected = errors.New("transport not open")
	// ErrInvalidURL indicates a preview URL could not be normalized.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidClientID indicates an invalid transport client id.
	ErrInvalidClientID = errors.New("invalid client id")
	// ErrAppNotFound indicates an unknown taskbar app id.
	ErrAppNotFound = errors.New("taskbar app not found")
	// ErrNoPreview indicates no preview content is currently shown.
	ErrNoPreview = errors.New("no preview open")
	// ErrEmptyMessage indicates an outbound chat message was empty.
	ErrEmptyMessage = errors.New("empty message")
	// ErrMissingField indicates a required form field was empty.
	ErrMissingField = errors.New("required field missing")
	// ErrSessionNotFound indicates a session id is unknown to the backend.
	ErrSessionNotFound = errors.New("session not found")
	// ErrDesktopUnavailable indicates the remote-desktop bridge failed to start.
	ErrDesktopUnavailable = errors.New("remote desktop unavailable")
)
