// Package ipc implements the single-instance control channel: a unix socket
// carrying newline-framed JSON commands between hush invocations.
package ipc

// Request is one command sent to the session owner.
type Request struct {
	Command string `json:"command"`
}

// Response reports the command outcome. State and Phase are filled for
// status queries; Phase carries the silence-detector phase when detection
// is active.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
