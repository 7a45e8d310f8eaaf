// Package fsm defines the dictation session lifecycle state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateError        State = "error"
)

const (
	EventStart Event = "start"
	// EventStop is a user-requested stop; EventAutoStop is raised by the
	// silence detector. Both end the recording and start transcription.
	EventStop        Event = "stop"
	EventAutoStop    Event = "autostop"
	EventCancel      Event = "cancel"
	EventTranscribed Event = "transcribed"
	EventFail        Event = "fail"
	EventReset       Event = "reset"
)

// transitions lists every legal edge except EventFail, which is accepted
// from any state.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStart: StateRecording,
	},
	StateRecording: {
		EventStop:     StateTranscribing,
		EventAutoStop: StateTranscribing,
		EventCancel:   StateIdle,
	},
	StateTranscribing: {
		EventTranscribed: StateIdle,
	},
	StateError: {
		EventReset: StateIdle,
	},
}

func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	edges, known := transitions[current]
	if !known {
		return current, fmt.Errorf("unknown state %q", current)
	}

	next, legal := edges[event]
	if !legal {
		return current, fmt.Errorf("invalid transition: %s --(%s)--> ?", current, event)
	}
	return next, nil
}
