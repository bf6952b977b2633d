// Package service provides the relay's request-level business logic:
// the message handling state machine and webhook registration.
package service

// State is one step of handling a single inbound message.
type State int

const (
	StateReceived State = iota
	StateParsed
	StateLogLoaded
	StateLogAppendedUser
	StateInferenceInvoked
	StateLogAppendedAssistant
	StateLogTrimmed
	StateLogPersisted
	StateRelayed
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateReceived:             "received",
	StateParsed:               "parsed",
	StateLogLoaded:            "log_loaded",
	StateLogAppendedUser:      "log_appended_user",
	StateInferenceInvoked:     "inference_invoked",
	StateLogAppendedAssistant: "log_appended_assistant",
	StateLogTrimmed:           "log_trimmed",
	StateLogPersisted:         "log_persisted",
	StateRelayed:              "relayed",
	StateDone:                 "done",
	StateFailed:               "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// next is the only successor of each non-terminal state on the success path.
var next = map[State]State{
	StateReceived:             StateParsed,
	StateParsed:               StateLogLoaded,
	StateLogLoaded:            StateLogAppendedUser,
	StateLogAppendedUser:      StateInferenceInvoked,
	StateInferenceInvoked:     StateLogAppendedAssistant,
	StateLogAppendedAssistant: StateLogTrimmed,
	StateLogTrimmed:           StateLogPersisted,
	StateLogPersisted:         StateRelayed,
	StateRelayed:              StateDone,
}

// Next returns the success-path successor of s. Terminal states return
// themselves.
func (s State) Next() State {
	if n, ok := next[s]; ok {
		return n
	}
	return s
}
