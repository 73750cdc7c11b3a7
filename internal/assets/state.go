package assets

import "fmt"

// State is the lifecycle position of an asset.
type State string

const (
	StateUploading      State = "uploading"
	StateProbing        State = "probing"
	StateTranscoding    State = "transcoding"
	StateReady          State = "ready"
	StatePartiallyReady State = "partially_ready"
	StateFailed         State = "failed"
)

var transitions = map[State][]State{
	StateUploading:   {StateProbing, StateFailed},
	StateProbing:     {StateTranscoding, StateFailed},
	StateTranscoding: {StateReady, StatePartiallyReady, StateFailed},
}

// To validates the transition s -> next and returns next.
func (s State) To(next State) (State, error) {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, fmt.Errorf("invalid asset state transition %s -> %s", s, next)
}

// Terminal reports whether no further transitions exist.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Settle picks the terminal state after transcoding. The original is always
// retained, so an asset with zero successful tiers is still partially ready.
func Settle(r Renditions) State {
	if len(r) > 0 && r.Succeeded() == len(r) {
		return StateReady
	}
	return StatePartiallyReady
}
