package domain

import "fmt"

// Phase is the discrete state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingAnswer
	PhaseResolved
	PhaseWon
	PhaseLost
)

var phaseNames = map[Phase]string{
	PhaseIdle:           "idle",
	PhaseAwaitingAnswer: "awaitingAnswer",
	PhaseResolved:       "resolved",
	PhaseWon:            "won",
	PhaseLost:           "lost",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether no further answers are accepted until a restart.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}
