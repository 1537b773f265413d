package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been attached.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionSetNotFound indicates a named question set could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrInvalidQuestionSet rejects a set that violates the length or question shape rules.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrNoActiveQuestion is returned when the session is idle or finished.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrOrderingViolation indicates an answer arrived outside the awaiting-answer phase.
	ErrOrderingViolation = errors.New("answer submitted out of order")
	// ErrInvalidChoiceIndex indicates the selected choice is outside [0,3].
	ErrInvalidChoiceIndex = errors.New("invalid choice index")
	// ErrSourceFetch wraps failures of the upstream question generator.
	ErrSourceFetch = errors.New("question source fetch failed")
	// ErrSourceParse wraps payloads that could not be parsed or validated.
	ErrSourceParse = errors.New("question source payload invalid")
)
