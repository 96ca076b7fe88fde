package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Note that a missing
// actor is NOT an error: the engine returns a sentinel result for it.

var (
	// Graph errors
	ErrInvalidWeight = errors.New("interaction weight must be positive")
	ErrSelfEndorse   = errors.New("self-endorsement edges are ignored")
	ErrEmptyActorID  = errors.New("actor id must not be empty")

	// Collaborator errors
	ErrVerifierDown = errors.New("content verifier unreachable")
	ErrNoVerifier   = errors.New("no content verifier configured")

	// Flag errors
	ErrInvalidFlag   = errors.New("flag record missing reporter or target")
	ErrBadConfidence = errors.New("flag confidence must be within [0, 1]")
)
