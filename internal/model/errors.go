package model

import "errors"

// Common errors used across the application
var (
	// Identity errors
	ErrValidation       = errors.New("invalid or missing field")
	ErrNotAuthenticated = errors.New("identity not established")
	ErrPlayerNotFound   = errors.New("player not found")

	// Lobby errors
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrLobbyFull      = errors.New("lobby is full")
	ErrAlreadyMember  = errors.New("player is already in this lobby")
	ErrAlreadyInMatch = errors.New("player is already in an active match")

	// Match errors
	ErrMatchNotFound = errors.New("match not found")
	ErrNotYourTurn   = errors.New("not this player's turn")
	ErrInvalidMove   = errors.New("invalid move")
	ErrMatchOver     = errors.New("match is already over")
	ErrUnauthorized  = errors.New("player is not a participant of this match")

	// Unexpected faults while applying state changes
	ErrInternal = errors.New("internal error")
)
