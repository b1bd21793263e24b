package game

import "errors"

var (
	ErrNoGame        = errors.New("no game in this channel")
	ErrAlreadyExists = errors.New("a game already exists in this channel")
	ErrWrongType     = errors.New("the game in this channel is a different type")
	ErrUnknownType   = errors.New("unknown game type")
	ErrInvalidStake  = errors.New("stake must be low, normal or high")

	ErrMidRound      = errors.New("a round is in progress")
	ErrNotMidRound   = errors.New("no round is in progress")
	ErrFull          = errors.New("the table is full")
	ErrAlreadyJoined = errors.New("already playing in this game")
	ErrNotAPlayer    = errors.New("not a player in this game")

	ErrZeroBet           = errors.New("bet must not be zero")
	ErrBetOverCap        = errors.New("bet exceeds the bet cap")
	ErrNotYourBet        = errors.New("waiting for the bet-turn player to propose a bet")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrZeroAmount        = errors.New("amount must not be zero")
	ErrInsufficientChips = errors.New("not enough chips")

	ErrIndexOutOfRange = errors.New("index out of range")
	ErrSamePlayer      = errors.New("the two players must be different")
	ErrInvalidForfeit  = errors.New("forfeit needs a description of at most 100 characters and a cost of 1 to 999")
)
