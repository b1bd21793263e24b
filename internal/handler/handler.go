// Package handler provides Telegram bot command handlers.
package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/game/misc"
	"casino-table-bot/internal/game/tourney"
	"casino-table-bot/internal/model"
	"casino-table-bot/internal/pkg/lock"
	"casino-table-bot/internal/service"
)

const apology = "❌ Something went wrong, please try again later"

var (
	errNoTarget      = errors.New("reply to a player's message or give their user ID")
	errMissingAmount = errors.New("give at least one chip amount")
	errBadAmount     = errors.New("chip amounts must be whole numbers")
)

// refusals are errors whose text can be shown to the user as is. The first
// match wins, so wrapped sentinels resolve to their own message.
var refusals = []error{
	errNoTarget,
	errMissingAmount,
	errBadAmount,

	game.ErrNoGame,
	game.ErrAlreadyExists,
	game.ErrWrongType,
	game.ErrUnknownType,
	game.ErrInvalidStake,
	game.ErrMidRound,
	game.ErrNotMidRound,
	game.ErrFull,
	game.ErrAlreadyJoined,
	game.ErrNotAPlayer,
	game.ErrZeroBet,
	game.ErrBetOverCap,
	game.ErrNotYourBet,
	game.ErrNotYourTurn,
	game.ErrZeroAmount,
	game.ErrInsufficientChips,
	game.ErrIndexOutOfRange,
	game.ErrSamePlayer,
	game.ErrInvalidForfeit,

	tourney.ErrCardOutOfRange,
	tourney.ErrCardPlayed,
	tourney.ErrAlreadySelected,
	misc.ErrDrawAmount,
	misc.ErrDiceAmount,
	misc.ErrDiceSides,
	deck.ErrInsufficientCards,

	chips.ErrLengthMismatch,
	chips.ErrNegativeAmount,
	chips.ErrUnknownDenomination,
	chips.ErrUnknownConversion,
	chips.ErrInvalidMultiplier,
	chips.ErrFractionalResult,
	chips.ErrOverflow,
	model.ErrEmptyName,

	service.ErrAccountNotFound,
	service.ErrAccountExists,
	service.ErrNameTaken,
	service.ErrSameName,
	service.ErrNotOwner,
	service.ErrInsufficientBalance,
	service.ErrInvalidAmount,
}

// explain turns err into a reply. The second result is false for errors the
// user cannot act on.
func explain(err error) (string, bool) {
	if errors.Is(err, lock.ErrLockTimeout) {
		return "⏳ The table is busy, please try again", true
	}
	for _, r := range refusals {
		if errors.Is(err, r) {
			return "❌ " + capitalize(r.Error()), true
		}
	}
	return apology, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fail replies with the translation of err and logs anything unexpected.
func fail(c tele.Context, op string, err error) error {
	msg, known := explain(err)
	if !known {
		ev := log.Error().Err(err).Str("op", op)
		if chat := c.Chat(); chat != nil {
			ev = ev.Int64("chat_id", chat.ID)
		}
		if sender := c.Sender(); sender != nil {
			ev = ev.Int64("user_id", sender.ID)
		}
		ev.Msg("Command failed")
	}
	return c.Reply(msg)
}

// displayName is the name a user joins a table with when they give none.
func displayName(u *tele.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return strconv.FormatInt(u.ID, 10)
}

// parseVector reads a chip vector from the leading amounts in args. Missing
// trailing denominations are zero.
func parseVector(args []string) (chips.Vector, error) {
	if len(args) == 0 {
		return chips.Vector{}, errMissingAmount
	}
	v, err := chips.Parse(args)
	if err != nil && !errors.Is(err, chips.ErrLengthMismatch) {
		return v, fmt.Errorf("%w: %w", errBadAmount, err)
	}
	return v, err
}

// parseIndex reads a 1-based position and returns it zero-based.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", game.ErrIndexOutOfRange, s)
	}
	return n - 1, nil
}

// target picks the user a command is aimed at: the author of the replied-to
// message, or else a user ID in the first argument, which is then consumed.
func target(c tele.Context, args []string) (int64, []string, error) {
	if msg := c.Message(); msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		return msg.ReplyTo.Sender.ID, args, nil
	}
	if len(args) == 0 {
		return 0, args, errNoTarget
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, args, errNoTarget
	}
	return id, args[1:], nil
}

// whisper sends text to the sender privately. In a private chat it simply
// replies.
func whisper(c tele.Context, text string) error {
	if chat := c.Chat(); chat != nil && chat.Type == tele.ChatPrivate {
		return c.Reply(text)
	}
	if _, err := c.Bot().Send(c.Sender(), text); err != nil {
		log.Debug().Err(err).Int64("user_id", c.Sender().ID).Msg("Private message failed")
		return c.Reply("📬 Start a private chat with me first so I can message you privately")
	}
	return nil
}
