package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/model"
	"casino-table-bot/internal/pkg/lock"
	"casino-table-bot/internal/repository"
)

// DefaultLockTimeout is used when no channel lock timeout is configured.
const DefaultLockTimeout = 5 * time.Second

type outcome int

const (
	keep outcome = iota
	persist
	drop
)

// TableService runs every table operation of a channel under that
// channel's lock and inside one transaction: load, apply, persist, commit.
type TableService struct {
	uow         UnitOfWork
	registry    *game.Registry
	env         game.Env
	locks       *lock.Keyed[int64]
	lockTimeout time.Duration
}

// NewTableService creates a new TableService instance.
func NewTableService(uow UnitOfWork, registry *game.Registry, env game.Env, lockTimeout time.Duration) *TableService {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &TableService{
		uow:         uow,
		registry:    registry,
		env:         env,
		locks:       lock.New[int64](),
		lockTimeout: lockTimeout,
	}
}

// Rules returns the economy the service was built with.
func (s *TableService) Rules() chips.Rules {
	return s.env.Rules
}

func (s *TableService) load(ctx context.Context, sess repository.Session, channelID int64) (game.Variant, error) {
	row, players, err := sess.Games().Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return nil, game.ErrNoGame
		}
		return nil, err
	}
	return decode(s.registry, s.env, row, players)
}

func (s *TableService) save(ctx context.Context, sess repository.Session, v game.Variant) error {
	row, players, err := encode(v)
	if err != nil {
		return err
	}
	return sess.Games().Save(ctx, row, players)
}

// run loads the channel's table, hands it to fn and writes back whatever
// fn asks for. A refusal from fn rolls the transaction back untouched.
func (s *TableService) run(ctx context.Context, op string, channelID int64, fn func(v game.Variant) (outcome, error)) error {
	refused := false
	err := s.locks.WithLockContext(ctx, channelID, s.lockTimeout, func() error {
		return s.uow.InTx(ctx, func(sess repository.Session) error {
			v, err := s.load(ctx, sess, channelID)
			if err != nil {
				refused = errors.Is(err, game.ErrNoGame)
				return err
			}
			out, err := fn(v)
			if err != nil {
				refused = true
				return err
			}
			switch out {
			case persist:
				return s.save(ctx, sess, v)
			case drop:
				_, err := sess.Games().Delete(ctx, channelID)
				return err
			}
			return nil
		})
	})
	if err != nil {
		ev := log.Error()
		if refused {
			ev = log.Debug()
		}
		ev.Err(err).Str("op", op).Int64("channel_id", channelID).Msg("table operation failed")
	}
	return err
}

// view runs fn read-only.
func (s *TableService) view(ctx context.Context, op string, channelID int64, fn func(v game.Variant) error) error {
	return s.run(ctx, op, channelID, func(v game.Variant) (outcome, error) {
		return keep, fn(v)
	})
}

func as[T game.Variant](v game.Variant) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, game.ErrWrongType
	}
	return t, nil
}

// event starts an Info log line carrying the table's correlation fields.
func event(v game.Variant, userID int64) *zerolog.Event {
	g := v.Base()
	ev := log.Info().
		Int64("channel_id", g.ChannelID).
		Str("game_type", string(g.Type))
	if userID != 0 {
		ev = ev.Int64("user_id", userID)
	}
	if g.RoundID != uuid.Nil {
		ev = ev.Str("round_id", g.RoundID.String())
	}
	if g.MidRound() {
		ev = ev.Str("bet", g.Bet.String())
	}
	return ev
}

func snapshot(seat *game.Seat) game.Seat {
	c := *seat
	c.Forfeits = append([]game.Forfeit(nil), seat.Forfeits...)
	return c
}

// Create opens a table of type t in the channel.
func (s *TableService) Create(ctx context.Context, channelID int64, t game.Type, stake game.Stake) (*game.Game, error) {
	if !s.registry.Has(t) {
		return nil, game.ErrUnknownType
	}
	if !stake.Valid() {
		return nil, game.ErrInvalidStake
	}

	var created game.Game
	err := s.locks.WithLockContext(ctx, channelID, s.lockTimeout, func() error {
		return s.uow.InTx(ctx, func(sess repository.Session) error {
			v, err := s.registry.Open(game.Game{ChannelID: channelID, Type: t, Stake: stake}, s.env)
			if err != nil {
				return err
			}
			row, players, err := encode(v)
			if err != nil {
				return err
			}
			if err := sess.Games().Create(ctx, row, players); err != nil {
				if errors.Is(err, repository.ErrGameExists) {
					return game.ErrAlreadyExists
				}
				return err
			}
			created = *v.Base()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("channel_id", channelID).
		Str("game_type", string(t)).
		Str("stake", stake.String()).
		Msg("table created")
	return &created, nil
}

// TableView is a read-only copy of a table.
type TableView struct {
	Game       game.Game
	MaxPlayers int
	Seats      []game.Seat
	// BetTurn is the seat that proposes the next bet, -1 without players.
	BetTurn int
}

// Show returns the channel's table.
func (s *TableService) Show(ctx context.Context, channelID int64) (*TableView, error) {
	var tv *TableView
	err := s.view(ctx, "show", channelID, func(v game.Variant) error {
		tv = &TableView{Game: *v.Base(), MaxPlayers: v.MaxPlayers()}
		tv.BetTurn, _ = game.BetTurnSeat(v)
		for _, seat := range v.Seats() {
			tv.Seats = append(tv.Seats, snapshot(seat))
		}
		return nil
	})
	return tv, err
}

// List returns the base rows of every open table.
func (s *TableService) List(ctx context.Context) ([]*model.GameRow, error) {
	var rows []*model.GameRow
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		rows, err = sess.Games().List(ctx)
		return err
	})
	return rows, err
}

// Join seats userID with the starting stash.
func (s *TableService) Join(ctx context.Context, channelID, userID int64, name string) (*game.JoinResult, error) {
	var res *game.JoinResult
	err := s.run(ctx, "join", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if res, err = game.Join(v, userID, name, s.env.Rules.StartingChips); err != nil {
			return keep, err
		}
		event(v, userID).Str("name", res.Name).Int("players", res.Players).Msg("player joined")
		return persist, nil
	})
	return res, err
}

// Bet records userID's bet and starts the round once bets align.
func (s *TableService) Bet(ctx context.Context, channelID, userID int64, bet chips.Vector) (*game.BetResult, error) {
	var res *game.BetResult
	err := s.run(ctx, "bet", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if res, err = game.PlaceBet(v, s.env.Rules, userID, bet); err != nil {
			return keep, err
		}
		if res.Round != nil {
			event(v, userID).Ints("dealt", res.Round.Dealt).Bool("shuffled", res.Round.Shuffled).Msg("round started")
		} else {
			event(v, userID).Str("player_bet", bet.String()).Ints("pending", res.Pending).Msg("bet placed")
		}
		return persist, nil
	})
	return res, err
}

// Concede removes userID between rounds, ending the table when it empties
// or leaves one player of a started game standing.
func (s *TableService) Concede(ctx context.Context, channelID, userID int64) (*game.ConcedeResult, error) {
	var res *game.ConcedeResult
	err := s.run(ctx, "concede", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if res, err = game.Concede(v, userID); err != nil {
			return keep, err
		}
		if !res.Ended {
			event(v, userID).Int("players", res.Remaining).Msg("player conceded")
			return persist, nil
		}
		ev := event(v, userID)
		if res.Winner != nil {
			ev = ev.Int64("winner_id", res.Winner.UserID).Str("reward", res.Reward.String())
		}
		ev.Msg("table ended by concession")
		return drop, nil
	})
	return res, err
}

// Use spends chips from userID's stash between rounds.
func (s *TableService) Use(ctx context.Context, channelID, userID int64, amount chips.Vector) (*game.Seat, error) {
	var seat game.Seat
	err := s.run(ctx, "use", channelID, func(v game.Variant) (outcome, error) {
		p, err := game.UseChips(v, userID, amount)
		if err != nil {
			return keep, err
		}
		seat = snapshot(p)
		event(v, userID).Str("amount", amount.String()).Msg("chips used")
		return persist, nil
	})
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// Convert applies conversion index n times to userID's stash.
func (s *TableService) Convert(ctx context.Context, channelID, userID int64, index int, n int64) (*game.ConvertResult, error) {
	var res *game.ConvertResult
	err := s.run(ctx, "convert", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if res, err = game.Convert(v, s.env.Rules, userID, index, n); err != nil {
			return keep, err
		}
		event(v, userID).
			Int("conversion", index).
			Int64("times", n).
			Str("consumed", res.Consumed.String()).
			Str("produced", res.Produced.String()).
			Msg("chips converted")
		return persist, nil
	})
	return res, err
}

// Rename changes userID's display name at the table and returns the old one.
func (s *TableService) Rename(ctx context.Context, channelID, userID int64, name string) (string, error) {
	var old string
	err := s.run(ctx, "rename", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if old, err = game.Rename(v, userID, name); err != nil {
			return keep, err
		}
		event(v, userID).Str("old_name", old).Msg("player renamed")
		return persist, nil
	})
	return old, err
}

// AddForfeit puts an entry on target's list and returns the list length.
func (s *TableService) AddForfeit(ctx context.Context, channelID, authorID, targetID int64, f game.Forfeit) (int, error) {
	var n int
	err := s.run(ctx, "add_forfeit", channelID, func(v game.Variant) (outcome, error) {
		target, err := game.AddForfeit(v, authorID, targetID, f)
		if err != nil {
			return keep, err
		}
		n = len(target.Forfeits)
		event(v, authorID).Int64("target_id", targetID).Msg("forfeit added")
		return persist, nil
	})
	return n, err
}

func (s *TableService) RemoveForfeit(ctx context.Context, channelID, authorID, targetID int64, index int) (game.Forfeit, error) {
	var f game.Forfeit
	err := s.run(ctx, "remove_forfeit", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if f, err = game.RemoveForfeit(v, authorID, targetID, index); err != nil {
			return keep, err
		}
		event(v, authorID).Int64("target_id", targetID).Int("index", index).Msg("forfeit removed")
		return persist, nil
	})
	return f, err
}

func (s *TableService) ToggleForfeit(ctx context.Context, channelID, authorID, targetID int64, index int) (game.Forfeit, error) {
	var f game.Forfeit
	err := s.run(ctx, "toggle_forfeit", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if f, err = game.ToggleForfeit(v, authorID, targetID, index); err != nil {
			return keep, err
		}
		event(v, authorID).Int64("target_id", targetID).Int("index", index).Bool("done", f.Done).Msg("forfeit toggled")
		return persist, nil
	})
	return f, err
}

// ListForfeits returns target's list as seen by viewer.
func (s *TableService) ListForfeits(ctx context.Context, channelID, viewerID, targetID int64) (game.ForfeitList, error) {
	var list game.ForfeitList
	err := s.view(ctx, "list_forfeits", channelID, func(v game.Variant) error {
		var err error
		list, err = game.ListForfeits(v, viewerID, targetID)
		return err
	})
	return list, err
}
