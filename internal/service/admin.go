package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/repository"
)

// Administrative table overrides. Callers are expected to have checked the
// admin list already.

// ForceEnd deletes the channel's table in any state. It reports whether a
// table existed.
func (s *TableService) ForceEnd(ctx context.Context, channelID int64) (bool, error) {
	var deleted bool
	err := s.locks.WithLockContext(ctx, channelID, s.lockTimeout, func() error {
		return s.uow.InTx(ctx, func(sess repository.Session) error {
			var err error
			deleted, err = sess.Games().Delete(ctx, channelID)
			return err
		})
	})
	if err != nil {
		return false, err
	}
	if deleted {
		log.Info().Int64("channel_id", channelID).Msg("table force-ended")
	}
	return deleted, nil
}

// Kick removes a player between rounds and returns their name.
func (s *TableService) Kick(ctx context.Context, channelID, userID int64) (string, error) {
	var name string
	err := s.run(ctx, "kick", channelID, func(v game.Variant) (outcome, error) {
		var err error
		if name, err = game.Kick(v, userID); err != nil {
			return keep, err
		}
		event(v, userID).Msg("player kicked")
		return persist, nil
	})
	return name, err
}

func (s *TableService) adminSeat(ctx context.Context, op string, channelID, userID int64, apply func(game.Variant) (*game.Seat, error)) (*game.Seat, error) {
	var seat game.Seat
	err := s.run(ctx, op, channelID, func(v game.Variant) (outcome, error) {
		p, err := apply(v)
		if err != nil {
			return keep, err
		}
		seat = snapshot(p)
		event(v, userID).Str("op", op).Msg("admin override")
		return persist, nil
	})
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

// SetChips overwrites a player's stash.
func (s *TableService) SetChips(ctx context.Context, channelID, userID int64, amount chips.Vector) (*game.Seat, error) {
	return s.adminSeat(ctx, "set_chips", channelID, userID, func(v game.Variant) (*game.Seat, error) {
		return game.SetChips(v, userID, amount)
	})
}

// SetUsed overwrites a player's used-chip tracker.
func (s *TableService) SetUsed(ctx context.Context, channelID, userID int64, amount chips.Vector) (*game.Seat, error) {
	return s.adminSeat(ctx, "set_used", channelID, userID, func(v game.Variant) (*game.Seat, error) {
		return game.SetUsed(v, userID, amount)
	})
}

// SetBetTurn points the next bet proposal at seat index.
func (s *TableService) SetBetTurn(ctx context.Context, channelID int64, index int) (*game.Seat, error) {
	return s.adminSeat(ctx, "set_bet_turn", channelID, 0, func(v game.Variant) (*game.Seat, error) {
		return game.SetBetTurn(v, index)
	})
}

// Merge folds absorbed into kept.
func (s *TableService) Merge(ctx context.Context, channelID, keptID, absorbedID int64) (*game.Seat, error) {
	return s.adminSeat(ctx, "merge", channelID, keptID, func(v game.Variant) (*game.Seat, error) {
		return game.Merge(v, keptID, absorbedID)
	})
}

// SetBet overwrites the round bet.
func (s *TableService) SetBet(ctx context.Context, channelID int64, bet chips.Vector) error {
	return s.run(ctx, "set_bet", channelID, func(v game.Variant) (outcome, error) {
		if err := game.SetBet(v, bet); err != nil {
			return keep, err
		}
		event(v, 0).Str("op", "set_bet").Msg("admin override")
		return persist, nil
	})
}

// SetStake changes the table's stake.
func (s *TableService) SetStake(ctx context.Context, channelID int64, stake game.Stake) error {
	return s.run(ctx, "set_stake", channelID, func(v game.Variant) (outcome, error) {
		if err := game.SetStake(v, stake); err != nil {
			return keep, err
		}
		event(v, 0).Str("op", "set_stake").Str("stake", stake.String()).Msg("admin override")
		return persist, nil
	})
}

// SwapForfeits exchanges two players' forfeit lists.
func (s *TableService) SwapForfeits(ctx context.Context, channelID, firstID, secondID int64) error {
	return s.run(ctx, "swap_forfeits", channelID, func(v game.Variant) (outcome, error) {
		if _, _, err := game.SwapForfeits(v, firstID, secondID); err != nil {
			return keep, err
		}
		event(v, firstID).Int64("target_id", secondID).Msg("forfeits swapped")
		return persist, nil
	})
}
