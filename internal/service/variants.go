package service

import (
	"context"

	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/game/blackjack"
	"casino-table-bot/internal/game/misc"
	"casino-table-bot/internal/game/tourney"
)

// NewRegistry returns a registry holding every table type.
func NewRegistry() *game.Registry {
	r := game.NewRegistry()
	_ = r.Register(game.TypeBlackjack, blackjack.New)
	_ = r.Register(game.TypeTourney, tourney.New)
	_ = r.Register(game.TypeMisc, misc.New)
	return r
}

// ----------------------------------------------------------------------------
// Blackjack
// ----------------------------------------------------------------------------

func (s *TableService) blackjackAction(ctx context.Context, op string, channelID, userID int64, act func(*blackjack.Table) (*blackjack.ActionResult, error)) (*blackjack.ActionResult, error) {
	var res *blackjack.ActionResult
	err := s.run(ctx, op, channelID, func(v game.Variant) (outcome, error) {
		t, err := as[*blackjack.Table](v)
		if err != nil {
			return keep, err
		}
		// Captured before resolution closes the round.
		ev := event(v, userID)
		if res, err = act(t); err != nil {
			return keep, err
		}
		ev = ev.Int("value", res.Value).Bool("busted", res.Busted)
		if r := res.Resolution; r != nil {
			ev = ev.Ints("winners", r.Winners).Str("condition", string(r.Condition)).Bool("tie", r.Tie)
			if r.Tie {
				ev = ev.Str("raised_bet", r.Bet.String())
			}
		}
		ev.Msg("blackjack " + op)
		return persist, nil
	})
	return res, err
}

// Hit draws a card for userID. The result carries the round resolution
// when the hit ended it.
func (s *TableService) Hit(ctx context.Context, channelID, userID int64) (*blackjack.ActionResult, error) {
	return s.blackjackAction(ctx, "hit", channelID, userID, func(t *blackjack.Table) (*blackjack.ActionResult, error) {
		return t.Hit(userID)
	})
}

// Stand ends userID's turn.
func (s *TableService) Stand(ctx context.Context, channelID, userID int64) (*blackjack.ActionResult, error) {
	return s.blackjackAction(ctx, "stand", channelID, userID, func(t *blackjack.Table) (*blackjack.ActionResult, error) {
		return t.Stand(userID)
	})
}

// Hands returns every dealt hand as viewerID sees it.
func (s *TableService) Hands(ctx context.Context, channelID, viewerID int64) ([]blackjack.HandView, error) {
	var hands []blackjack.HandView
	err := s.view(ctx, "hands", channelID, func(v game.Variant) error {
		t, err := as[*blackjack.Table](v)
		if err != nil {
			return err
		}
		hands = t.Hands(viewerID)
		return nil
	})
	return hands, err
}

// Hand returns userID's own blackjack hand.
func (s *TableService) Hand(ctx context.Context, channelID, userID int64) (*blackjack.HandView, error) {
	var hand *blackjack.HandView
	err := s.view(ctx, "hand", channelID, func(v game.Variant) error {
		t, err := as[*blackjack.Table](v)
		if err != nil {
			return err
		}
		hand, err = t.HandOf(userID)
		return err
	})
	return hand, err
}

// ShowDeck lists a blackjack table's remaining cards, top first. Admin only.
func (s *TableService) ShowDeck(ctx context.Context, channelID int64) ([]deck.Card, error) {
	var cards []deck.Card
	err := s.view(ctx, "show_deck", channelID, func(v game.Variant) error {
		t, err := as[*blackjack.Table](v)
		if err != nil {
			return err
		}
		cards = t.ShowDeck()
		return nil
	})
	return cards, err
}

// ShuffleDeck rebuilds the deck of a blackjack or misc table.
func (s *TableService) ShuffleDeck(ctx context.Context, channelID, userID int64) (int, error) {
	var remaining int
	err := s.run(ctx, "shuffle", channelID, func(v game.Variant) (outcome, error) {
		switch t := v.(type) {
		case *blackjack.Table:
			t.ShuffleDeck()
			remaining = t.Deck.Remaining()
		case *misc.Table:
			if _, seat := game.Find(t, userID); seat == nil {
				return keep, game.ErrNotAPlayer
			}
			t.Shuffle()
			remaining = t.Deck.Remaining()
		default:
			return keep, game.ErrWrongType
		}
		event(v, userID).Msg("deck shuffled")
		return persist, nil
	})
	return remaining, err
}

// ----------------------------------------------------------------------------
// Tournament
// ----------------------------------------------------------------------------

// PlayCard lays down a card of userID's tournament hand.
func (s *TableService) PlayCard(ctx context.Context, channelID, userID int64, index int) (*tourney.PlayResult, error) {
	var res *tourney.PlayResult
	err := s.run(ctx, "play_card", channelID, func(v game.Variant) (outcome, error) {
		t, err := as[*tourney.Table](v)
		if err != nil {
			return keep, err
		}
		ev := event(v, userID)
		if res, err = t.PlayCard(userID, index); err != nil {
			return keep, err
		}
		ev = ev.Str("card", res.Card.String())
		if res.Match != nil {
			ev = ev.Int("match", res.Match.Number).Int("match_winner", res.Match.Winner)
		}
		if res.Round != nil {
			ev = ev.Int("round_winner", res.Round.Winner).Str("reward", res.Round.Reward.String())
		}
		ev.Msg("card played")
		return persist, nil
	})
	return res, err
}

// Cards returns userID's tournament hand.
func (s *TableService) Cards(ctx context.Context, channelID, userID int64) (*tourney.HandView, error) {
	var hand *tourney.HandView
	err := s.view(ctx, "cards", channelID, func(v game.Variant) error {
		t, err := as[*tourney.Table](v)
		if err != nil {
			return err
		}
		hand, err = t.HandOf(userID)
		return err
	})
	return hand, err
}

// Recon shows every tournament player's points and played cards.
func (s *TableService) Recon(ctx context.Context, channelID int64) ([]tourney.Recon, error) {
	var recon []tourney.Recon
	err := s.view(ctx, "recon", channelID, func(v game.Variant) error {
		t, err := as[*tourney.Table](v)
		if err != nil {
			return err
		}
		recon = t.Recon()
		return nil
	})
	return recon, err
}

// ----------------------------------------------------------------------------
// Misc
// ----------------------------------------------------------------------------

// WinBet pays the round bet to userID at a misc table.
func (s *TableService) WinBet(ctx context.Context, channelID, userID int64) (*misc.WinResult, error) {
	var res *misc.WinResult
	err := s.run(ctx, "win_bet", channelID, func(v game.Variant) (outcome, error) {
		t, err := as[*misc.Table](v)
		if err != nil {
			return keep, err
		}
		ev := event(v, userID)
		if res, err = t.WinBet(userID); err != nil {
			return keep, err
		}
		ev.Str("payout", res.Payout.String()).Msg("bet won")
		return persist, nil
	})
	return res, err
}

// Peek shows a misc table's deck without drawing.
func (s *TableService) Peek(ctx context.Context, channelID int64, full bool) (misc.PeekResult, error) {
	var res misc.PeekResult
	err := s.view(ctx, "peek", channelID, func(v game.Variant) error {
		t, err := as[*misc.Table](v)
		if err != nil {
			return err
		}
		res = t.Peek(full)
		return nil
	})
	return res, err
}

// Draw takes n cards from a misc table's deck for userID.
func (s *TableService) Draw(ctx context.Context, channelID, userID int64, n int) (*misc.DrawResult, error) {
	var res *misc.DrawResult
	err := s.run(ctx, "draw", channelID, func(v game.Variant) (outcome, error) {
		t, err := as[*misc.Table](v)
		if err != nil {
			return keep, err
		}
		if res, err = t.Draw(userID, n); err != nil {
			return keep, err
		}
		event(v, userID).Int("cards", len(res.Cards)).Int("remaining", res.Remaining).Msg("cards drawn")
		return persist, nil
	})
	return res, err
}

// Roll throws dice at a misc table.
func (s *TableService) Roll(ctx context.Context, channelID int64, amount int, sides int64) (*misc.RollResult, error) {
	var res *misc.RollResult
	err := s.view(ctx, "roll", channelID, func(v game.Variant) error {
		t, err := as[*misc.Table](v)
		if err != nil {
			return err
		}
		res, err = t.Roll(amount, sides)
		return err
	})
	return res, err
}
