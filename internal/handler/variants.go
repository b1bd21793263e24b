package handler

import (
	"context"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/game/blackjack"
)

// HandleHit handles /hit.
func (h *TableHandler) HandleHit(c tele.Context) error {
	return h.blackjackAction(c, "hit", h.tables.Hit)
}

// HandleStand handles /stand.
func (h *TableHandler) HandleStand(c tele.Context) error {
	return h.blackjackAction(c, "stand", h.tables.Stand)
}

func (h *TableHandler) blackjackAction(c tele.Context, op string, act func(ctx context.Context, channelID, userID int64) (*blackjack.ActionResult, error)) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	res, err := act(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, op, err)
	}
	return c.Reply(renderAction(res, h.names(ctx, c.Chat().ID)))
}

// HandleHand handles /hand and sends the sender's blackjack hand privately.
func (h *TableHandler) HandleHand(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	hand, err := h.tables.Hand(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, "hand", err)
	}
	return whisper(c, renderHands([]blackjack.HandView{*hand}))
}

// HandleHands handles /hands. Everyone else's hole card stays hidden.
func (h *TableHandler) HandleHands(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	hands, err := h.tables.Hands(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, "hands", err)
	}
	return c.Reply(renderHands(hands))
}

// HandlePlay handles /play <number> for the tournament.
func (h *TableHandler) HandlePlay(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /play <card number>\nSee your hand with /cards")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return fail(c, "play", err)
	}

	res, err := h.tables.PlayCard(ctx, c.Chat().ID, sender.ID, index)
	if err != nil {
		return fail(c, "play", err)
	}
	return c.Reply(renderPlay(res, h.names(ctx, c.Chat().ID)))
}

// HandleCards handles /cards and sends the sender's tournament hand privately.
func (h *TableHandler) HandleCards(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	hand, err := h.tables.Cards(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, "cards", err)
	}
	return whisper(c, renderTourneyHand(hand))
}

// HandleRecon handles /recon.
func (h *TableHandler) HandleRecon(c tele.Context) error {
	ctx := context.Background()
	if c.Chat() == nil {
		return nil
	}

	recon, err := h.tables.Recon(ctx, c.Chat().ID)
	if err != nil {
		return fail(c, "recon", err)
	}
	return c.Reply(renderRecon(recon))
}

// HandleWinBet handles /win_bet at a misc table.
func (h *TableHandler) HandleWinBet(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	res, err := h.tables.WinBet(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, "win_bet", err)
	}
	return c.Reply(renderWin(res, h.names(ctx, c.Chat().ID)))
}

// HandleDeck handles /deck [full].
func (h *TableHandler) HandleDeck(c tele.Context) error {
	ctx := context.Background()
	if c.Chat() == nil {
		return nil
	}

	full := len(c.Args()) > 0 && strings.EqualFold(c.Args()[0], "full")
	res, err := h.tables.Peek(ctx, c.Chat().ID, full)
	if err != nil {
		return fail(c, "deck", err)
	}
	return c.Reply(renderPeek(res))
}

// HandleDraw handles /draw <n> [private].
func (h *TableHandler) HandleDraw(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 || len(args) > 2 {
		return c.Reply("❌ Usage: /draw <count> [private]")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Reply("❌ Count must be a number")
	}
	private := len(args) == 2 && strings.EqualFold(args[1], "private")

	res, err := h.tables.Draw(ctx, c.Chat().ID, sender.ID, n)
	if err != nil {
		return fail(c, "draw", err)
	}
	if private {
		if err := whisper(c, renderDraw(res)); err != nil {
			return err
		}
		return c.Reply("🃏 " + res.Name + " draws " + strconv.Itoa(len(res.Cards)) + " cards face down")
	}
	return c.Reply(renderDraw(res))
}

// HandleShuffle handles /shuffle at a misc table.
func (h *TableHandler) HandleShuffle(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	remaining, err := h.tables.ShuffleDeck(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, "shuffle", err)
	}
	return c.Reply("🔀 The deck was shuffled, " + strconv.Itoa(remaining) + " cards")
}

// HandleRoll handles /roll <dice> <sides>.
func (h *TableHandler) HandleRoll(c tele.Context) error {
	ctx := context.Background()
	if c.Chat() == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 2 {
		return c.Reply("❌ Usage: /roll <dice> <sides>")
	}
	amount, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Reply("❌ Dice count must be a number")
	}
	sides, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return c.Reply("❌ Sides must be a number")
	}

	res, err := h.tables.Roll(ctx, c.Chat().ID, amount, sides)
	if err != nil {
		return fail(c, "roll", err)
	}
	return c.Reply(renderRoll(res))
}
