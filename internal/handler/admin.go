package handler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/service"
)

// AdminHandler handles table overrides and account administration. Access
// is checked by the admin middleware.
type AdminHandler struct {
	tables   *service.TableService
	accounts *service.AccountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(tables *service.TableService, accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{tables: tables, accounts: accounts}
}

// audit logs an executed admin operation.
func audit(c tele.Context, operation string) *zerolog.Event {
	ev := log.Info().Int64("admin_id", c.Sender().ID).Str("operation", operation)
	if chat := c.Chat(); chat != nil {
		ev = ev.Int64("chat_id", chat.ID)
	}
	return ev
}

// HandleForceEnd handles /force_end_game.
func (h *AdminHandler) HandleForceEnd(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	ended, err := h.tables.ForceEnd(ctx, c.Chat().ID)
	if err != nil {
		return fail(c, "force_end_game", err)
	}
	if !ended {
		return fail(c, "force_end_game", game.ErrNoGame)
	}
	audit(c, "force_end_game").Msg("Admin operation executed")
	return c.Reply("🛑 The game in this channel has been ended")
}

// HandleKick handles /kick [user_id], or as a reply to the player.
func (h *AdminHandler) HandleKick(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	targetID, _, err := target(c, c.Args())
	if err != nil {
		return fail(c, "kick", err)
	}

	name, err := h.tables.Kick(ctx, c.Chat().ID, targetID)
	if err != nil {
		return fail(c, "kick", err)
	}
	audit(c, "kick").Int64("target_id", targetID).Msg("Admin operation executed")
	return c.Reply("👢 " + name + " was removed from the table")
}

func (h *AdminHandler) setVector(c tele.Context, op, label string, apply func(ctx context.Context, channelID, userID int64, amount chips.Vector) (*game.Seat, error)) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	targetID, args, err := target(c, c.Args())
	if err != nil {
		return fail(c, op, err)
	}
	amount, err := parseVector(args)
	if err != nil {
		return fail(c, op, err)
	}

	seat, err := apply(ctx, c.Chat().ID, targetID, amount)
	if err != nil {
		return fail(c, op, err)
	}
	audit(c, op).Int64("target_id", targetID).Str("amount", amount.String()).Msg("Admin operation executed")
	return c.Reply(fmt.Sprintf("✅ %s %s set to %s", seat.Name, label, amount))
}

// HandleSetChips handles /set_chips [user_id] <amounts...>.
func (h *AdminHandler) HandleSetChips(c tele.Context) error {
	return h.setVector(c, "set_chips", "chips", h.tables.SetChips)
}

// HandleSetUsed handles /set_used [user_id] <amounts...>.
func (h *AdminHandler) HandleSetUsed(c tele.Context) error {
	return h.setVector(c, "set_used", "used chips", h.tables.SetUsed)
}

// HandleSetBet handles /set_bet <amounts...>.
func (h *AdminHandler) HandleSetBet(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	bet, err := parseVector(c.Args())
	if err != nil {
		return fail(c, "set_bet", err)
	}
	if err := h.tables.SetBet(ctx, c.Chat().ID, bet); err != nil {
		return fail(c, "set_bet", err)
	}
	audit(c, "set_bet").Str("bet", bet.String()).Msg("Admin operation executed")
	return c.Reply("✅ Round bet set to " + bet.String())
}

// HandleSetStake handles /set_stake <low|normal|high>.
func (h *AdminHandler) HandleSetStake(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /set_stake <low|normal|high>")
	}
	stake, err := game.ParseStake(args[0])
	if err != nil {
		return fail(c, "set_stake", err)
	}
	if err := h.tables.SetStake(ctx, c.Chat().ID, stake); err != nil {
		return fail(c, "set_stake", err)
	}
	audit(c, "set_stake").Str("stake", stake.String()).Msg("Admin operation executed")
	return c.Reply("✅ Stake set to " + stake.String())
}

// HandleSetBetTurn handles /set_bet_turn <seat>.
func (h *AdminHandler) HandleSetBetTurn(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /set_bet_turn <seat>")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return fail(c, "set_bet_turn", err)
	}

	seat, err := h.tables.SetBetTurn(ctx, c.Chat().ID, index)
	if err != nil {
		return fail(c, "set_bet_turn", err)
	}
	audit(c, "set_bet_turn").Int("seat", index).Msg("Admin operation executed")
	return c.Reply("✅ " + seat.Name + " proposes the next bet")
}

func parsePair(args []string) (int64, int64, bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	first, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	second, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return first, second, true
}

// HandleMerge handles /merge <kept_user_id> <absorbed_user_id>.
func (h *AdminHandler) HandleMerge(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	keptID, absorbedID, ok := parsePair(c.Args())
	if !ok {
		return c.Reply("❌ Usage: /merge <kept_user_id> <absorbed_user_id>")
	}

	seat, err := h.tables.Merge(ctx, c.Chat().ID, keptID, absorbedID)
	if err != nil {
		return fail(c, "merge", err)
	}
	audit(c, "merge").Int64("kept_id", keptID).Int64("absorbed_id", absorbedID).Msg("Admin operation executed")
	return c.Reply("🔗 Players merged into " + seat.Name + "\n\n" + renderSeat(seat))
}

// HandleSwapForfeits handles /swap_forfeits <user_id> <user_id>.
func (h *AdminHandler) HandleSwapForfeits(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	firstID, secondID, ok := parsePair(c.Args())
	if !ok {
		return c.Reply("❌ Usage: /swap_forfeits <user_id> <user_id>")
	}

	if err := h.tables.SwapForfeits(ctx, c.Chat().ID, firstID, secondID); err != nil {
		return fail(c, "swap_forfeits", err)
	}
	audit(c, "swap_forfeits").Int64("first_id", firstID).Int64("second_id", secondID).Msg("Admin operation executed")
	return c.Reply("🔀 Forfeit lists swapped")
}

// HandleShowDeck handles /show_deck. The list goes to the admin privately.
func (h *AdminHandler) HandleShowDeck(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	cards, err := h.tables.ShowDeck(ctx, c.Chat().ID)
	if err != nil {
		return fail(c, "show_deck", err)
	}
	audit(c, "show_deck").Msg("Admin operation executed")
	return whisper(c, fmt.Sprintf("🂠 %d cards, top first:\n%s", len(cards), cardList(cards)))
}

// HandleShuffleDeck handles /shuffle_deck.
func (h *AdminHandler) HandleShuffleDeck(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	remaining, err := h.tables.ShuffleDeck(ctx, c.Chat().ID, c.Sender().ID)
	if err != nil {
		return fail(c, "shuffle_deck", err)
	}
	audit(c, "shuffle_deck").Msg("Admin operation executed")
	return c.Reply("🔀 The deck was shuffled, " + strconv.Itoa(remaining) + " cards")
}

// HandleTransferAccount handles /transfer_account <name> <user_id>.
func (h *AdminHandler) HandleTransferAccount(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 2 {
		return c.Reply("❌ Usage: /transfer_account <name> <user_id>")
	}
	newOwner, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return c.Reply("❌ User ID must be a number")
	}

	account, err := h.accounts.TransferOwnership(ctx, args[0], newOwner)
	if err != nil {
		return fail(c, "transfer_account", err)
	}
	audit(c, "transfer_account").Str("account", account.Name).Int64("target_id", newOwner).Msg("Admin operation executed")
	return c.Reply(fmt.Sprintf("✅ Account %s now belongs to %d", account.Name, newOwner))
}

// HandleAudit handles /audit <name> [limit].
func (h *AdminHandler) HandleAudit(c tele.Context) error {
	ctx := context.Background()
	if c.Sender() == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 || len(args) > 2 {
		return c.Reply("❌ Usage: /audit <name> [limit]")
	}
	limit := 0
	if len(args) == 2 {
		if limit, _ = strconv.Atoi(args[1]); limit < 1 {
			return c.Reply("❌ Limit must be a positive number")
		}
	}

	entries, err := h.accounts.Audit(ctx, args[0], limit)
	if err != nil {
		return fail(c, "audit", err)
	}
	return whisper(c, renderHistory(args[0], entries))
}
