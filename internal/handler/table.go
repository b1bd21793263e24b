package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/service"
)

// TableHandler handles the commands shared by every table type. Tables are
// keyed by the chat the command was sent in.
type TableHandler struct {
	tables *service.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(tables *service.TableService) *TableHandler {
	return &TableHandler{tables: tables}
}

// names returns the current roster names, or nil once the table is gone.
func (h *TableHandler) names(ctx context.Context, channelID int64) []string {
	tv, err := h.tables.Show(ctx, channelID)
	if err != nil {
		return nil
	}
	names := make([]string, len(tv.Seats))
	for i, s := range tv.Seats {
		names[i] = s.Name
	}
	return names
}

func (h *TableHandler) create(c tele.Context, t game.Type, args []string) error {
	ctx := context.Background()
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}

	stake := game.StakeNormal
	if len(args) > 0 {
		var err error
		if stake, err = game.ParseStake(args[0]); err != nil {
			return fail(c, "create", err)
		}
	}

	g, err := h.tables.Create(ctx, c.Chat().ID, t, stake)
	if err != nil {
		return fail(c, "create", err)
	}
	return c.Reply("🎲 A " + string(g.Type) + " table is open (stake: " + g.Stake.String() + "). Join with /join")
}

// HandleCreate handles /create <blackjack|tourney|misc> [stake].
func (h *TableHandler) HandleCreate(c tele.Context) error {
	args := c.Args()
	if len(args) < 1 || len(args) > 2 {
		return c.Reply("❌ Usage: /create <blackjack|tourney|misc> [low|normal|high]")
	}
	return h.create(c, game.Type(strings.ToLower(args[0])), args[1:])
}

// CreateAs returns a handler that opens a table of type t: /<prefix>_create [stake].
func (h *TableHandler) CreateAs(t game.Type) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.create(c, t, c.Args())
	}
}

func (h *TableHandler) join(ctx context.Context, c tele.Context) error {
	sender := c.Sender()
	name := strings.Join(c.Args(), " ")
	if name == "" {
		name = displayName(sender)
	}

	res, err := h.tables.Join(ctx, c.Chat().ID, sender.ID, name)
	if err != nil {
		return fail(c, "join", err)
	}
	return c.Reply(renderJoin(res))
}

// HandleJoin handles /join [name].
func (h *TableHandler) HandleJoin(c tele.Context) error {
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}
	return h.join(context.Background(), c)
}

// JoinAs returns a handler that joins the chat's table of type t, opening
// one at normal stakes when the chat has none.
func (h *TableHandler) JoinAs(t game.Type) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := context.Background()
		if c.Sender() == nil || c.Chat() == nil {
			return nil
		}

		tv, err := h.tables.Show(ctx, c.Chat().ID)
		switch {
		case errors.Is(err, game.ErrNoGame):
			if _, err := h.tables.Create(ctx, c.Chat().ID, t, game.StakeNormal); err != nil && !errors.Is(err, game.ErrAlreadyExists) {
				return fail(c, "join", err)
			}
		case err != nil:
			return fail(c, "join", err)
		case tv.Game.Type != t:
			return fail(c, "join", game.ErrWrongType)
		}
		return h.join(ctx, c)
	}
}

// HandleTable handles /table.
func (h *TableHandler) HandleTable(c tele.Context) error {
	ctx := context.Background()
	if c.Chat() == nil {
		return nil
	}

	tv, err := h.tables.Show(ctx, c.Chat().ID)
	if err != nil {
		return fail(c, "table", err)
	}
	return c.Reply(renderTable(tv))
}

// HandleBet handles /bet <amounts...>.
func (h *TableHandler) HandleBet(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	bet, err := parseVector(c.Args())
	if err != nil {
		return fail(c, "bet", err)
	}

	res, err := h.tables.Bet(ctx, c.Chat().ID, sender.ID, bet)
	if err != nil {
		return fail(c, "bet", err)
	}
	tv, err := h.tables.Show(ctx, c.Chat().ID)
	if err != nil {
		return fail(c, "bet", err)
	}
	names := make([]string, len(tv.Seats))
	for i, s := range tv.Seats {
		names[i] = s.Name
	}
	return c.Reply(renderBet(res, tv.Game.Type, names))
}

// HandleConcede handles /concede.
func (h *TableHandler) HandleConcede(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	res, err := h.tables.Concede(ctx, c.Chat().ID, sender.ID)
	if err != nil {
		return fail(c, "concede", err)
	}
	return c.Reply(renderConcede(res))
}

// HandleChips handles /chips and shows the sender's stash at this table.
func (h *TableHandler) HandleChips(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	tv, err := h.tables.Show(ctx, c.Chat().ID)
	if err != nil {
		return fail(c, "chips", err)
	}
	for i := range tv.Seats {
		if tv.Seats[i].UserID == sender.ID {
			return c.Reply(renderSeat(&tv.Seats[i]))
		}
	}
	return fail(c, "chips", game.ErrNotAPlayer)
}

// HandleUse handles /use <amounts...>.
func (h *TableHandler) HandleUse(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	amount, err := parseVector(c.Args())
	if err != nil {
		return fail(c, "use", err)
	}

	seat, err := h.tables.Use(ctx, c.Chat().ID, sender.ID, amount)
	if err != nil {
		return fail(c, "use", err)
	}
	return c.Reply("✅ " + seat.Name + " uses " + amount.Describe() + "\n\n" + renderSeat(seat))
}

// HandleConvert handles /convert <number> [times].
func (h *TableHandler) HandleConvert(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 || len(args) > 2 {
		return c.Reply("❌ Usage: /convert <number> [times]\nSee /conversions for the list")
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return fail(c, "convert", chips.ErrUnknownConversion)
	}
	times := int64(1)
	if len(args) == 2 {
		if times, err = strconv.ParseInt(args[1], 10, 64); err != nil {
			return fail(c, "convert", chips.ErrInvalidMultiplier)
		}
	}

	res, err := h.tables.Convert(ctx, c.Chat().ID, sender.ID, index, times)
	if err != nil {
		return fail(c, "convert", err)
	}
	return c.Reply(renderConvert(res))
}

// HandleConversions handles /conversions.
func (h *TableHandler) HandleConversions(c tele.Context) error {
	return c.Reply(renderConversions(h.tables.Rules()))
}

// HandleRename handles /rename <name>.
func (h *TableHandler) HandleRename(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	name := strings.Join(c.Args(), " ")
	old, err := h.tables.Rename(ctx, c.Chat().ID, sender.ID, name)
	if err != nil {
		return fail(c, "rename", err)
	}
	return c.Reply("✅ " + old + " is now known as " + strings.TrimSpace(name))
}

// HandleAddForfeit handles /forfeit <cost> <denomination> <description>,
// sent as a reply to the target player or with their user ID first.
func (h *TableHandler) HandleAddForfeit(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	targetID, args, err := target(c, c.Args())
	if err != nil {
		return fail(c, "forfeit", err)
	}
	if len(args) < 3 {
		return c.Reply("❌ Usage: /forfeit [user_id] <cost> <denomination> <description>")
	}
	cost, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fail(c, "forfeit", game.ErrInvalidForfeit)
	}
	kind, err := chips.ParseDenomination(args[1])
	if err != nil {
		return fail(c, "forfeit", err)
	}
	f := game.Forfeit{Description: strings.Join(args[2:], " "), Cost: cost, Kind: kind}

	n, err := h.tables.AddForfeit(ctx, c.Chat().ID, sender.ID, targetID, f)
	if err != nil {
		return fail(c, "forfeit", err)
	}
	return c.Reply("📜 Forfeit " + strconv.Itoa(n) + " added: " + f.Description)
}

func (h *TableHandler) forfeitAt(c tele.Context, apply func(ctx context.Context, channelID, authorID, targetID int64, index int) (game.Forfeit, error)) (game.Forfeit, error) {
	targetID, args, err := target(c, c.Args())
	if err != nil {
		return game.Forfeit{}, err
	}
	if len(args) != 1 {
		return game.Forfeit{}, game.ErrIndexOutOfRange
	}
	index, err := parseIndex(args[0])
	if err != nil {
		return game.Forfeit{}, err
	}
	return apply(context.Background(), c.Chat().ID, c.Sender().ID, targetID, index)
}

// HandleRemoveForfeit handles /forfeit_rm [user_id] <number>.
func (h *TableHandler) HandleRemoveForfeit(c tele.Context) error {
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}
	f, err := h.forfeitAt(c, h.tables.RemoveForfeit)
	if err != nil {
		return fail(c, "forfeit_rm", err)
	}
	return c.Reply("🗑 Forfeit removed: " + f.Description)
}

// HandleToggleForfeit handles /forfeit_done [user_id] <number>.
func (h *TableHandler) HandleToggleForfeit(c tele.Context) error {
	if c.Sender() == nil || c.Chat() == nil {
		return nil
	}
	f, err := h.forfeitAt(c, h.tables.ToggleForfeit)
	if err != nil {
		return fail(c, "forfeit_done", err)
	}
	if f.Done {
		return c.Reply("✅ Forfeit done: " + f.Description)
	}
	return c.Reply("↩ Forfeit reopened: " + f.Description)
}

// HandleListForfeits handles /forfeits, for the replied-to player or the
// sender.
func (h *TableHandler) HandleListForfeits(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil || c.Chat() == nil {
		return nil
	}

	targetID, _, err := target(c, c.Args())
	if err != nil {
		targetID = sender.ID
	}

	list, err := h.tables.ListForfeits(ctx, c.Chat().ID, sender.ID, targetID)
	if err != nil {
		return fail(c, "forfeits", err)
	}
	return c.Reply(renderForfeits(list))
}
