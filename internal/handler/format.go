package handler

import (
	"fmt"
	"strconv"
	"strings"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/game/blackjack"
	"casino-table-bot/internal/game/misc"
	"casino-table-bot/internal/game/tourney"
	"casino-table-bot/internal/model"
	"casino-table-bot/internal/service"
)

func cardList(cards []deck.Card) string {
	if len(cards) == 0 {
		return "(none)"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// seatNames renders seat positions by player name, falling back to the
// 1-based seat number.
func seatNames(seats []int, names []string) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		if s >= 0 && s < len(names) {
			parts[i] = names[s]
		} else {
			parts[i] = "seat " + strconv.Itoa(s+1)
		}
	}
	return strings.Join(parts, ", ")
}

func renderTable(tv *service.TableView) string {
	var b strings.Builder
	g := tv.Game
	limit := "unlimited"
	if tv.MaxPlayers > 0 {
		limit = strconv.Itoa(tv.MaxPlayers)
	}
	fmt.Fprintf(&b, "🎲 %s table (stake: %s)\n", g.Type, g.Stake)
	fmt.Fprintf(&b, "👥 Players: %d / %s\n", len(tv.Seats), limit)
	if g.MidRound() {
		fmt.Fprintf(&b, "💰 Round bet: %s\n", g.Bet.Describe())
	} else {
		b.WriteString("⏸ Between rounds\n")
	}
	for i, s := range tv.Seats {
		marker := "  "
		if i == tv.BetTurn {
			marker = "▶ "
		}
		fmt.Fprintf(&b, "\n%s%d. %s\n    chips %s, used %s", marker, i+1, s.Name, s.Chips, s.Used)
		if !s.Bet.IsZero() {
			fmt.Fprintf(&b, ", bet %s", s.Bet)
		}
	}
	return b.String()
}

func renderSeat(s *game.Seat) string {
	return fmt.Sprintf("🪙 %s\nChips: %s\nUsed: %s", s.Name, s.Chips.Describe(), s.Used.Describe())
}

func renderJoin(res *game.JoinResult) string {
	return fmt.Sprintf("✅ %s takes seat %d (%d at the table) with %s",
		res.Name, res.Seat+1, res.Players, res.Chips.Describe())
}

func renderBet(res *game.BetResult, t game.Type, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💰 %s bets %s", res.Name, res.Bet.Describe())
	if len(res.Pending) > 0 {
		fmt.Fprintf(&b, "\nWaiting on %s to match", seatNames(res.Pending, names))
	}
	if res.Round != nil {
		b.WriteString("\n")
		b.WriteString(renderRoundStart(res.Round, t, names))
	}
	return b.String()
}

func renderRoundStart(rs *game.RoundStart, t game.Type, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🃏 Round started, bet %s", rs.Bet.Describe())
	if rs.Shuffled {
		b.WriteString("\n🔀 The deck was shuffled")
	}
	switch t {
	case game.TypeBlackjack:
		fmt.Fprintf(&b, "\nCards dealt to %s. Check them with /hand", seatNames(rs.Dealt, names))
	case game.TypeTourney:
		b.WriteString("\nHands dealt. Check yours with /cards and play with /play")
	}
	if rs.Turn >= 0 {
		fmt.Fprintf(&b, "\n▶ %s to act", seatNames([]int{rs.Turn}, names))
	}
	return b.String()
}

func renderConcede(res *game.ConcedeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏳 %s leaves the table", res.Name)
	switch {
	case res.Winner != nil:
		fmt.Fprintf(&b, "\n🏆 %s is the last one standing and wins the game", res.Winner.Name)
		if !res.Reward.IsZero() {
			fmt.Fprintf(&b, ", getting back %s", res.Reward.Describe())
		}
	case res.Ended:
		b.WriteString("\nThe table is empty and has been closed")
	default:
		fmt.Fprintf(&b, "\n%d players remain", res.Remaining)
	}
	return b.String()
}

func renderConvert(res *game.ConvertResult) string {
	return fmt.Sprintf("🔄 %s converts %s into %s\nChips: %s",
		res.Name, res.Consumed.Describe(), res.Produced.Describe(), res.Chips)
}

func renderConversions(rules chips.Rules) string {
	var b strings.Builder
	b.WriteString("🔄 Conversions:")
	for i, c := range rules.Conversions {
		fmt.Fprintf(&b, "\n%d. %s", i+1, c)
	}
	return b.String()
}

func renderForfeits(list game.ForfeitList) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📜 Forfeits of %s", list.Name)
	section := func(title string, entries []game.IndexedForfeit) {
		if len(entries) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:", title)
		for _, e := range entries {
			fmt.Fprintf(&b, "\n%d. %s (%d %s)", e.Index+1, e.Description, e.Cost, e.Kind)
		}
	}
	section("Open", list.Open)
	section("Done", list.Done)
	if len(list.Open)+len(list.Done) == 0 {
		b.WriteString("\nNothing yet")
	}
	return b.String()
}

// Blackjack

func handValue(h blackjack.HandView) string {
	if h.Partial {
		return strconv.Itoa(h.Value) + "+"
	}
	return strconv.Itoa(h.Value)
}

func renderHands(hands []blackjack.HandView) string {
	if len(hands) == 0 {
		return "🃏 No hands dealt"
	}
	var b strings.Builder
	for i, h := range hands {
		if i > 0 {
			b.WriteString("\n")
		}
		marker := ""
		if h.Turn {
			marker = " ▶"
		}
		fmt.Fprintf(&b, "🃏 %s: %s (%s, %s)%s", h.Name, cardList(h.Cards), handValue(h), h.State, marker)
	}
	return b.String()
}

func renderAction(res *blackjack.ActionResult, names []string) string {
	var b strings.Builder
	if res.Shuffled {
		b.WriteString("🔀 The deck was shuffled\n")
	}
	switch {
	case res.Card == nil:
		fmt.Fprintf(&b, "✋ %s stands", res.Name)
	case res.Busted:
		fmt.Fprintf(&b, "💥 %s draws %s and busts", res.Name, res.Card)
	case res.FiveCard:
		fmt.Fprintf(&b, "🖐 %s draws %s for a 5-card Charlie", res.Name, res.Card)
	default:
		fmt.Fprintf(&b, "🃏 %s draws %s", res.Name, res.Card)
	}
	if res.Resolution != nil {
		b.WriteString("\n\n")
		b.WriteString(renderResolution(res.Resolution, names))
	} else if res.NextTurn >= 0 {
		fmt.Fprintf(&b, "\n▶ %s to act", seatNames([]int{res.NextTurn}, names))
	}
	return b.String()
}

func renderResolution(res *blackjack.Resolution, names []string) string {
	var b strings.Builder
	b.WriteString("🂠 Hands revealed:")
	for _, h := range res.Hands {
		label := strconv.Itoa(h.Raw)
		switch {
		case h.Value == 0:
			label += ", bust"
		case h.Value == blackjack.FiveCard:
			label += ", 5-card Charlie"
		case h.Value == blackjack.Natural:
			label += ", Blackjack"
		}
		fmt.Fprintf(&b, "\n%s: %s (%s)", h.Name, cardList(h.Cards), label)
	}
	switch {
	case len(res.Winners) == 0:
		b.WriteString("\n\n💥 Everyone busted, the house keeps the bet")
	case res.Tie:
		fmt.Fprintf(&b, "\n\n⚖ Tie between %s. The bet rises to %s and the tied hands are dealt again",
			seatNames(res.Winners, names), res.Bet.Describe())
		if res.Redeal != nil && res.Redeal.Turn >= 0 {
			fmt.Fprintf(&b, "\n▶ %s to act", seatNames([]int{res.Redeal.Turn}, names))
		}
	default:
		how := ""
		switch res.Condition {
		case blackjack.WinBlackjack:
			how = " with a Blackjack"
		case blackjack.WinFiveCard:
			how = " with a 5-card Charlie"
		}
		fmt.Fprintf(&b, "\n\n🏆 %s wins%s and takes %s", seatNames(res.Winners, names), how, res.Payout.Describe())
	}
	if !res.Tie {
		fmt.Fprintf(&b, "\n%s proposes the next bet", seatNames([]int{res.BetTurn}, names))
	}
	return b.String()
}

// Tournament

func renderPlay(res *tourney.PlayResult, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎴 %s has played a card", res.Name)
	if len(res.Waiting) > 0 {
		fmt.Fprintf(&b, "\nWaiting on %s", seatNames(res.Waiting, names))
		return b.String()
	}
	if m := res.Match; m != nil {
		fmt.Fprintf(&b, "\n\n⚔ Match %d:", m.Number)
		for _, p := range m.Plays {
			fmt.Fprintf(&b, "\n%s: %s", p.Name, p.Card)
		}
		fmt.Fprintf(&b, "\n%s wins %d points", seatNames([]int{m.Winner}, names), m.Points)
	}
	if r := res.Round; r != nil {
		b.WriteString("\n\n🏁 Round over:")
		for _, s := range r.Standings {
			fmt.Fprintf(&b, "\n%s: %d points", s.Name, s.Points)
		}
		if len(r.Tiebreakers) > 0 {
			b.WriteString("\nTiebreak by first unplayed card:")
			for _, p := range r.Tiebreakers {
				fmt.Fprintf(&b, "\n%s: %s", p.Name, p.Card)
			}
		}
		fmt.Fprintf(&b, "\n🏆 %s wins the round and takes %s", seatNames([]int{r.Winner}, names), r.Reward.Describe())
		fmt.Fprintf(&b, "\n%s proposes the next bet", seatNames([]int{r.BetTurn}, names))
	}
	return b.String()
}

func renderTourneyHand(h *tourney.HandView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎴 Your hand, match %d, %d points:", h.Match, h.Points)
	for i, c := range h.Cards {
		state := ""
		switch {
		case i == h.Selected:
			state = " (selected)"
		case c.Played:
			state = " (played)"
		}
		fmt.Fprintf(&b, "\n%d. %s%s", i+1, c.Card, state)
	}
	return b.String()
}

func renderRecon(recon []tourney.Recon) string {
	var b strings.Builder
	b.WriteString("🔭 Recon:")
	for _, r := range recon {
		fmt.Fprintf(&b, "\n%s: %d points, played %s", r.Name, r.Points, cardList(r.Played))
		if r.Selected {
			b.WriteString(", card down")
		}
	}
	return b.String()
}

// Misc

func renderPeek(res misc.PeekResult) string {
	return fmt.Sprintf("🂠 %d cards left, top first:\n%s", res.Remaining, cardList(res.Cards))
}

func renderDraw(res *misc.DrawResult) string {
	return fmt.Sprintf("🃏 %s draws %s\n%d cards left", res.Name, cardList(res.Cards), res.Remaining)
}

func renderRoll(res *misc.RollResult) string {
	dice := make([]string, len(res.Dice))
	for i, d := range res.Dice {
		dice[i] = strconv.FormatInt(d, 10)
	}
	return fmt.Sprintf("🎲 %dd%d: %s\nTotal: %d", len(res.Dice), res.Sides, strings.Join(dice, " "), res.Total)
}

func renderWin(res *misc.WinResult, names []string) string {
	return fmt.Sprintf("🏆 %s wins the round and takes %s\nChips: %s\n%s proposes the next bet",
		res.Name, res.Payout.Describe(), res.Chips, seatNames([]int{res.BetTurn}, names))
}

// Accounts

func renderAccount(a *model.Account) string {
	return fmt.Sprintf("🏦 Account %s\nChips: %s", a.Name, a.Chips.Describe())
}

func renderAccounts(accounts []*model.Account) string {
	if len(accounts) == 0 {
		return "🏦 You have no accounts. Open one with /open_account <name>"
	}
	var b strings.Builder
	b.WriteString("🏦 Your accounts:")
	for _, a := range accounts {
		fmt.Fprintf(&b, "\n%s: %s", a.Name, a.Chips)
	}
	return b.String()
}

func renderHistory(name string, entries []*model.LedgerEntry) string {
	if len(entries) == 0 {
		return "📒 No history for " + name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📒 History of %s, newest first:", name)
	for _, e := range entries {
		fmt.Fprintf(&b, "\n%s %s %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Kind, e.Amount)
	}
	return b.String()
}
