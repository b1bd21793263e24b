// Package blackjack implements the blackjack table: a shared deck, rotating
// first turn, hit/stand play and tie rebets.
package blackjack

import (
	"encoding/json"
	"fmt"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
)

// MaxPlayers is the seat cap of a blackjack table.
const MaxPlayers = 4

// State is a player's position within the current hand.
type State string

const (
	StateHit   State = "hit"
	StateStand State = "stand"
	StateBust  State = "bust"
)

type Player struct {
	game.Seat
	Hand  []deck.Card
	State State
}

// Table is a blackjack game.
type Table struct {
	game.Game
	Deck deck.Deck
	// RoundTurn is the seat that leads the next round.
	RoundTurn int
	Turn      int
	Players   []*Player

	env game.Env
}

// New is the registry factory for blackjack tables. The deck is empty
// until Open or UnmarshalState fills it.
func New(base game.Game, env game.Env) game.Variant {
	base.Type = game.TypeBlackjack
	return &Table{Game: base, env: env}
}

// Open deals a new table its first shuffled deck.
func (t *Table) Open() {
	t.ShuffleDeck()
}

func (t *Table) Base() *game.Game { return &t.Game }

func (t *Table) MaxPlayers() int { return MaxPlayers }

func (t *Table) Seats() []*game.Seat {
	seats := make([]*game.Seat, len(t.Players))
	for i, p := range t.Players {
		seats[i] = &p.Seat
	}
	return seats
}

func (t *Table) AddPlayer(s game.Seat) {
	t.Players = append(t.Players, &Player{Seat: s, State: StateStand})
}

func (t *Table) RemovePlayer(i int) {
	t.Players = append(t.Players[:i], t.Players[i+1:]...)
	if i < t.RoundTurn {
		t.RoundTurn--
	}
	if t.RoundTurn >= len(t.Players) {
		t.RoundTurn = 0
	}
}

func (t *Table) player(userID int64) (int, *Player) {
	for i, p := range t.Players {
		if p.UserID == userID {
			return i, p
		}
	}
	return -1, nil
}

// StartRound deals every seated player in.
func (t *Table) StartRound() (*game.RoundStart, error) {
	all := make([]int, len(t.Players))
	for i := range all {
		all[i] = i
	}
	return t.deal(all)
}

// draw takes n cards, rebuilding the deck first if it cannot cover them.
func (t *Table) draw(n int) ([]deck.Card, bool, error) {
	shuffled := false
	if t.Deck.Remaining() < n {
		t.Deck.Shuffle(t.env.Rand)
		shuffled = true
	}
	cards, err := t.Deck.Draw(n)
	return cards, shuffled, err
}

// deal gives two cards to each seat in dealt. Everyone else sits the round
// out with an empty hand.
func (t *Table) deal(dealt []int) (*game.RoundStart, error) {
	if len(t.Players) == 0 {
		return nil, fmt.Errorf("cannot deal an empty table")
	}
	start := &game.RoundStart{Bet: t.Bet, RoundID: t.RoundID, Dealt: dealt}
	if t.Deck.Remaining() <= t.env.Rules.ReshuffleThreshold {
		t.Deck.Shuffle(t.env.Rand)
		start.Shuffled = true
	}

	in := make(map[int]bool, len(dealt))
	for _, i := range dealt {
		in[i] = true
	}
	for i, p := range t.Players {
		if !in[i] {
			p.Hand = nil
			p.State = StateStand
			continue
		}
		cards, shuffled, err := t.draw(2)
		if err != nil {
			return nil, fmt.Errorf("failed to deal: %w", err)
		}
		start.Shuffled = start.Shuffled || shuffled
		p.Hand = cards
		p.State = StateHit
	}

	n := len(t.Players)
	t.RoundTurn %= n
	t.Turn = t.RoundTurn
	t.RoundTurn = (t.RoundTurn + 1) % n
	if t.Players[t.Turn].State != StateHit {
		t.advance()
	}
	start.Turn = t.Turn
	return start, nil
}

// advance moves Turn to the next player still hitting. It reports false if
// there is none.
func (t *Table) advance() bool {
	n := len(t.Players)
	for k := 1; k <= n; k++ {
		j := (t.Turn + k) % n
		if t.Players[j].State == StateHit {
			t.Turn = j
			return true
		}
	}
	return false
}

// allDone reports whether the round is over: all dealt players but one have
// busted, or nobody is still hitting.
func (t *Table) allDone() bool {
	dealt, busted, hitting := 0, 0, 0
	for _, p := range t.Players {
		if len(p.Hand) == 0 {
			continue
		}
		dealt++
		switch p.State {
		case StateBust:
			busted++
		case StateHit:
			hitting++
		}
	}
	return hitting == 0 || (dealt > 1 && busted == dealt-1)
}

// ActionResult reports a hit or a stand.
type ActionResult struct {
	Seat     int
	Name     string
	Card     *deck.Card
	Shuffled bool
	Value    int
	Busted   bool
	FiveCard bool
	// NextTurn is the seat to act next; -1 once the round resolved.
	NextTurn   int
	Resolution *Resolution
}

func (t *Table) actor(userID int64) (int, *Player, error) {
	if !t.MidRound() {
		return -1, nil, game.ErrNotMidRound
	}
	i, p := t.player(userID)
	if p == nil {
		return -1, nil, game.ErrNotAPlayer
	}
	if i != t.Turn || p.State != StateHit {
		return -1, nil, game.ErrNotYourTurn
	}
	return i, p, nil
}

// Hit draws a card for the player whose turn it is.
func (t *Table) Hit(userID int64) (*ActionResult, error) {
	i, p, err := t.actor(userID)
	if err != nil {
		return nil, err
	}
	cards, shuffled, err := t.draw(1)
	if err != nil {
		return nil, fmt.Errorf("failed to hit: %w", err)
	}
	card := cards[0]
	p.Hand = append(p.Hand, card)

	res := &ActionResult{Seat: i, Name: p.Name, Card: &card, Shuffled: shuffled, Value: HandValue(p.Hand), NextTurn: -1}
	switch {
	case res.Value == Bust:
		p.State = StateBust
		res.Busted = true
	case len(p.Hand) >= 5:
		p.State = StateStand
		res.FiveCard = true
	}
	return t.finishAction(res)
}

// Stand ends the current player's turn.
func (t *Table) Stand(userID int64) (*ActionResult, error) {
	i, p, err := t.actor(userID)
	if err != nil {
		return nil, err
	}
	p.State = StateStand
	res := &ActionResult{Seat: i, Name: p.Name, Value: HandValue(p.Hand), NextTurn: -1}
	return t.finishAction(res)
}

func (t *Table) finishAction(res *ActionResult) (*ActionResult, error) {
	if res.FiveCard || t.allDone() {
		r, err := t.resolve()
		if err != nil {
			return nil, err
		}
		res.Resolution = r
		return res, nil
	}
	t.advance()
	res.NextTurn = t.Turn
	return res, nil
}

// Reveal is one hand shown at the end of a round.
type Reveal struct {
	Seat  int
	Name  string
	Cards []deck.Card
	Raw   int
	Value int
}

// Resolution reports the end of a round. When Tie is set the round goes on:
// Bet is the raised bet and Redeal the new deal for the tied players.
type Resolution struct {
	Hands     []Reveal
	Value     int
	Condition Condition
	Winners   []int
	Payout    chips.Vector
	Tie       bool
	Bet       chips.Vector
	Redeal    *game.RoundStart
	BetTurn   int
}

func (t *Table) resolve() (*Resolution, error) {
	res := &Resolution{}
	for i, p := range t.Players {
		if len(p.Hand) == 0 {
			continue
		}
		v := HandValue(p.Hand)
		res.Hands = append(res.Hands, Reveal{
			Seat:  i,
			Name:  p.Name,
			Cards: append([]deck.Card(nil), p.Hand...),
			Raw:   RawValue(p.Hand),
			Value: v,
		})
		res.Value = max(res.Value, v)
	}
	if res.Value > Bust {
		for _, h := range res.Hands {
			if h.Value == res.Value {
				res.Winners = append(res.Winners, h.Seat)
			}
		}
	}
	res.Condition = ConditionOf(res.Value)

	switch len(res.Winners) {
	case 0:
		res.BetTurn = game.CloseRound(t)
	case 1:
		res.Payout = t.Bet
		if err := t.Players[res.Winners[0]].Pay(t.Bet); err != nil {
			return nil, err
		}
		res.BetTurn = game.CloseRound(t)
	default:
		mult := int64(3)
		if res.Value == Natural {
			mult = 9
		}
		t.Bet = t.Bet.Scale(mult).Clamp(t.env.Rules.BetCap)
		res.Tie = true
		res.Bet = t.Bet
		start, err := t.deal(res.Winners)
		if err != nil {
			return nil, err
		}
		res.Redeal = start
		res.BetTurn = t.BetTurn
	}
	return res, nil
}

// HandView is a hand as seen by one viewer.
type HandView struct {
	Seat  int
	Name  string
	Cards []deck.Card
	Value int
	// Partial is set when the hole card is hidden and Value only counts the
	// visible cards.
	Partial bool
	State   State
	Turn    bool
}

// Hands renders every dealt hand for viewerID. Other players' second card
// is face down.
func (t *Table) Hands(viewerID int64) []HandView {
	views := make([]HandView, 0, len(t.Players))
	for i, p := range t.Players {
		if len(p.Hand) == 0 {
			continue
		}
		v := HandView{Seat: i, Name: p.Name, State: p.State, Turn: t.MidRound() && i == t.Turn}
		if p.UserID == viewerID || !t.MidRound() {
			v.Cards = append([]deck.Card(nil), p.Hand...)
			v.Value = RawValue(p.Hand)
		} else {
			v.Cards, v.Value = hideHoleCard(p.Hand)
			v.Partial = true
		}
		views = append(views, v)
	}
	return views
}

// HandOf returns userID's own hand.
func (t *Table) HandOf(userID int64) (*HandView, error) {
	i, p := t.player(userID)
	if p == nil {
		return nil, game.ErrNotAPlayer
	}
	return &HandView{
		Seat:  i,
		Name:  p.Name,
		Cards: append([]deck.Card(nil), p.Hand...),
		Value: RawValue(p.Hand),
		State: p.State,
		Turn:  t.MidRound() && i == t.Turn,
	}, nil
}

func hideHoleCard(hand []deck.Card) ([]deck.Card, int) {
	shown := append([]deck.Card(nil), hand...)
	visible := make([]deck.Card, 0, len(hand))
	for i, c := range hand {
		if i == 1 {
			shown[i] = deck.Hidden
			continue
		}
		visible = append(visible, c)
	}
	return shown, RawValue(visible)
}

// ShowDeck lists the remaining cards, top first.
func (t *Table) ShowDeck() []deck.Card {
	return t.Deck.Peek(-1)
}

// ShuffleDeck rebuilds the deck.
func (t *Table) ShuffleDeck() {
	t.Deck.Shuffle(t.env.Rand)
}

type tableState struct {
	Deck      []deck.Card `json:"deck"`
	RoundTurn int         `json:"round_turn"`
	Turn      int         `json:"turn"`
}

type playerState struct {
	Hand  []deck.Card `json:"hand"`
	State State       `json:"state"`
}

func (t *Table) MarshalState() ([]byte, error) {
	return json.Marshal(tableState{Deck: t.Deck.Cards, RoundTurn: t.RoundTurn, Turn: t.Turn})
}

func (t *Table) UnmarshalState(data []byte) error {
	var s tableState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode blackjack state: %w", err)
	}
	t.Deck.Cards = s.Deck
	t.RoundTurn = s.RoundTurn
	t.Turn = s.Turn
	return nil
}

func (t *Table) MarshalPlayer(i int) ([]byte, error) {
	p := t.Players[i]
	return json.Marshal(playerState{Hand: p.Hand, State: p.State})
}

func (t *Table) UnmarshalPlayer(i int, data []byte) error {
	var s playerState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode blackjack hand: %w", err)
	}
	p := t.Players[i]
	p.Hand = s.Hand
	p.State = s.State
	if p.State == "" {
		p.State = StateStand
	}
	return nil
}
