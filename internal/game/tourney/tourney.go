// Package tourney implements the tournament table. Every player is dealt
// one card more than there are matches; each match everyone plays one card
// and the highest card takes a point.
package tourney

import (
	"encoding/json"
	"errors"
	"fmt"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
)

// MaxPlayers is the seat cap of a tournament table.
const MaxPlayers = 6

var (
	ErrCardOutOfRange  = errors.New("no card at that position in your hand")
	ErrCardPlayed      = errors.New("that card was already played")
	ErrAlreadySelected = errors.New("already played a card this match")
)

// Key orders cards by rank, then suit.
func Key(c deck.Card) int {
	return c.Rank()*4 + int(c.Suit())
}

// Card is a card in a tournament hand.
type Card struct {
	Card   deck.Card `json:"card"`
	Played bool      `json:"played"`
}

type Player struct {
	game.Seat
	Hand []Card
	// Selected is the hand index played this match, or -1.
	Selected int
	Points   int
}

// Table is a tournament game.
type Table struct {
	game.Game
	// Match counts from 1 within a round.
	Match   int
	Players []*Player

	env game.Env
}

// New is the registry factory for tournament tables.
func New(base game.Game, env game.Env) game.Variant {
	base.Type = game.TypeTourney
	return &Table{Game: base, env: env}
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
	t.Players = append(t.Players, &Player{Seat: s, Selected: -1})
}

func (t *Table) RemovePlayer(i int) {
	t.Players = append(t.Players[:i], t.Players[i+1:]...)
}

// Matches is the number of matches in a round for n players.
func Matches(n int) int { return n + 1 }

// StartRound deals n+2 cards to each of the n players from a fresh deck.
func (t *Table) StartRound() (*game.RoundStart, error) {
	n := len(t.Players)
	d := deck.Shuffled(t.env.Rand)
	dealt := make([]int, n)
	for i, p := range t.Players {
		cards, err := d.Draw(n + 2)
		if err != nil {
			return nil, fmt.Errorf("failed to deal: %w", err)
		}
		p.Hand = make([]Card, len(cards))
		for j, c := range cards {
			p.Hand[j] = Card{Card: c}
		}
		p.Selected = -1
		p.Points = 0
		dealt[i] = i
	}
	t.Match = 1
	return &game.RoundStart{Dealt: dealt, Shuffled: true, Turn: -1}, nil
}

// Play is one card laid down in a match.
type Play struct {
	Seat int
	Name string
	Card deck.Card
}

// MatchResult reports a resolved match.
type MatchResult struct {
	Number int
	Plays  []Play
	Winner int
	Points int
}

// Standing is a player's score at the end of a round.
type Standing struct {
	Seat   int
	Name   string
	Points int
}

// RoundResult reports the end of a round. Tiebreakers is set when several
// players shared the top score and lists each one's first unplayed card.
type RoundResult struct {
	Standings   []Standing
	Tied        []int
	Tiebreakers []Play
	Winner      int
	Points      int
	Reward      chips.Vector
	BetTurn     int
}

// PlayResult reports a played card and whatever it completed.
type PlayResult struct {
	Seat    int
	Name    string
	Card    deck.Card
	Waiting []int
	Match   *MatchResult
	Round   *RoundResult
}

// PlayCard lays down the card at index of userID's hand for this match.
func (t *Table) PlayCard(userID int64, index int) (*PlayResult, error) {
	if !t.MidRound() {
		return nil, game.ErrNotMidRound
	}
	i, p := t.player(userID)
	if p == nil {
		return nil, game.ErrNotAPlayer
	}
	if p.Selected >= 0 {
		return nil, ErrAlreadySelected
	}
	if index < 0 || index >= len(p.Hand) {
		return nil, ErrCardOutOfRange
	}
	if p.Hand[index].Played {
		return nil, ErrCardPlayed
	}

	p.Hand[index].Played = true
	p.Selected = index
	res := &PlayResult{Seat: i, Name: p.Name, Card: p.Hand[index].Card}
	for j, q := range t.Players {
		if q.Selected < 0 {
			res.Waiting = append(res.Waiting, j)
		}
	}
	if len(res.Waiting) > 0 {
		return res, nil
	}

	res.Match = t.resolveMatch()
	if t.Match > Matches(len(t.Players)) {
		round, err := t.endRound()
		if err != nil {
			return nil, err
		}
		res.Round = round
	}
	return res, nil
}

func (t *Table) player(userID int64) (int, *Player) {
	for i, p := range t.Players {
		if p.UserID == userID {
			return i, p
		}
	}
	return -1, nil
}

func (t *Table) resolveMatch() *MatchResult {
	m := &MatchResult{Number: t.Match, Winner: -1}
	best := -1
	for i, p := range t.Players {
		c := p.Hand[p.Selected].Card
		m.Plays = append(m.Plays, Play{Seat: i, Name: p.Name, Card: c})
		if k := Key(c); k > best {
			best = k
			m.Winner = i
		}
		p.Selected = -1
	}
	w := t.Players[m.Winner]
	w.Points++
	m.Points = w.Points
	t.Match++
	return m
}

// firstUnplayed returns a player's first card not yet played.
func (p *Player) firstUnplayed() (deck.Card, bool) {
	for _, c := range p.Hand {
		if !c.Played {
			return c.Card, true
		}
	}
	return 0, false
}

func (t *Table) endRound() (*RoundResult, error) {
	res := &RoundResult{Winner: -1}
	for i, p := range t.Players {
		res.Standings = append(res.Standings, Standing{Seat: i, Name: p.Name, Points: p.Points})
		res.Points = max(res.Points, p.Points)
	}
	for i, p := range t.Players {
		if p.Points == res.Points {
			res.Tied = append(res.Tied, i)
		}
	}

	if len(res.Tied) == 1 {
		res.Winner = res.Tied[0]
		res.Tied = nil
	} else {
		best := -1
		for _, i := range res.Tied {
			c, ok := t.Players[i].firstUnplayed()
			if !ok {
				continue
			}
			res.Tiebreakers = append(res.Tiebreakers, Play{Seat: i, Name: t.Players[i].Name, Card: c})
			if k := Key(c); k > best {
				best = k
				res.Winner = i
			}
		}
		if res.Winner < 0 {
			res.Winner = res.Tied[0]
		}
	}

	res.Reward = t.Bet.Scale(int64(max(res.Points-1, 1))).Clamp(t.env.Rules.BetCap)
	if err := t.Players[res.Winner].Pay(res.Reward); err != nil {
		return nil, err
	}
	res.BetTurn = game.CloseRound(t)
	return res, nil
}

// HandView is a player's own hand.
type HandView struct {
	Seat     int
	Name     string
	Cards    []Card
	Selected int
	Points   int
	Match    int
}

func (t *Table) HandOf(userID int64) (*HandView, error) {
	i, p := t.player(userID)
	if p == nil {
		return nil, game.ErrNotAPlayer
	}
	return &HandView{
		Seat:     i,
		Name:     p.Name,
		Cards:    append([]Card(nil), p.Hand...),
		Selected: p.Selected,
		Points:   p.Points,
		Match:    t.Match,
	}, nil
}

// Recon is what the table can see of one player.
type Recon struct {
	Seat     int
	Name     string
	Points   int
	Played   []deck.Card
	Selected bool
}

// Recon shows everyone's points and played cards. A card selected for the
// current match is not revealed until the match resolves.
func (t *Table) Recon() []Recon {
	out := make([]Recon, len(t.Players))
	for i, p := range t.Players {
		r := Recon{Seat: i, Name: p.Name, Points: p.Points, Selected: p.Selected >= 0}
		for j, c := range p.Hand {
			if c.Played && j != p.Selected {
				r.Played = append(r.Played, c.Card)
			}
		}
		out[i] = r
	}
	return out
}

type tableState struct {
	Match int `json:"match"`
}

type playerState struct {
	Hand     []Card `json:"hand"`
	Selected int    `json:"selected"`
	Points   int    `json:"points"`
}

func (t *Table) MarshalState() ([]byte, error) {
	return json.Marshal(tableState{Match: t.Match})
}

func (t *Table) UnmarshalState(data []byte) error {
	var s tableState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode tourney state: %w", err)
	}
	t.Match = s.Match
	return nil
}

func (t *Table) MarshalPlayer(i int) ([]byte, error) {
	p := t.Players[i]
	return json.Marshal(playerState{Hand: p.Hand, Selected: p.Selected, Points: p.Points})
}

func (t *Table) UnmarshalPlayer(i int, data []byte) error {
	s := playerState{Selected: -1}
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode tourney hand: %w", err)
	}
	p := t.Players[i]
	p.Hand = s.Hand
	p.Selected = s.Selected
	p.Points = s.Points
	return nil
}
