package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"casino-table-bot/internal/game"
	"casino-table-bot/internal/model"
)

// encode flattens a table into its game row and roster rows.
func encode(v game.Variant) (*model.GameRow, []model.PlayerRow, error) {
	g := v.Base()
	state, err := v.MarshalState()
	if err != nil {
		return nil, nil, err
	}
	row := &model.GameRow{
		ChannelID: g.ChannelID,
		Type:      string(g.Type),
		Stake:     int(g.Stake),
		Bet:       g.Bet,
		Started:   g.Started,
		BetTurn:   g.BetTurn,
		State:     state,
	}
	if g.RoundID != uuid.Nil {
		row.RoundID = g.RoundID.String()
	}

	seats := v.Seats()
	players := make([]model.PlayerRow, len(seats))
	for i, s := range seats {
		forfeits := []byte("[]")
		if len(s.Forfeits) > 0 {
			if forfeits, err = json.Marshal(s.Forfeits); err != nil {
				return nil, nil, fmt.Errorf("failed to encode forfeits: %w", err)
			}
		}
		ps, err := v.MarshalPlayer(i)
		if err != nil {
			return nil, nil, err
		}
		players[i] = model.PlayerRow{
			ChannelID: g.ChannelID,
			UserID:    s.UserID,
			Seat:      i,
			Name:      s.Name,
			Chips:     s.Chips,
			Used:      s.Used,
			Bet:       s.Bet,
			Forfeits:  forfeits,
			State:     ps,
		}
	}
	return row, players, nil
}

// decode rebuilds a table from its rows. Players must be ordered by seat.
func decode(reg *game.Registry, env game.Env, row *model.GameRow, players []model.PlayerRow) (game.Variant, error) {
	base := game.Game{
		ChannelID: row.ChannelID,
		Type:      game.Type(row.Type),
		Stake:     game.Stake(row.Stake),
		Bet:       row.Bet,
		Started:   row.Started,
		BetTurn:   row.BetTurn,
	}
	if row.RoundID != "" {
		id, err := uuid.Parse(row.RoundID)
		if err != nil {
			return nil, fmt.Errorf("failed to decode round id: %w", err)
		}
		base.RoundID = id
	}

	v, err := reg.New(base, env)
	if err != nil {
		return nil, err
	}
	for i, p := range players {
		seat := game.Seat{
			UserID: p.UserID,
			Name:   p.Name,
			Chips:  p.Chips,
			Used:   p.Used,
			Bet:    p.Bet,
		}
		if len(p.Forfeits) > 0 {
			if err := json.Unmarshal(p.Forfeits, &seat.Forfeits); err != nil {
				return nil, fmt.Errorf("failed to decode forfeits: %w", err)
			}
		}
		v.AddPlayer(seat)
		if len(p.State) > 0 {
			if err := v.UnmarshalPlayer(i, p.State); err != nil {
				return nil, err
			}
		}
	}
	if len(row.State) > 0 {
		if err := v.UnmarshalState(row.State); err != nil {
			return nil, err
		}
	}
	return v, nil
}
