package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

// GameRepository handles channel tables and their seated players.
type GameRepository struct {
	q Querier
}

// NewGameRepository creates a new GameRepository instance.
func NewGameRepository(q Querier) *GameRepository {
	return &GameRepository{q: q}
}

const gameColumns = `channel_id, type, stake, bet, started, bet_turn, round_id, state, created_at, updated_at`

func scanGame(row pgx.Row) (*model.GameRow, error) {
	var (
		g   model.GameRow
		bet []int64
	)
	err := row.Scan(
		&g.ChannelID,
		&g.Type,
		&g.Stake,
		&bet,
		&g.Started,
		&g.BetTurn,
		&g.RoundID,
		&g.State,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if g.Bet, err = chips.FromSlice(bet); err != nil {
		return nil, err
	}
	return &g, nil
}

// Get loads a table and its roster ordered by seat, locking the game row
// for the rest of the transaction.
// Returns ErrGameNotFound if the channel has no table.
func (r *GameRepository) Get(ctx context.Context, channelID int64) (*model.GameRow, []model.PlayerRow, error) {
	const gameQuery = `SELECT ` + gameColumns + ` FROM games WHERE channel_id = $1 FOR UPDATE`

	g, err := scanGame(r.q.QueryRow(ctx, gameQuery, channelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrGameNotFound
		}
		return nil, nil, wrap("get game", err)
	}

	players, err := r.players(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	return g, players, nil
}

func (r *GameRepository) players(ctx context.Context, channelID int64) ([]model.PlayerRow, error) {
	const query = `
		SELECT channel_id, user_id, seat, name, chips, used, bet, forfeits, state
		FROM players
		WHERE channel_id = $1
		ORDER BY seat
	`

	rows, err := r.q.Query(ctx, query, channelID)
	if err != nil {
		return nil, wrap("get players", err)
	}
	defer rows.Close()

	var players []model.PlayerRow
	for rows.Next() {
		var (
			p                  model.PlayerRow
			balance, used, bet []int64
		)
		err := rows.Scan(&p.ChannelID, &p.UserID, &p.Seat, &p.Name, &balance, &used, &bet, &p.Forfeits, &p.State)
		if err != nil {
			return nil, wrap("scan player", err)
		}
		if p.Chips, err = chips.FromSlice(balance); err != nil {
			return nil, wrap("decode player chips", err)
		}
		if p.Used, err = chips.FromSlice(used); err != nil {
			return nil, wrap("decode player used chips", err)
		}
		if p.Bet, err = chips.FromSlice(bet); err != nil {
			return nil, wrap("decode player bet", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate players", err)
	}
	return players, nil
}

// Exists reports whether the channel has a table.
func (r *GameRepository) Exists(ctx context.Context, channelID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM games WHERE channel_id = $1)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, channelID).Scan(&exists); err != nil {
		return false, wrap("check game", err)
	}
	return exists, nil
}

// Create inserts a new table with its roster.
// Returns ErrGameExists when the channel already has one.
func (r *GameRepository) Create(ctx context.Context, g *model.GameRow, players []model.PlayerRow) error {
	const query = `
		INSERT INTO games (channel_id, type, stake, bet, started, bet_turn, round_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		g.ChannelID, g.Type, g.Stake, g.Bet.Slice(), g.Started, g.BetTurn, g.RoundID, jsonOr(g.State, "{}"),
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrGameExists
		}
		return wrap("create game", err)
	}
	return r.insertPlayers(ctx, g.ChannelID, players)
}

// Save overwrites an existing table and replaces its roster.
func (r *GameRepository) Save(ctx context.Context, g *model.GameRow, players []model.PlayerRow) error {
	const query = `
		UPDATE games
		SET type = $2, stake = $3, bet = $4, started = $5, bet_turn = $6, round_id = $7, state = $8, updated_at = NOW()
		WHERE channel_id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		g.ChannelID, g.Type, g.Stake, g.Bet.Slice(), g.Started, g.BetTurn, g.RoundID, jsonOr(g.State, "{}"),
	).Scan(&g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrGameNotFound
		}
		return wrap("save game", err)
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM players WHERE channel_id = $1`, g.ChannelID); err != nil {
		return wrap("clear players", err)
	}
	return r.insertPlayers(ctx, g.ChannelID, players)
}

func (r *GameRepository) insertPlayers(ctx context.Context, channelID int64, players []model.PlayerRow) error {
	const query = `
		INSERT INTO players (channel_id, user_id, seat, name, chips, used, bet, forfeits, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, p := range players {
		_, err := r.q.Exec(ctx, query,
			channelID, p.UserID, p.Seat, p.Name,
			p.Chips.Slice(), p.Used.Slice(), p.Bet.Slice(),
			jsonOr(p.Forfeits, "[]"), jsonOr(p.State, "{}"),
		)
		if err != nil {
			return wrap("insert player", err)
		}
	}
	return nil
}

// Delete removes a table and, by cascade, its roster. It reports whether a
// table existed.
func (r *GameRepository) Delete(ctx context.Context, channelID int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM games WHERE channel_id = $1`, channelID)
	if err != nil {
		return false, wrap("delete game", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns every open table ordered by channel.
func (r *GameRepository) List(ctx context.Context) ([]*model.GameRow, error) {
	const query = `SELECT ` + gameColumns + ` FROM games ORDER BY channel_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrap("list games", err)
	}
	defer rows.Close()

	var games []*model.GameRow
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, wrap("scan game", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate games", err)
	}
	return games, nil
}
