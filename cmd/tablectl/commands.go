package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"casino-table-bot/internal/game"
	"casino-table-bot/internal/pkg/db"
)

type MigrateCmd struct {
	Down int `kong:"help='Roll back this many migrations instead of applying'"`
}

func (c *MigrateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Down > 0 {
		if err := db.Rollback(cfg.Database.DSN(), c.Down); err != nil {
			return err
		}
		fmt.Printf("rolled back %d migration(s)\n", c.Down)
		return nil
	}
	if err := db.Migrate(cfg.Database.DSN()); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()

	rows, err := a.tables.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tTYPE\tSTAKE\tBET\tUPDATED")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.ChannelID, r.Type, game.Stake(r.Stake), r.Bet, r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

type ShowGameCmd struct {
	Channel int64 `arg:"" help:"Channel ID"`
}

func (c *ShowGameCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()

	tv, err := a.tables.Show(ctx, c.Channel)
	if err != nil {
		return err
	}
	gm := tv.Game
	fmt.Printf("channel %d: %s, stake %s, started %v\n", gm.ChannelID, gm.Type, gm.Stake, gm.Started)
	fmt.Printf("round bet %s, round %s\n", gm.Bet, gm.RoundID)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEAT\tUSER\tNAME\tCHIPS\tUSED\tBET\tFORFEITS")
	for i, s := range tv.Seats {
		marker := ""
		if i == tv.BetTurn {
			marker = "*"
		}
		fmt.Fprintf(w, "%d%s\t%d\t%s\t%s\t%s\t%s\t%d\n", i+1, marker, s.UserID, s.Name, s.Chips, s.Used, s.Bet, len(s.Forfeits))
	}
	return w.Flush()
}

type EndGameCmd struct {
	Channel int64 `arg:"" help:"Channel ID"`
}

func (c *EndGameCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()

	ended, err := a.tables.ForceEnd(ctx, c.Channel)
	if err != nil {
		return err
	}
	if !ended {
		return errors.New("no game in that channel")
	}
	fmt.Printf("ended the game in channel %d\n", c.Channel)
	return nil
}

type HistoryCmd struct {
	Account string `arg:"" help:"Account name"`
	Limit   int    `kong:"default='20',help='Number of entries to show'"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	ctx := context.Background()
	a, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()

	entries, err := a.accounts.Audit(ctx, c.Account, c.Limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tKIND\tAMOUNT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Kind, e.Amount)
	}
	return w.Flush()
}
