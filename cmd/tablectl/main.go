// Command tablectl inspects and repairs the table bot's database.
package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"casino-table-bot/internal/config"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/pkg/db"
	"casino-table-bot/internal/repository"
	"casino-table-bot/internal/service"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config string `kong:"default='config',help='Directory holding config.yaml'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

type CLI struct {
	Globals

	Migrate  MigrateCmd  `cmd:"" help:"Apply or roll back schema migrations"`
	List     ListCmd     `cmd:"" help:"List open tables"`
	ShowGame ShowGameCmd `cmd:"show-game" help:"Print a channel's table"`
	EndGame  EndGameCmd  `cmd:"end-game" help:"Force-end a channel's table"`
	History  HistoryCmd  `cmd:"" help:"Print an account's ledger history"`
}

// app is what the table commands run against.
type app struct {
	pool     *db.Pool
	tables   *service.TableService
	accounts *service.AccountService
}

func (g *Globals) load() (*config.Config, error) {
	level := zerolog.WarnLevel
	if g.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return config.Load(g.Config)
}

func (g *Globals) open(ctx context.Context) (*app, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	store := repository.NewStore(pool.Pool)
	env := game.Env{Rules: rules, Rand: game.SystemRand{}}
	return &app{
		pool:     pool,
		tables:   service.NewTableService(store, service.NewRegistry(), env, cfg.Engine.LockTimeout),
		accounts: service.NewAccountService(store, rules),
	}, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tablectl"),
		kong.Description("Operator tools for the casino table bot"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
