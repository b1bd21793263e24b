// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/config"
	"casino-table-bot/internal/game"
	"casino-table-bot/internal/handler"
	"casino-table-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot  *tele.Bot
	cfg  *config.Config
	seen *SeenUsers

	// Handlers
	accountHandler *handler.AccountHandler
	tableHandler   *handler.TableHandler
	adminHandler   *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config         *config.Config
	AccountService *service.AccountService
	TableService   *service.TableService
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	poll := deps.Config.Bot.PollInterval
	if poll <= 0 {
		poll = 10 * time.Second
	}
	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: poll},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		seen:           NewSeenUsers(),
		accountHandler: handler.NewAccountHandler(deps.AccountService),
		tableHandler:   handler.NewTableHandler(deps.TableService),
		adminHandler:   handler.NewAdminHandler(deps.TableService, deps.AccountService),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.seen))
	b.bot.Use(LoggingMiddleware())
}

// prefixes maps the per-type command prefixes to their table type.
var prefixes = map[string]game.Type{
	"bj": game.TypeBlackjack,
	"ty": game.TypeTourney,
	"mg": game.TypeMisc,
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	// Chip ledger
	b.bot.Handle("/open_account", b.accountHandler.HandleOpen)
	b.bot.Handle("/check_account", b.accountHandler.HandleCheck)
	b.bot.Handle("/accounts", b.accountHandler.HandleList)
	b.bot.Handle("/deposit", b.accountHandler.HandleDeposit)
	b.bot.Handle("/withdraw", b.accountHandler.HandleWithdraw)
	b.bot.Handle("/update_name", b.accountHandler.HandleRename)
	b.bot.Handle("/history", b.accountHandler.HandleHistory)

	// Tables
	t := b.tableHandler
	b.bot.Handle("/create", t.HandleCreate)
	for prefix, typ := range prefixes {
		b.bot.Handle("/"+prefix+"_create", t.CreateAs(typ))
		b.bot.Handle("/"+prefix+"_join", t.JoinAs(typ))
	}
	b.bot.Handle("/join", t.HandleJoin)
	b.bot.Handle("/table", t.HandleTable)
	b.bot.Handle("/bet", t.HandleBet)
	b.bot.Handle("/concede", t.HandleConcede)
	b.bot.Handle("/chips", t.HandleChips)
	b.bot.Handle("/use", t.HandleUse)
	b.bot.Handle("/convert", t.HandleConvert)
	b.bot.Handle("/conversions", t.HandleConversions)
	b.bot.Handle("/rename", t.HandleRename)
	b.bot.Handle("/forfeit", t.HandleAddForfeit)
	b.bot.Handle("/forfeit_rm", t.HandleRemoveForfeit)
	b.bot.Handle("/forfeit_done", t.HandleToggleForfeit)
	b.bot.Handle("/forfeits", t.HandleListForfeits)

	// Blackjack
	b.bot.Handle("/hit", t.HandleHit)
	b.bot.Handle("/stand", t.HandleStand)
	b.bot.Handle("/hand", t.HandleHand)
	b.bot.Handle("/hands", t.HandleHands)

	// Tournament
	b.bot.Handle("/play", t.HandlePlay)
	b.bot.Handle("/cards", t.HandleCards)
	b.bot.Handle("/recon", t.HandleRecon)

	// Misc
	b.bot.Handle("/win_bet", t.HandleWinBet)
	b.bot.Handle("/deck", t.HandleDeck)
	b.bot.Handle("/draw", t.HandleDraw)
	b.bot.Handle("/shuffle", t.HandleShuffle)
	b.bot.Handle("/roll", t.HandleRoll)

	// Admin handlers (with admin middleware)
	a := b.adminHandler
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/force_end_game", a.HandleForceEnd)
	adminGroup.Handle("/kick", a.HandleKick)
	adminGroup.Handle("/set_chips", a.HandleSetChips)
	adminGroup.Handle("/set_used", a.HandleSetUsed)
	adminGroup.Handle("/set_bet", a.HandleSetBet)
	adminGroup.Handle("/set_stake", a.HandleSetStake)
	adminGroup.Handle("/set_bet_turn", a.HandleSetBetTurn)
	adminGroup.Handle("/merge", a.HandleMerge)
	adminGroup.Handle("/swap_forfeits", a.HandleSwapForfeits)
	adminGroup.Handle("/show_deck", a.HandleShowDeck)
	adminGroup.Handle("/shuffle_deck", a.HandleShuffleDeck)
	adminGroup.Handle("/transfer_account", a.HandleTransferAccount)
	adminGroup.Handle("/audit", a.HandleAudit)
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}
