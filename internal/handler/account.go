package handler

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/service"
)

// AccountHandler handles chip ledger commands.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// HandleOpen handles /open_account <name>.
func (h *AccountHandler) HandleOpen(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /open_account <name>")
	}

	account, err := h.accountService.Open(ctx, sender.ID, args[0])
	if err != nil {
		return fail(c, "open_account", err)
	}
	return c.Reply("✅ Account opened\n\n" + renderAccount(account))
}

// HandleCheck handles /check_account <name>.
func (h *AccountHandler) HandleCheck(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("❌ Usage: /check_account <name>")
	}

	account, err := h.accountService.Balance(ctx, sender.ID, args[0])
	if err != nil {
		return fail(c, "check_account", err)
	}
	return c.Reply(renderAccount(account))
}

// HandleList handles /accounts.
func (h *AccountHandler) HandleList(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	accounts, err := h.accountService.List(ctx, sender.ID)
	if err != nil {
		return fail(c, "accounts", err)
	}
	return c.Reply(renderAccounts(accounts))
}

// HandleDeposit handles /deposit <name> <amounts...>.
func (h *AccountHandler) HandleDeposit(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Reply("❌ Usage: /deposit <name> <physical> [mental] [artificial] [supernatural] [merge] [swap]")
	}
	amount, err := parseVector(args[1:])
	if err != nil {
		return fail(c, "deposit", err)
	}

	account, err := h.accountService.Deposit(ctx, sender.ID, args[0], amount)
	if err != nil {
		return fail(c, "deposit", err)
	}
	return c.Reply("✅ Deposited " + amount.Describe() + "\n\n" + renderAccount(account))
}

// HandleWithdraw handles /withdraw <name> <amounts...>.
func (h *AccountHandler) HandleWithdraw(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 2 {
		return c.Reply("❌ Usage: /withdraw <name> <physical> [mental] [artificial] [supernatural] [merge] [swap]")
	}
	amount, err := parseVector(args[1:])
	if err != nil {
		return fail(c, "withdraw", err)
	}

	account, err := h.accountService.Withdraw(ctx, sender.ID, args[0], amount)
	if err != nil {
		return fail(c, "withdraw", err)
	}
	return c.Reply("✅ Withdrew " + amount.Describe() + "\n\n" + renderAccount(account))
}

// HandleRename handles /update_name <name> <new name>.
func (h *AccountHandler) HandleRename(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) != 2 {
		return c.Reply("❌ Usage: /update_name <name> <new name>")
	}

	account, err := h.accountService.Rename(ctx, sender.ID, args[0], args[1])
	if err != nil {
		return fail(c, "update_name", err)
	}
	return c.Reply("✅ Account " + args[0] + " is now " + account.Name)
}

// HandleHistory handles /history <name> [limit].
func (h *AccountHandler) HandleHistory(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 || len(args) > 2 {
		return c.Reply("❌ Usage: /history <name> [limit]")
	}
	limit := 0
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return c.Reply("❌ Limit must be a positive number")
		}
		limit = n
	}

	entries, err := h.accountService.History(ctx, sender.ID, args[0], limit)
	if err != nil {
		return fail(c, "history", err)
	}
	return c.Reply(renderHistory(args[0], entries))
}
