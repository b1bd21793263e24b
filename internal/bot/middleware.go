package bot

import (
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"casino-table-bot/internal/config"
)

// SeenUsers remembers who has played in a whitelisted group. Only they may
// talk to the bot privately, where hands and decks are sent.
type SeenUsers struct {
	mu    sync.RWMutex
	users map[int64]struct{}
}

// NewSeenUsers creates an empty SeenUsers.
func NewSeenUsers() *SeenUsers {
	return &SeenUsers{users: make(map[int64]struct{})}
}

// Add marks userID as seen.
func (s *SeenUsers) Add(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = struct{}{}
}

// Has reports whether userID was seen.
func (s *SeenUsers) Has(userID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok
}

// WhitelistMiddleware drops updates from chats that are not whitelisted.
// Private chats pass for users seen in a whitelisted group, or for everyone
// when the whitelist is empty.
func WhitelistMiddleware(cfg *config.Config, seen *SeenUsers) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if chat.Type == tele.ChatPrivate {
				if seen.Has(sender.ID) || len(cfg.Whitelist.Chats) == 0 {
					return next(c)
				}
				log.Debug().
					Int64("user_id", sender.ID).
					Msg("Ignoring private chat from unknown user")
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring command from non-whitelisted chat")
				return nil
			}

			seen.Add(sender.ID)
			return next(c)
		}
	}
}

// AdminMiddleware refuses commands from users outside admin.ids.
func AdminMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			if !cfg.IsAdmin(sender.ID) {
				log.Warn().
					Int64("user_id", sender.ID).
					Str("command", c.Text()).
					Msg("Non-admin attempted admin command")
				return c.Reply("❌ This command is for admins only")
			}

			return next(c)
		}
	}
}

// LoggingMiddleware logs every incoming update at debug level.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ev := log.Debug()
			if sender := c.Sender(); sender != nil {
				ev = ev.Int64("user_id", sender.ID).Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				ev = ev.Int64("chat_id", chat.ID).Str("chat_type", string(chat.Type))
			}
			ev.Str("text", c.Text()).Msg("Received message")

			return next(c)
		}
	}
}

// RecoveryMiddleware turns a handler panic into an apology.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					ev := log.Error().Interface("panic", r).Str("text", c.Text())
					if chat := c.Chat(); chat != nil {
						ev = ev.Int64("chat_id", chat.ID)
					}
					ev.Msg("Recovered from panic in handler")
					err = c.Reply("❌ Something went wrong, please try again later")
				}
			}()
			return next(c)
		}
	}
}
