package telegrambot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/handlers"
	"xui-shop-bot/internal/permissions"
	"xui-shop-bot/internal/services"
	"xui-shop-bot/internal/storage"
)

// Bot represents the Telegram bot
type Bot struct {
	bot          *telebot.Bot
	config       *config.Config
	handlers     map[permissions.AccessType]handlers.MessageHandler
	stateService *services.UserStateService
	store        *storage.Storage
	permCtrl     *permissions.PermissionController
	logger       *logrus.Logger
}

// NewBot creates a new Telegram bot
func NewBot(
	cfg *config.Config,
	store *storage.Storage,
	stateService *services.UserStateService,
	vpnService *services.VPNService,
	promocodeService *services.PromocodeService,
	qrService *services.QRService,
	permCtrl *permissions.PermissionController,
	logger *logrus.Logger,
) (*Bot, error) {
	settings := telebot.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
			if c != nil {
				c.Send("An error occurred. Please try again later.")
			}
		},
	}

	b, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	factory := handlers.NewHandlerFactory(vpnService, promocodeService, stateService, qrService, store, cfg, logger)

	bot := &Bot{
		bot:          b,
		config:       cfg,
		handlers:     make(map[permissions.AccessType]handlers.MessageHandler),
		stateService: stateService,
		store:        store,
		permCtrl:     permCtrl,
		logger:       logger,
	}

	bot.handlers[permissions.Admin] = factory.CreateHandler(permissions.Admin)
	bot.handlers[permissions.Member] = factory.CreateHandler(permissions.Member)

	bot.setupMiddleware()

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting Telegram bot")

	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	b.bot.Start()
	return nil
}

// setupMiddleware sets up the bot middleware
func (b *Bot) setupMiddleware() {
	b.bot.Use(b.resolveUser)

	b.bot.Handle(telebot.OnText, b.handleUpdate)
	b.bot.Handle(telebot.OnCallback, b.handleUpdate)
	b.bot.Handle("/start", b.handleUpdate)
}

// resolveUser loads the sender's user row, creating it on first contact.
// The vpn_id is generated exactly once here; an existing row keeps its
// original vpn_id so the mapping to the remote client never breaks.
func (b *Bot) resolveUser(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil || sender.IsBot {
			return nil
		}

		b.logger.Infof("Received message from %d: %s", sender.ID, c.Text())

		user, err := b.store.GetOrCreateUser(
			context.Background(),
			sender.ID,
			uuid.NewString(),
			sender.FirstName,
			sender.Username,
		)
		if err != nil {
			b.logger.Errorf("Failed to resolve user %d: %v", sender.ID, err)
			return c.Send("An error occurred. Please try again later.")
		}

		c.Set(handlers.UserContextKey, user)
		return next(c)
	}
}

// handleUpdate handles an update from Telegram
func (b *Bot) handleUpdate(c telebot.Context) error {
	userID := c.Sender().ID

	accessType := b.permCtrl.GetAccessType(userID)

	handler, ok := b.handlers[accessType]
	if !ok {
		b.logger.Warnf("No handler for access type %d", accessType)
		return c.Send("You don't have permission to use this bot.")
	}

	ctx := context.Background()
	return handler.Handle(ctx, c)
}
