package handlers

import (
	"bytes"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-shop-bot/internal/commands"
	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/permissions"
	"xui-shop-bot/internal/services"
	"xui-shop-bot/internal/storage"
)

// UserContextKey is the telebot context key the middleware stores the
// resolved user row under
const UserContextKey = "user"

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	vpnService   *services.VPNService
	stateService *services.UserStateService
	qrService    *services.QRService
	config       *config.Config
	logger       *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(
	vpnService *services.VPNService,
	stateService *services.UserStateService,
	qrService *services.QRService,
	config *config.Config,
	logger *logrus.Logger,
) BaseHandler {
	return BaseHandler{
		vpnService:   vpnService,
		stateService: stateService,
		qrService:    qrService,
		config:       config,
		logger:       logger,
	}
}

// CanHandle checks if the handler can handle the given access type
func (h *BaseHandler) CanHandle(accessType permissions.AccessType) bool {
	// Base handler can't handle any access type directly
	return false
}

// currentUser returns the user row resolved by the bot middleware
func (h *BaseHandler) currentUser(c telebot.Context) *storage.User {
	if user, ok := c.Get(UserContextKey).(*storage.User); ok {
		return user
	}
	return nil
}

// sendTextMessage sends a text message with optional markup
func (h *BaseHandler) sendTextMessage(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{
		ParseMode: telebot.ModeHTML,
	}

	if markup != nil {
		opts.ReplyMarkup = markup
	}

	_, err := c.Bot().Send(c.Recipient(), text, opts)
	if err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
	}
	return err
}

// sendQRCode sends a QR code for the given text
func (h *BaseHandler) sendQRCode(c telebot.Context, text string) error {
	qrBytes, err := h.qrService.GenerateQR(text)
	if err != nil {
		h.logger.Errorf("Failed to generate QR code: %v", err)
		return err
	}

	reader := bytes.NewReader(qrBytes)
	photo := &telebot.Photo{File: telebot.FromReader(reader)}

	_, err = c.Bot().Send(c.Recipient(), photo)
	if err != nil {
		h.logger.Errorf("Failed to send QR code: %v", err)
	}
	return err
}

// createMainKeyboard creates the main keyboard for the given access type
func (h *BaseHandler) createMainKeyboard(accessType permissions.AccessType) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	rows := []telebot.Row{
		{
			telebot.Btn{Text: commands.MySubscription},
			telebot.Btn{Text: commands.SubscriptionKey},
		},
		{
			telebot.Btn{Text: commands.ActivatePromocode},
		},
	}

	if accessType == permissions.Admin {
		rows = append(rows, telebot.Row{
			telebot.Btn{Text: commands.NewPromocode},
			telebot.Btn{Text: commands.Stats},
		})
	}

	markup.Reply(rows...)
	return markup
}

// createReturnKeyboard creates a keyboard with a return button
func (h *BaseHandler) createReturnKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{
		ResizeKeyboard: true,
	}

	markup.Reply(
		telebot.Row{
			telebot.Btn{Text: commands.ReturnToMainMenu},
		},
	)

	return markup
}
