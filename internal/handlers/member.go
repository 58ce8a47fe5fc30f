package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-shop-bot/internal/commands"
	"xui-shop-bot/internal/config"
	errs "xui-shop-bot/internal/errors"
	"xui-shop-bot/internal/helpers"
	"xui-shop-bot/internal/models"
	"xui-shop-bot/internal/permissions"
	"xui-shop-bot/internal/services"
)

// MemberHandler handles regular user commands
type MemberHandler struct {
	BaseHandler
	commandHandlers map[string]func(telebot.Context) error
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(
	vpnService *services.VPNService,
	stateService *services.UserStateService,
	qrService *services.QRService,
	config *config.Config,
	logger *logrus.Logger,
) *MemberHandler {
	handler := &MemberHandler{
		BaseHandler: NewBaseHandler(vpnService, stateService, qrService, config, logger),
	}

	handler.initializeCommands()
	return handler
}

// CanHandle checks if the handler can handle the given access type
func (h *MemberHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Member
}

// Handle handles a message from Telegram
func (h *MemberHandler) Handle(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	state, err := h.stateService.GetState(userID)
	if err != nil {
		h.logger.Errorf("Failed to get user state: %v", err)
		return err
	}

	switch state.State {
	case models.Default:
		return h.handleDefaultState(c)
	case models.AwaitingPromocode:
		return h.handlePromocodeInput(ctx, c)
	default:
		h.logger.Warnf("Unknown state: %d", state.State)
		return h.handleDefaultState(c)
	}
}

// initializeCommands initializes the command handlers
func (h *MemberHandler) initializeCommands() {
	h.commandHandlers = map[string]func(telebot.Context) error{
		commands.Start:             h.handleStart,
		commands.MySubscription:    h.handleMySubscription,
		commands.SubscriptionKey:   h.handleSubscriptionKey,
		commands.ActivatePromocode: h.handleActivatePromocode,
		commands.ReturnToMainMenu:  h.handleStart,
	}
}

// handleDefaultState handles the default state
func (h *MemberHandler) handleDefaultState(c telebot.Context) error {
	if handler, ok := h.commandHandlers[c.Text()]; ok {
		return handler(c)
	}

	// Unknown input falls back to the main menu
	return h.commandHandlers[commands.Start](c)
}

// handleStart handles the /start command
func (h *MemberHandler) handleStart(c telebot.Context) error {
	if err := h.stateService.ClearState(c.Sender().ID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
		return err
	}

	greeting := "Welcome to the VPN shop bot!"
	if user := h.currentUser(c); user != nil && user.FirstName != "" {
		greeting = fmt.Sprintf("Welcome, %s!", user.FirstName)
	}

	markup := h.createMainKeyboard(permissions.Member)
	return h.sendTextMessage(c, greeting+"\nManage your subscription below.", markup)
}

// handleMySubscription shows the user's subscription status
func (h *MemberHandler) handleMySubscription(c telebot.Context) error {
	data, err := h.vpnService.GetClientData(context.Background(), c.Sender().ID)
	if errs.IsClientNotFound(err) {
		return h.sendTextMessage(c,
			"You don't have an active subscription yet.\nActivate a promocode to get started.",
			h.createReturnKeyboard())
	}
	if err != nil {
		h.logger.Errorf("Failed to get client data for %d: %v", c.Sender().ID, err)
		return h.sendTextMessage(c, "Something went wrong. Please try again later.", h.createReturnKeyboard())
	}

	message := fmt.Sprintf("<b>Your subscription:</b>\n\n"+
		"Plan: %s\n"+
		"Remaining: %s\n"+
		"Used: %s (↑ %s / ↓ %s)\n"+
		"Expires in: %s",
		helpers.FormatTraffic(data.TrafficTotal),
		helpers.FormatTraffic(data.TrafficRemaining),
		helpers.FormatTraffic(data.TrafficUsed),
		helpers.FormatTraffic(data.TrafficUp),
		helpers.FormatTraffic(data.TrafficDown),
		helpers.FormatExpiry(data.ExpiryTime))

	if helpers.HasExpired(data.ExpiryTime) {
		message += "\n\n⚠️ Your subscription has expired. Activate a promocode to renew it."
	}

	return h.sendTextMessage(c, message, h.createReturnKeyboard())
}

// handleSubscriptionKey sends the user's subscription key with a QR code
func (h *MemberHandler) handleSubscriptionKey(c telebot.Context) error {
	key, err := h.vpnService.SubscriptionKey(context.Background(), c.Sender().ID)
	if err != nil {
		h.logger.Errorf("Failed to get subscription key for %d: %v", c.Sender().ID, err)
		return h.sendTextMessage(c, "Something went wrong. Please try again later.", h.createReturnKeyboard())
	}

	if err := h.sendTextMessage(c, fmt.Sprintf("Your subscription key:\n\n<code>%s</code>", key), h.createReturnKeyboard()); err != nil {
		return err
	}

	return h.sendQRCode(c, key)
}

// handleActivatePromocode starts the promocode input flow
func (h *MemberHandler) handleActivatePromocode(c telebot.Context) error {
	if err := h.stateService.WithConversationState(c.Sender().ID, models.AwaitingPromocode); err != nil {
		h.logger.Errorf("Failed to set user state: %v", err)
		return err
	}

	return h.sendTextMessage(c, "Enter your promocode:", h.createReturnKeyboard())
}

// handlePromocodeInput handles the promocode entered by the user
func (h *MemberHandler) handlePromocodeInput(ctx context.Context, c telebot.Context) error {
	input := c.Text()
	if input == commands.ReturnToMainMenu || input == commands.Cancel {
		return h.handleStart(c)
	}

	userID := c.Sender().ID
	h.logger.Infof("User %d entered promocode: %s", userID, input)

	promocode, err := h.vpnService.ActivatePromocode(ctx, userID, input)
	if err != nil {
		var promoErr *errs.PromocodeError
		if errors.As(err, &promoErr) {
			return h.sendTextMessage(c,
				fmt.Sprintf("Promocode <code>%s</code> is invalid or has already been used.", input),
				h.createReturnKeyboard())
		}

		h.logger.Errorf("Failed to activate promocode for %d: %v", userID, err)
		return h.sendTextMessage(c, "Something went wrong. Please try again later.", h.createReturnKeyboard())
	}

	if err := h.stateService.ClearState(userID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
	}

	message := fmt.Sprintf("✅ Promocode <code>%s</code> activated!\n\n"+
		"Added: %d GB for %d days.",
		promocode.Code, promocode.Traffic, promocode.Duration)
	return h.sendTextMessage(c, message, h.createMainKeyboard(permissions.Member))
}
