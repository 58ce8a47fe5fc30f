package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-shop-bot/internal/commands"
	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/models"
	"xui-shop-bot/internal/permissions"
	"xui-shop-bot/internal/services"
	"xui-shop-bot/internal/storage"
)

// AdminHandler handles admin commands on top of the member surface
type AdminHandler struct {
	*MemberHandler
	promocodeService *services.PromocodeService
	store            *storage.Storage
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	vpnService *services.VPNService,
	promocodeService *services.PromocodeService,
	stateService *services.UserStateService,
	qrService *services.QRService,
	store *storage.Storage,
	config *config.Config,
	logger *logrus.Logger,
) *AdminHandler {
	handler := &AdminHandler{
		MemberHandler:    NewMemberHandler(vpnService, stateService, qrService, config, logger),
		promocodeService: promocodeService,
		store:            store,
	}

	handler.commandHandlers[commands.Start] = handler.handleStart
	handler.commandHandlers[commands.ReturnToMainMenu] = handler.handleStart
	handler.commandHandlers[commands.NewPromocode] = handler.handleNewPromocode
	handler.commandHandlers[commands.Stats] = handler.handleStats
	return handler
}

// CanHandle checks if the handler can handle the given access type
func (h *AdminHandler) CanHandle(accessType permissions.AccessType) bool {
	return accessType == permissions.Admin
}

// Handle handles a message from Telegram
func (h *AdminHandler) Handle(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	state, err := h.stateService.GetState(userID)
	if err != nil {
		h.logger.Errorf("Failed to get user state: %v", err)
		return err
	}

	switch state.State {
	case models.AwaitingPromoTraffic:
		return h.handlePromoTrafficInput(c)
	case models.AwaitingPromoDuration:
		return h.handlePromoDurationInput(ctx, c, state)
	case models.AwaitingPromocode:
		return h.handlePromocodeInput(ctx, c)
	default:
		return h.handleDefaultState(c)
	}
}

// handleStart handles the /start command
func (h *AdminHandler) handleStart(c telebot.Context) error {
	if err := h.stateService.ClearState(c.Sender().ID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
		return err
	}

	markup := h.createMainKeyboard(permissions.Admin)
	return h.sendTextMessage(c, "Welcome back, admin!", markup)
}

// handleNewPromocode starts the promocode minting flow
func (h *AdminHandler) handleNewPromocode(c telebot.Context) error {
	if err := h.stateService.WithConversationState(c.Sender().ID, models.AwaitingPromoTraffic); err != nil {
		h.logger.Errorf("Failed to set user state: %v", err)
		return err
	}

	return h.sendTextMessage(c, "Enter the traffic grant in GB:", h.createReturnKeyboard())
}

// handlePromoTrafficInput handles the traffic amount for a new promocode
func (h *AdminHandler) handlePromoTrafficInput(c telebot.Context) error {
	input := c.Text()
	if input == commands.ReturnToMainMenu || input == commands.Cancel {
		return h.handleStart(c)
	}

	traffic, err := strconv.Atoi(input)
	if err != nil || traffic <= 0 {
		return h.sendTextMessage(c, "Please enter a positive whole number of GB.", h.createReturnKeyboard())
	}

	if err := h.stateService.WithPayload(c.Sender().ID, input); err != nil {
		h.logger.Errorf("Failed to set user state payload: %v", err)
		return err
	}
	if err := h.stateService.WithConversationState(c.Sender().ID, models.AwaitingPromoDuration); err != nil {
		h.logger.Errorf("Failed to set user state: %v", err)
		return err
	}

	return h.sendTextMessage(c, "Enter the duration in days:", h.createReturnKeyboard())
}

// handlePromoDurationInput handles the duration for a new promocode and mints it
func (h *AdminHandler) handlePromoDurationInput(ctx context.Context, c telebot.Context, state *models.UserState) error {
	input := c.Text()
	if input == commands.ReturnToMainMenu || input == commands.Cancel {
		return h.handleStart(c)
	}

	duration, err := strconv.Atoi(input)
	if err != nil || duration <= 0 {
		return h.sendTextMessage(c, "Please enter a positive whole number of days.", h.createReturnKeyboard())
	}

	if state.Payload == nil {
		h.logger.Errorf("Missing traffic payload for admin %d", c.Sender().ID)
		return h.handleStart(c)
	}
	traffic, err := strconv.Atoi(*state.Payload)
	if err != nil {
		h.logger.Errorf("Invalid traffic payload %q for admin %d", *state.Payload, c.Sender().ID)
		return h.handleStart(c)
	}

	promocode, err := h.promocodeService.Generate(ctx, traffic, duration)
	if err != nil {
		h.logger.Errorf("Failed to mint promocode: %v", err)
		return h.sendTextMessage(c, "Failed to create promocode. Please try again.", h.createReturnKeyboard())
	}

	if err := h.stateService.ClearState(c.Sender().ID); err != nil {
		h.logger.Errorf("Failed to clear user state: %v", err)
	}

	message := fmt.Sprintf("New promocode:\n\n<code>%s</code>\n\n%d GB for %d days.",
		promocode.Code, promocode.Traffic, promocode.Duration)
	return h.sendTextMessage(c, message, h.createMainKeyboard(permissions.Admin))
}

// handleStats shows bot usage statistics
func (h *AdminHandler) handleStats(c telebot.Context) error {
	ctx := context.Background()

	users, err := h.store.CountUsers(ctx)
	if err != nil {
		h.logger.Errorf("Failed to count users: %v", err)
		return h.sendTextMessage(c, "Failed to load stats. Please try again.", h.createReturnKeyboard())
	}

	activated, err := h.store.CountActivatedPromocodes(ctx)
	if err != nil {
		h.logger.Errorf("Failed to count promocodes: %v", err)
		return h.sendTextMessage(c, "Failed to load stats. Please try again.", h.createReturnKeyboard())
	}

	servers, err := h.store.ListServers(ctx)
	if err != nil {
		h.logger.Errorf("Failed to list servers: %v", err)
		return h.sendTextMessage(c, "Failed to load stats. Please try again.", h.createReturnKeyboard())
	}

	online := 0
	for _, server := range servers {
		if server.Online {
			online++
		}
	}

	message := fmt.Sprintf("<b>Stats:</b>\n\n"+
		"Users: %d\n"+
		"Activated promocodes: %d\n"+
		"Servers online: %d/%d",
		users, activated, online, len(servers))
	return h.sendTextMessage(c, message, h.createReturnKeyboard())
}
