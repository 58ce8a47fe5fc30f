package handlers

import (
	"context"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/permissions"
	"xui-shop-bot/internal/services"
	"xui-shop-bot/internal/storage"
)

// MessageHandler defines the interface for handling Telegram messages
type MessageHandler interface {
	Handle(ctx context.Context, c telebot.Context) error
	CanHandle(accessType permissions.AccessType) bool
}

// HandlerFactory creates message handlers
type HandlerFactory struct {
	vpnService       *services.VPNService
	promocodeService *services.PromocodeService
	stateService     *services.UserStateService
	qrService        *services.QRService
	store            *storage.Storage
	config           *config.Config
	logger           *logrus.Logger
}

// NewHandlerFactory creates a new handler factory
func NewHandlerFactory(
	vpnService *services.VPNService,
	promocodeService *services.PromocodeService,
	stateService *services.UserStateService,
	qrService *services.QRService,
	store *storage.Storage,
	config *config.Config,
	logger *logrus.Logger,
) *HandlerFactory {
	return &HandlerFactory{
		vpnService:       vpnService,
		promocodeService: promocodeService,
		stateService:     stateService,
		qrService:        qrService,
		store:            store,
		config:           config,
		logger:           logger,
	}
}

// CreateHandler creates a message handler for the given access type
func (f *HandlerFactory) CreateHandler(accessType permissions.AccessType) MessageHandler {
	switch accessType {
	case permissions.Admin:
		return NewAdminHandler(f.vpnService, f.promocodeService, f.stateService, f.qrService, f.store, f.config, f.logger)
	default:
		return NewMemberHandler(f.vpnService, f.stateService, f.qrService, f.config, f.logger)
	}
}
