package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"xui-shop-bot/internal/config"
	"xui-shop-bot/internal/constants"
	errs "xui-shop-bot/internal/errors"
	"xui-shop-bot/internal/models"
	"xui-shop-bot/internal/storage"
)

// PanelClient is the slice of the 3X-UI API the VPN service needs
type PanelClient interface {
	Login(ctx context.Context) error
	GetClientByEmail(ctx context.Context, email string) (*models.RemoteClient, error)
	AddClient(ctx context.Context, inboundID int, client models.RemoteClient) error
	UpdateClient(ctx context.Context, clientID string, inboundID int, client models.RemoteClient) error
	ResetClientTraffic(ctx context.Context, inboundID int, email string) error
}

// UserStore is the slice of storage the VPN service needs
type UserStore interface {
	GetUserByTgID(ctx context.Context, tgID int64) (*storage.User, error)
}

// VPNService reconciles local subscriptions onto remote panel clients.
//
// The panel has no upsert primitive, so every grant is an existence check
// followed by a create or an update. Both paths run under a per-user mutex
// so that concurrent grants for the same user cannot both observe "absent"
// and double-create the client.
type VPNService struct {
	panel      PanelClient
	users      UserStore
	promocodes *PromocodeService
	config     config.PanelConfig
	logger     *logrus.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewVPNService creates a new VPN service
func NewVPNService(
	panel PanelClient,
	users UserStore,
	promocodes *PromocodeService,
	cfg config.PanelConfig,
	logger *logrus.Logger,
) *VPNService {
	return &VPNService{
		panel:      panel,
		users:      users,
		promocodes: promocodes,
		config:     cfg,
		logger:     logger,
		locks:      make(map[int64]*sync.Mutex),
	}
}

// Initialize authenticates against the panel. Must complete before any other
// operation; callers treat failure as fatal.
func (s *VPNService) Initialize(ctx context.Context) error {
	s.logger.Info("Logging into panel API...")
	if err := s.panel.Login(ctx); err != nil {
		return fmt.Errorf("panel login failed: %w", err)
	}
	s.logger.Info("Logged into panel API successfully")
	return nil
}

// ClientExists checks whether a remote client exists for the user. Returns
// (nil, nil) when the client is absent; transport failures propagate so the
// caller can tell "no subscription" from "panel unreachable".
func (s *VPNService) ClientExists(ctx context.Context, tgID int64) (*models.RemoteClient, error) {
	client, err := s.panel.GetClientByEmail(ctx, strconv.FormatInt(tgID, 10))
	if errs.IsClientNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetClientData retrieves the derived subscription view for a user.
//
// A non-positive quota means the panel treats the client as unlimited, so
// both totals collapse to -1. Remaining traffic is not clamped and may go
// negative when usage exceeds quota. A zero expiry is normalized to -1.
// Returns errors.ErrClientNotFound when the user has no remote client.
func (s *VPNService) GetClientData(ctx context.Context, tgID int64) (*models.ClientData, error) {
	client, err := s.panel.GetClientByEmail(ctx, strconv.FormatInt(tgID, 10))
	if err != nil {
		return nil, err
	}

	used := client.Up + client.Down

	total := client.Total
	remaining := total - used
	if total <= 0 {
		total = constants.Unlimited
		remaining = constants.Unlimited
	}

	expiry := client.ExpiryTime
	if expiry == 0 {
		expiry = constants.Unlimited
	}

	data := &models.ClientData{
		TrafficTotal:     total,
		TrafficRemaining: remaining,
		TrafficUsed:      used,
		TrafficUp:        client.Up,
		TrafficDown:      client.Down,
		ExpiryTime:       expiry,
	}

	s.logger.Debugf("Retrieved client data for %d: %+v", tgID, data)
	return data, nil
}

// UpdateClient rewrites a user's remote client with a new quota and expiry.
//
// With replaceTraffic false the granted traffic is added to the current
// quota, otherwise it replaces it. With replaceDuration false the granted
// days extend the current expiry, otherwise they count from now. The update
// is followed by a usage-counter reset; a reset failure is surfaced but the
// update is not rolled back, so counters may briefly disagree with the quota.
func (s *VPNService) UpdateClient(ctx context.Context, user *storage.User, trafficGB, durationDays int, replaceTraffic, replaceDuration bool) error {
	s.logger.Infof("Updating client %d with traffic=%d GB and duration=%d days", user.TgID, trafficGB, durationDays)

	client, err := s.panel.GetClientByEmail(ctx, strconv.FormatInt(user.TgID, 10))
	if err != nil {
		return fmt.Errorf("failed to fetch client %d: %w", user.TgID, err)
	}

	var newTrafficBytes int64
	if replaceTraffic {
		newTrafficBytes = GbToBytes(trafficGB)
	} else {
		newTrafficBytes = client.Total + GbToBytes(trafficGB)
	}

	var newExpiryTime int64
	if replaceDuration {
		newExpiryTime = DaysToTimestamp(durationDays)
	} else {
		newExpiryTime = AddDaysToTimestamp(client.ExpiryTime, durationDays)
	}

	inboundID := client.InboundID
	if inboundID == 0 {
		inboundID = s.config.InboundID
	}

	updated := models.RemoteClient{
		Email:      client.Email,
		Enable:     true,
		ID:         user.VpnID,
		SubID:      user.VpnID,
		Flow:       s.config.Flow,
		LimitIP:    s.config.LimitIP,
		TotalGB:    newTrafficBytes,
		ExpiryTime: newExpiryTime,
	}

	if err := s.panel.UpdateClient(ctx, user.VpnID, inboundID, updated); err != nil {
		return fmt.Errorf("failed to update client %d: %w", user.TgID, err)
	}

	if err := s.panel.ResetClientTraffic(ctx, inboundID, client.Email); err != nil {
		// Accepted inconsistency window: the quota is already rewritten and
		// is not rolled back when the counter reset fails.
		s.logger.Errorf("Failed to reset traffic for client %d after update: %v", user.TgID, err)
		return fmt.Errorf("client %d updated but traffic reset failed: %w", user.TgID, err)
	}

	s.logger.Infof("Client %d updated successfully", user.TgID)
	return nil
}

// CreateClient creates a new remote client for the user
func (s *VPNService) CreateClient(ctx context.Context, user *storage.User, trafficGB, durationDays int) error {
	s.logger.Infof("Creating new client %d with traffic=%d GB and duration=%d days", user.TgID, trafficGB, durationDays)

	client := models.RemoteClient{
		Email:      strconv.FormatInt(user.TgID, 10),
		Enable:     true,
		ID:         user.VpnID,
		SubID:      user.VpnID,
		Flow:       s.config.Flow,
		LimitIP:    s.config.LimitIP,
		TotalGB:    GbToBytes(trafficGB),
		ExpiryTime: DaysToTimestamp(durationDays),
	}

	if err := s.panel.AddClient(ctx, s.config.InboundID, client); err != nil {
		return fmt.Errorf("failed to create client %d: %w", user.TgID, err)
	}

	s.logger.Infof("Successfully created client for %d", user.TgID)
	return nil
}

// CreateOrUpdateSubscription grants traffic and duration to a user, creating
// the remote client when none exists. The existence check and the mutation
// run under the user's lock.
func (s *VPNService) CreateOrUpdateSubscription(ctx context.Context, tgID int64, trafficGB, durationDays int) error {
	lock := s.userLock(tgID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.lookupUser(ctx, tgID)
	if err != nil {
		return err
	}

	return s.ensureSubscription(ctx, user, trafficGB, durationDays)
}

// ActivatePromocode grants a promocode's traffic and duration to a user.
//
// The code is validated first: an unknown or spent code is rejected without
// any panel call. The remote grant runs before the code is consumed, so a
// panel failure leaves the promocode unspent and retryable.
func (s *VPNService) ActivatePromocode(ctx context.Context, tgID int64, code string) (*storage.Promocode, error) {
	lock := s.userLock(tgID)
	lock.Lock()
	defer lock.Unlock()

	promocode, err := s.promocodes.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if promocode == nil || promocode.IsActivated {
		return nil, &errs.PromocodeError{Code: code, Message: "invalid or already used"}
	}

	user, err := s.lookupUser(ctx, tgID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSubscription(ctx, user, promocode.Traffic, promocode.Duration); err != nil {
		return nil, err
	}

	if err := s.promocodes.Activate(ctx, code, tgID); err != nil {
		return nil, err
	}

	s.logger.Infof("User %d activated promocode %s", tgID, code)
	return promocode, nil
}

// SubscriptionKey builds the user's subscription key: the configured base
// URL concatenated with the vpn_id, nothing in between.
func (s *VPNService) SubscriptionKey(ctx context.Context, tgID int64) (string, error) {
	user, err := s.lookupUser(ctx, tgID)
	if err != nil {
		return "", err
	}
	return s.config.SubscriptionURL + user.VpnID, nil
}

// ensureSubscription dispatches to update or create based on remote
// existence. Callers must hold the user's lock.
func (s *VPNService) ensureSubscription(ctx context.Context, user *storage.User, trafficGB, durationDays int) error {
	client, err := s.ClientExists(ctx, user.TgID)
	if err != nil {
		return err
	}

	if client != nil {
		return s.UpdateClient(ctx, user, trafficGB, durationDays, false, false)
	}
	return s.CreateClient(ctx, user, trafficGB, durationDays)
}

// lookupUser fetches the user row, converting absence into an error
func (s *VPNService) lookupUser(ctx context.Context, tgID int64) (*storage.User, error) {
	user, err := s.users.GetUserByTgID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d not found", tgID)
	}
	return user, nil
}

// userLock returns the mutex serializing subscription mutations for a user
func (s *VPNService) userLock(tgID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[tgID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[tgID] = lock
	}
	return lock
}

// GbToBytes converts a traffic volume in gigabytes to bytes
func GbToBytes(trafficGB int) int64 {
	return int64(trafficGB) * constants.BytesInGB
}

// DaysToTimestamp converts a number of days from now to a Unix timestamp in
// milliseconds
func DaysToTimestamp(days int) int64 {
	return AddDaysToTimestamp(time.Now().UTC().UnixMilli(), days)
}

// AddDaysToTimestamp adds a number of days to a Unix millisecond timestamp
func AddDaysToTimestamp(timestamp int64, days int) int64 {
	return timestamp + int64(days)*constants.MillisecondsInDay
}
