package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"xui-shop-bot/internal/constants"
	errs "xui-shop-bot/internal/errors"
	"xui-shop-bot/internal/storage"
)

// PromocodeStore is the slice of storage the promocode service needs
type PromocodeStore interface {
	GetPromocode(ctx context.Context, code string) (*storage.Promocode, error)
	CreatePromocode(ctx context.Context, promocode *storage.Promocode) error
	ConsumePromocode(ctx context.Context, code string, tgID int64) error
}

// PromocodeService enforces single-use semantics on promocodes
type PromocodeService struct {
	store  PromocodeStore
	logger *logrus.Logger
}

// NewPromocodeService creates a new promocode service
func NewPromocodeService(store PromocodeStore, logger *logrus.Logger) *PromocodeService {
	return &PromocodeService{
		store:  store,
		logger: logger,
	}
}

// Get looks up a promocode by its code. Returns (nil, nil) for an unknown
// code.
func (s *PromocodeService) Get(ctx context.Context, code string) (*storage.Promocode, error) {
	code = NormalizeCode(code)
	if err := validateCode(code); err != nil {
		return nil, nil
	}
	return s.store.GetPromocode(ctx, code)
}

// Activate consumes a promocode for a user. The flip is transactional and
// final; a spent code cannot be reactivated.
func (s *PromocodeService) Activate(ctx context.Context, code string, tgID int64) error {
	code = NormalizeCode(code)
	if err := s.store.ConsumePromocode(ctx, code, tgID); err != nil {
		return err
	}
	s.logger.Infof("Promocode %s consumed by user %d", code, tgID)
	return nil
}

// Generate mints a new promocode with the given grants
func (s *PromocodeService) Generate(ctx context.Context, trafficGB, durationDays int) (*storage.Promocode, error) {
	if trafficGB <= 0 {
		return nil, &errs.ValidationError{Field: "traffic", Message: "must be positive"}
	}
	if durationDays <= 0 {
		return nil, &errs.ValidationError{Field: "duration", Message: "must be positive"}
	}

	promocode := &storage.Promocode{
		Code:     newCode(),
		Traffic:  trafficGB,
		Duration: durationDays,
	}

	if err := s.store.CreatePromocode(ctx, promocode); err != nil {
		return nil, err
	}

	s.logger.Infof("Promocode %s minted: %d GB / %d days", promocode.Code, trafficGB, durationDays)
	return promocode, nil
}

// NormalizeCode canonicalizes user promocode input
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validateCode rejects input that cannot be a promocode
func validateCode(code string) error {
	if len(code) < constants.MinPromocodeLength || len(code) > constants.MaxPromocodeLength {
		return &errs.ValidationError{Field: "code", Message: "invalid length"}
	}
	return nil
}

// newCode derives a short human-typeable code from a UUID
func newCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:12]
}
