package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	errs "xui-shop-bot/internal/errors"
)

// GetPromocode looks up a promocode by its code. Returns (nil, nil) when no
// row exists.
func (s *Storage) GetPromocode(ctx context.Context, code string) (*Promocode, error) {
	var promocode Promocode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&promocode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &promocode, nil
}

// CreatePromocode stores a new promocode
func (s *Storage) CreatePromocode(ctx context.Context, promocode *Promocode) error {
	return s.db.WithContext(ctx).Create(promocode).Error
}

// ConsumePromocode flips the one-shot activation flag in a single
// transaction. Fails with a PromocodeError if the code is unknown or has
// already been consumed.
func (s *Storage) ConsumePromocode(ctx context.Context, code string, tgID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var promocode Promocode
		err := tx.Where("code = ?", code).First(&promocode).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &errs.PromocodeError{Code: code, Message: "not found"}
		}
		if err != nil {
			return err
		}

		if promocode.IsActivated {
			return &errs.PromocodeError{Code: code, Message: "already activated"}
		}

		return tx.Model(&promocode).Updates(map[string]interface{}{
			"is_activated": true,
			"activated_by": tgID,
		}).Error
	})
}

// CountActivatedPromocodes returns the number of consumed promocodes
func (s *Storage) CountActivatedPromocodes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Promocode{}).Where("is_activated = ?", true).Count(&count).Error
	return count, err
}
