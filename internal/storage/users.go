package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GetUserByTgID looks up a user by their Telegram id. Returns (nil, nil)
// when no row exists.
func (s *Storage) GetUserByTgID(ctx context.Context, tgID int64) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("tg_id = ?", tgID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByVpnID looks up a user by their vpn_id. Returns (nil, nil) when no
// row exists.
func (s *Storage) GetUserByVpnID(ctx context.Context, vpnID string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("vpn_id = ?", vpnID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateUser returns the user for tgID, creating the row on first
// contact. The vpnID is only used for creation; an existing row keeps its
// original vpn_id.
func (s *Storage) GetOrCreateUser(ctx context.Context, tgID int64, vpnID, firstName, username string) (*User, error) {
	user, err := s.GetUserByTgID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &User{
		TgID:      tgID,
		VpnID:     vpnID,
		FirstName: firstName,
		Username:  username,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// A concurrent first contact may have won the insert
		existing, getErr := s.GetUserByTgID(ctx, tgID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}

	s.logger.Infof("New user %d created", tgID)
	return user, nil
}

// CountUsers returns the total number of known users
func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&User{}).Count(&count).Error
	return count, err
}
