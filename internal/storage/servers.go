package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GetAvailableServer returns the online server with the most free capacity.
// Returns (nil, nil) when no server is online.
func (s *Storage) GetAvailableServer(ctx context.Context) (*Server, error) {
	var server Server
	err := s.db.WithContext(ctx).
		Where("online = ?", true).
		Order("max_clients DESC").
		First(&server).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// ListServers returns all known servers
func (s *Storage) ListServers(ctx context.Context) ([]Server, error) {
	var servers []Server
	err := s.db.WithContext(ctx).Find(&servers).Error
	return servers, err
}
