package services

import (
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
)

// QRService renders subscription keys as QR codes
type QRService struct {
	logger *logrus.Logger
}

// NewQRService creates a new QR code service
func NewQRService(logger *logrus.Logger) *QRService {
	return &QRService{
		logger: logger,
	}
}

// GenerateQR generates a QR code PNG for the given text
func (s *QRService) GenerateQR(text string) ([]byte, error) {
	s.logger.Debugf("Generating QR code for text: %s", text)

	qr, err := qrcode.Encode(text, qrcode.Medium, 256)
	if err != nil {
		s.logger.Errorf("Failed to generate QR code: %v", err)
		return nil, err
	}

	return qr, nil
}
