//go:build !ocr

// Package ocr recognizes text in extracted image elements via the
// Tesseract engine.
//
// This is the stub built when the "ocr" tag is not set; New fails with
// ErrNotEnabled. Rebuild with:
//
//	go build -tags ocr
//
// which requires Tesseract installed on the system.
package ocr

import "errors"

// ErrNotEnabled is returned when OCR support was not compiled in.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Client is the stub session; every operation fails.
type Client struct{}

// New fails with ErrNotEnabled.
func New() (*Client, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op, safe on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage fails with ErrNotEnabled.
func (c *Client) RecognizeImage(data []byte) (string, error) {
	return "", ErrNotEnabled
}

// SetLanguage fails with ErrNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrNotEnabled
}
