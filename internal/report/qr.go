package report

import (
	"encoding/hex"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// CaptureRef identifies an analyzed capture: the sha256 digest of the stream
// plus the headline numbers a scanner needs to match a printed report back to
// the capture it was generated from.
type CaptureRef struct {
	Digest   string
	Messages int
	Pass     bool
}

// URI renders the reference as the compact payload embedded in the QR code,
// e.g. mavgate:capture/3fa9...?messages=120&pass=true.
func (r CaptureRef) URI() (string, error) {
	digest := strings.ToLower(strings.TrimSpace(r.Digest))
	if digest == "" {
		return "", fmt.Errorf("capture digest is empty")
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("capture digest is not hex: %w", err)
	}
	return fmt.Sprintf("mavgate:capture/%s?messages=%d&pass=%t", digest, r.Messages, r.Pass), nil
}

// EncodeQR renders the reference as a QR code PNG.
func (r CaptureRef) EncodeQR(size int) ([]byte, error) {
	uri, err := r.URI()
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(uri, qrcode.Medium, size)
}
