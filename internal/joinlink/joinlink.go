// Package joinlink builds the shareable join URL for a quiz and renders it
// as a scannable QR image.
package joinlink

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is a mobile-friendly QR pixel size.
const DefaultSize = 320

// URL returns the join link for a quiz under the given public base URL.
func URL(baseURL, quizID string) string {
	return strings.TrimRight(baseURL, "/") + "/join/" + quizID
}

// QRPNG renders the join link as a PNG at the given pixel size.
func QRPNG(baseURL, quizID string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(URL(baseURL, quizID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
