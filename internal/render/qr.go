package render

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the default edge length of join QR codes in pixels
const QRSize = 256

// JoinURL builds the public join link for a join code
func JoinURL(baseURL, joinCode string) string {
	return strings.TrimRight(baseURL, "/") + "/join?code=" + url.QueryEscape(joinCode)
}

// QRCodePNG encodes content as a PNG QR code
func QRCodePNG(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = QRSize
	}
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return png, nil
}
