package openid4vci

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// CredentialOfferURI is the `openid-credential-offer://...` URI the issuer
// produces.
type CredentialOfferURI string

// QR renders a base64-encoded PNG QR code of the offer URI, for minion UIs
// that prefer to scan rather than deep-link.
func (c CredentialOfferURI) QR(recoveryLevel qrcode.RecoveryLevel, size int) (string, error) {
	png, err := qrcode.Encode(string(c), recoveryLevel, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
