// Package auth produces the keyed authentication codes required by both
// channel handshakes and the webhook URL-validation challenge.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingSecret is a configuration error: the operation that needed the
// signature fails, the process does not.
var ErrMissingSecret = errors.New("client secret is not configured")

// HMACHex returns the hex-encoded HMAC-SHA256 of message keyed by secret.
func HMACHex(secret, message string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Signature computes the handshake signature over
// "<clientID>,<sessionID>,<streamID>" keyed by the shared client secret.
func Signature(clientID, secret, sessionID, streamID string) (string, error) {
	return HMACHex(secret, clientID+","+sessionID+","+streamID)
}
