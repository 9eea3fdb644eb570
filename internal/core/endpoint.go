package core

import "net/url"

// ValidateEndpoint rejects anything that is not a ws:// or wss:// URL
// before any socket or registry entry is allocated.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidEndpoint
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return ErrInvalidEndpoint
	}
	return nil
}
