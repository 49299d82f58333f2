// Package geo extracts best-effort geolocation hints from proxy headers.
package geo

import (
	"net/http"

	"chat-server/internal/domain/llm"
)

// Proxy headers carrying the caller's approximate location. All optional; an
// absent header simply leaves its hint empty.
const (
	HeaderCity      = "X-Geo-City"
	HeaderCountry   = "X-Geo-Country"
	HeaderLatitude  = "X-Geo-Latitude"
	HeaderLongitude = "X-Geo-Longitude"
)

// HintsFromRequest reads the geolocation headers into request hints.
func HintsFromRequest(r *http.Request) llm.RequestHints {
	return llm.RequestHints{
		City:      r.Header.Get(HeaderCity),
		Country:   r.Header.Get(HeaderCountry),
		Latitude:  r.Header.Get(HeaderLatitude),
		Longitude: r.Header.Get(HeaderLongitude),
	}
}
