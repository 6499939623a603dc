// Package device derives the client fingerprint both backends record with
// sessions: device type, operating system and browser. Derivation is best
// effort and never fails the call that needs it.
package device

import (
	"time"

	"github.com/mileusna/useragent"
	gocache "github.com/patrickmn/go-cache"
)

const unknown = "unknown"

// Info is the device_info object attached to device-aware calls.
type Info struct {
	DeviceType      string `json:"device_type"`
	OperatingSystem string `json:"operating_system"`
	BrowserName     string `json:"browser_name"`
	BrowserVersion  string `json:"browser_version"`
}

// Unknown is the fallback used when no user agent is available or nothing
// in it matches.
func Unknown() Info {
	return Info{
		DeviceType:      unknown,
		OperatingSystem: unknown,
		BrowserName:     unknown,
		BrowserVersion:  unknown,
	}
}

// Resolver parses user-agent strings into Info. Parsed results are cached
// per UA string since the same agent is seen on every call of a session.
type Resolver struct {
	cache *gocache.Cache
}

func NewResolver() *Resolver {
	return &Resolver{
		cache: gocache.New(time.Hour, 10*time.Minute),
	}
}

func (r *Resolver) FromUserAgent(userAgent string) Info {
	if userAgent == "" {
		return Unknown()
	}

	if cached, ok := r.cache.Get(userAgent); ok {
		return cached.(Info)
	}

	ua := useragent.Parse(userAgent)

	info := Info{
		DeviceType:      deviceType(ua),
		OperatingSystem: orUnknown(ua.OS),
		BrowserName:     orUnknown(ua.Name),
		BrowserVersion:  orUnknown(ua.Version),
	}

	r.cache.SetDefault(userAgent, info)

	return info
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Mobile || ua.Tablet:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return unknown
	}
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
