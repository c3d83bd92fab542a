package ratelimit

import (
	"strings"
)

// unlimited matches operational endpoints that are never rate limited.
var unlimited = &EndpointConfig{Path: "unlimited"}

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Exact matches win over prefix matches (configured paths ending in "/").
// Returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		return unlimited
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Path == path && cfg.Method == method {
			return cfg
		}
	}

	var best *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method || !strings.HasSuffix(cfg.Path, "/") || !strings.HasPrefix(path, cfg.Path) {
			continue
		}
		if best == nil || len(cfg.Path) > len(best.Path) {
			best = cfg
		}
	}
	return best
}
