package middleware

import (
	"net"
	"net/http"
	"strings"
)

// BypassEvaluator reports whether a request is exempt from rate limiting and
// the reason, for logging.
type BypassEvaluator func(r *http.Request) (bool, string)

type RequestBypassConfig struct {
	EnableInternalProbeBypass bool
	TrustedSourceCIDRs        []string
}

type requestBypassMatcher struct {
	enableProbeBypass bool
	trustedCIDRs      []*net.IPNet
}

// NewRequestBypassEvaluator builds an evaluator that exempts liveness probes
// and requests from trusted source networks (the provider's webhook egress
// ranges, or the totem's LAN). Returns nil when nothing can ever match.
func NewRequestBypassEvaluator(cfg RequestBypassConfig) BypassEvaluator {
	m := &requestBypassMatcher{
		enableProbeBypass: cfg.EnableInternalProbeBypass,
		trustedCIDRs:      make([]*net.IPNet, 0, len(cfg.TrustedSourceCIDRs)),
	}

	for _, cidr := range cfg.TrustedSourceCIDRs {
		v := strings.TrimSpace(cidr)
		if v == "" {
			continue
		}
		_, network, err := net.ParseCIDR(v)
		if err != nil {
			continue
		}
		m.trustedCIDRs = append(m.trustedCIDRs, network)
	}

	if !m.enableProbeBypass && len(m.trustedCIDRs) == 0 {
		return nil
	}
	return m.Match
}

func (m *requestBypassMatcher) Match(r *http.Request) (bool, string) {
	if r == nil {
		return false, ""
	}
	if m.enableProbeBypass {
		if strings.TrimSpace(strings.ToLower(r.URL.Path)) == "/healthz" {
			return true, "internal_probe_path"
		}
	}

	if ip := parseRequestIP(r); ip != nil {
		for _, network := range m.trustedCIDRs {
			if network.Contains(ip) {
				return true, "trusted_source_cidr"
			}
		}
	}
	return false, ""
}

func parseRequestIP(r *http.Request) net.IP {
	if r == nil {
		return nil
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil || host == "" {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		return nil
	}
	return net.ParseIP(host)
}
