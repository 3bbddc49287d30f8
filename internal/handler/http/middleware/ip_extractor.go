package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strings"
)

// UnknownIdentity is the identity used when no client IP can be determined.
// Submissions from such clients share one throttle and dedup scope.
const UnknownIdentity = "unknown"

// IPExtractor is an interface for extracting client IP addresses from HTTP requests.
// It provides an abstraction layer for different IP extraction strategies,
// allowing the application to choose between secure RemoteAddr extraction
// (default) or header-based extraction with proxy trust validation (opt-in).
type IPExtractor interface {
	// ExtractIP extracts the client IP address from an HTTP request.
	// Returns the IP address as a string and an error if extraction fails.
	ExtractIP(r *http.Request) (string, error)
}

// Identity returns the client identity for the request: the extracted IP, or
// UnknownIdentity when extraction fails. Gatekeeping never rejects a request
// for a missing IP.
func Identity(e IPExtractor, r *http.Request) string {
	ip, err := e.ExtractIP(r)
	if err != nil || ip == "" {
		return UnknownIdentity
	}
	return ip
}

// RemoteAddrExtractor extracts the client IP from the RemoteAddr field of the HTTP request.
// This is the default and most secure approach as it uses the actual TCP connection IP,
// which cannot be spoofed by the client. It should be used when the application is
// directly accessible (no reverse proxy) or when header trust is explicitly disabled.
type RemoteAddrExtractor struct{}

// ExtractIP extracts the IP address from r.RemoteAddr.
// The RemoteAddr format is "IP:port", so this method strips the port number
// to return only the IP address. Handles both IPv4 and IPv6 addresses correctly.
//
// Examples:
//   - "192.168.1.1:54321" → "192.168.1.1"
//   - "[2001:db8::1]:8080" → "2001:db8::1"
//   - "127.0.0.1" → "127.0.0.1" (no port)
func (e *RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return extractIPFromAddr(r.RemoteAddr)
}

// TrustedProxyConfig holds configuration for validating trusted reverse proxies.
// When enabled, the extractor will check if the request comes from a trusted proxy
// before extracting the client IP from X-Forwarded-For or X-Real-IP headers.
type TrustedProxyConfig struct {
	// Enabled indicates whether proxy trust is enabled.
	// When false, all header-based extraction is disabled.
	Enabled bool

	// AllowedCIDRs is a list of trusted proxy IP ranges in CIDR notation.
	// Both single IPs (converted to /32 or /128) and CIDR ranges are supported.
	// Examples: ["10.0.0.1/32", "172.16.0.0/12", "2001:db8::/32"]
	AllowedCIDRs []netip.Prefix
}

// IsTrusted checks if the given RemoteAddr belongs to a trusted proxy.
// It strips the port number from RemoteAddr and compares the IP address
// against the list of trusted proxy CIDR ranges.
func (c *TrustedProxyConfig) IsTrusted(remoteAddr string) bool {
	ip, err := extractIPFromAddr(remoteAddr)
	if err != nil {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	for _, prefix := range c.AllowedCIDRs {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// LoadTrustedProxyConfig loads trusted proxy configuration from environment variables.
//
// Environment Variables:
//   - TRUST_PROXY: Set to "true" to enable proxy trust checking (default: false)
//   - TRUSTED_PROXIES: Comma-separated list of trusted proxy IPs or CIDR ranges
//
// Examples:
//   - Single IP: "192.168.1.1" (auto-converted to /32 prefix)
//   - CIDR range: "10.0.0.0/8,172.16.0.0/12"
//   - IPv6: "2001:db8::/32"
//
// Fail-closed: enabling TRUST_PROXY with an empty or invalid TRUSTED_PROXIES
// prevents application startup. Identity is the sole gatekeeping key, so a
// misconfigured proxy trust list must not silently allow header spoofing.
func LoadTrustedProxyConfig() (*TrustedProxyConfig, error) {
	enabled := os.Getenv("TRUST_PROXY") == "true"

	config := &TrustedProxyConfig{
		Enabled:      enabled,
		AllowedCIDRs: []netip.Prefix{},
	}

	if !enabled {
		return config, nil
	}

	proxiesStr := strings.TrimSpace(os.Getenv("TRUSTED_PROXIES"))
	if proxiesStr == "" {
		return nil, fmt.Errorf("TRUST_PROXY is enabled but TRUSTED_PROXIES is empty")
	}

	proxyList := strings.Split(proxiesStr, ",")
	for _, proxyStr := range proxyList {
		proxyStr = strings.TrimSpace(proxyStr)
		if proxyStr == "" {
			continue
		}

		// Try CIDR first, then a bare IP.
		prefix, err := netip.ParsePrefix(proxyStr)
		if err != nil {
			ip, ipErr := netip.ParseAddr(proxyStr)
			if ipErr != nil {
				return nil, fmt.Errorf("invalid IP or CIDR format '%s': must be valid IP address or CIDR notation (e.g., '192.168.1.1' or '10.0.0.0/8')", proxyStr)
			}

			if ip.Is4() {
				prefix = netip.PrefixFrom(ip, 32)
			} else {
				prefix = netip.PrefixFrom(ip, 128)
			}
		}

		config.AllowedCIDRs = append(config.AllowedCIDRs, prefix)
	}

	if len(config.AllowedCIDRs) == 0 {
		return nil, fmt.Errorf("TRUST_PROXY is enabled but no valid proxies found in TRUSTED_PROXIES")
	}

	return config, nil
}

// TrustedProxyExtractor extracts the client IP from X-Forwarded-For or X-Real-IP headers
// when the request comes from a trusted proxy. If the proxy is not trusted, it falls back
// to RemoteAddr extraction to prevent IP spoofing attacks.
//
// Header extraction priority:
// 1. X-Forwarded-For (first IP in comma-separated list)
// 2. X-Real-IP (fallback)
// 3. RemoteAddr (if proxy is not trusted or headers are missing)
type TrustedProxyExtractor struct {
	config TrustedProxyConfig
}

// NewTrustedProxyExtractor creates a new TrustedProxyExtractor with the given configuration.
func NewTrustedProxyExtractor(config TrustedProxyConfig) *TrustedProxyExtractor {
	return &TrustedProxyExtractor{
		config: config,
	}
}

// ExtractIP extracts the client IP address.
//
// If proxy trust is disabled, RemoteAddr is always used. If enabled and the
// peer is a trusted proxy, X-Forwarded-For (first IP) wins, then X-Real-IP,
// then RemoteAddr. An untrusted peer sending forwarding headers is logged and
// its headers ignored: a spoofed header must not let a client rotate its
// apparent identity past the throttle and dedup gates.
func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	if !e.config.Enabled {
		return extractIPFromAddr(r.RemoteAddr)
	}

	if !e.config.IsTrusted(r.RemoteAddr) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			slog.Warn("untrusted proxy attempting to set X-Forwarded-For",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_forwarded_for", xff),
			)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			slog.Warn("untrusted proxy attempting to set X-Real-IP",
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("x_real_ip", xri),
			)
		}

		return extractIPFromAddr(r.RemoteAddr)
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip, nil
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String(), nil
		}
	}

	return extractIPFromAddr(r.RemoteAddr)
}

// extractIPFromAddr extracts the IP address from a "host:port" or "IP" string.
// Handles both IPv4 and IPv6 addresses correctly.
//
// Examples:
//   - "192.168.1.1:8080" → "192.168.1.1", nil
//   - "[2001:db8::1]:8080" → "2001:db8::1", nil
//   - "127.0.0.1" → "127.0.0.1", nil (no port)
//   - "[::1]" → "::1", nil (IPv6 without port)
func extractIPFromAddr(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		// The address might not carry a port. Try it as a bare IP.
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}

// parseFirstIP parses the first IP address from a comma-separated list.
// This is used for X-Forwarded-For headers, which may contain multiple IPs
// in the format: "client, proxy1, proxy2"
//
// Examples:
//   - "192.168.1.1, 10.0.0.1" → "192.168.1.1"
//   - "2001:db8::1, 10.0.0.1" → "2001:db8::1"
//   - "invalid, 10.0.0.1" → ""
//   - "192.168.1.1" → "192.168.1.1" (no comma)
func parseFirstIP(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			ip := net.ParseIP(s[:i])
			if ip != nil {
				return ip.String()
			}
			return ""
		}
	}

	if ip := net.ParseIP(s); ip != nil {
		return ip.String()
	}
	return ""
}
