package validation

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationError is a client-side field error with a message fit for display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// labelPattern matches one DNS label: alphanumerics and inner hyphens.
var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// tldPattern matches an alphabetic or punycode top-level domain.
var tldPattern = regexp.MustCompile(`^([a-z]{2,63}|xn--[a-z0-9-]{1,59})$`)

// NormalizeDomain reduces user input such as "HTTPS://www.Example.com/path?q"
// to a bare lowercase host ("example.com").
func NormalizeDomain(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}

	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		// Fall back to cutting at the first path/query separator.
		s = strings.TrimPrefix(strings.TrimPrefix(s, "http://"), "https://")
		if i := strings.IndexAny(s, "/?#"); i >= 0 {
			s = s[:i]
		}
	} else {
		s = u.Host
	}

	if h, _, err := net.SplitHostPort(s); err == nil {
		s = h
	}
	s = strings.TrimSuffix(s, ".")
	s = strings.TrimPrefix(s, "www.")
	return s
}

// ValidateDomain checks that host is a public-looking DNS name. It expects
// the output of NormalizeDomain.
func ValidateDomain(host string) error {
	if host == "" {
		return invalid("domain", "Please enter a domain name")
	}
	if len(host) > 253 {
		return invalid("domain", "Domain name is too long")
	}
	if net.ParseIP(host) != nil || strings.HasPrefix(host, "[") {
		return invalid("domain", "Please enter a domain name, not an IP address")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return invalid("domain", "Local domains cannot be analyzed")
	}

	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return invalid("domain", "Domain must include a top-level domain, e.g. example.com")
	}

	for _, label := range labels {
		if label == "" {
			return invalid("domain", "Domain contains an empty label")
		}
		if len(label) > 63 {
			return invalid("domain", "Domain label %q is longer than 63 characters", label)
		}
		if !labelPattern.MatchString(label) {
			return invalid("domain", "Domain label %q contains invalid characters", label)
		}
	}

	if !tldPattern.MatchString(labels[len(labels)-1]) {
		return invalid("domain", "Top-level domain %q is not valid", labels[len(labels)-1])
	}

	return nil
}

// NormalizeKeyword trims and collapses internal whitespace.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(keyword), " ")
}

// ValidateKeyword checks a normalized keyword.
func ValidateKeyword(keyword string) error {
	if keyword == "" {
		return invalid("keyword", "Keyword is required")
	}
	if utf8.RuneCountInString(keyword) > 100 {
		return invalid("keyword", "Keyword must be at most 100 characters")
	}
	for _, r := range keyword {
		if unicode.IsControl(r) {
			return invalid("keyword", "Keyword contains control characters")
		}
	}
	return nil
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Used to prevent SSRF attacks against internal networks.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}

	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip.IsPrivate() {
		return true
	}

	if ip.IsUnspecified() {
		return true
	}

	// 169.254.169.254 is covered by link-local; Azure also uses 168.63.129.16.
	azureMetadata := net.ParseIP("168.63.129.16")
	return ip.Equal(azureMetadata)
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Returns true if the host is private/blocked, false if it's safe to access.
func IsPrivateHost(host string) (bool, error) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// If we can't resolve, be conservative and block
		return true, err
	}

	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateURLForFetch validates a URL is safe for the server to request.
// Blocks private IPs, localhost, and cloud metadata endpoints.
func ValidateURLForFetch(urlStr string) (bool, string) {
	valid, msg := ValidateURL(urlStr)
	if !valid {
		return false, msg
	}

	u, _ := url.Parse(urlStr)

	isPrivate, err := IsPrivateHost(u.Host)
	if err != nil {
		return false, "Cannot resolve hostname"
	}
	if isPrivate {
		return false, "URL points to a private or reserved IP address"
	}

	return true, ""
}
