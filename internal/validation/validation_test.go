package validation

import (
	"errors"
	"net"
	"strings"
	"testing"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "example.com"},
		{"  Example.COM  ", "example.com"},
		{"https://www.example.com", "example.com"},
		{"HTTPS://www.Example.com/path?q=1#frag", "example.com"},
		{"http://shop.example.co.uk:8080/", "shop.example.co.uk"},
		{"example.com:443", "example.com"},
		{"www.example.com.", "example.com"},
		{"example.com/pricing", "example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeDomain(tt.input); got != tt.want {
				t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		wantErr bool
	}{
		{"simple", "example.com", false},
		{"subdomain", "blog.example.com", false},
		{"hyphenated", "my-site.io", false},
		{"country second level", "example.co.uk", false},
		{"punycode tld", "example.xn--p1ai", false},
		{"digits in label", "123abc.net", false},
		{"empty", "", true},
		{"no tld", "example", true},
		{"numeric tld", "example.123", true},
		{"ipv4", "192.168.1.1", true},
		{"ipv6", "::1", true},
		{"localhost", "localhost", true},
		{"dot local", "printer.local", true},
		{"leading hyphen", "-example.com", true},
		{"trailing hyphen", "example-.com", true},
		{"empty label", "example..com", true},
		{"underscore", "my_site.com", true},
		{"space", "my site.com", true},
		{"label too long", strings.Repeat("a", 64) + ".com", true},
		{"name too long", strings.Repeat("abcdefghi.", 26) + "com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.host)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDomain(%q) error = %v, wantErr %v", tt.host, err, tt.wantErr)
			}
			if err != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ValidateDomain(%q) error type = %T, want *ValidationError", tt.host, err)
				}
				if verr.Message == "" {
					t.Errorf("ValidateDomain(%q) has empty message", tt.host)
				}
			}
		})
	}
}

func TestNormalizeThenValidate(t *testing.T) {
	for _, input := range []string{"https://www.Example.com/", "EXAMPLE.com:8443", "shop.example.com/cart"} {
		if err := ValidateDomain(NormalizeDomain(input)); err != nil {
			t.Errorf("ValidateDomain(NormalizeDomain(%q)) error = %v", input, err)
		}
	}
	for _, input := range []string{"not a domain", "http://127.0.0.1:8080", "localhost:3000"} {
		if err := ValidateDomain(NormalizeDomain(input)); err == nil {
			t.Errorf("ValidateDomain(NormalizeDomain(%q)) should fail", input)
		}
	}
}

func TestValidateKeyword(t *testing.T) {
	tests := []struct {
		name    string
		keyword string
		wantErr bool
	}{
		{"single word", "crm", false},
		{"phrase", "best crm for startups", false},
		{"unicode", "logiciel de facturation", false},
		{"japanese", "日本語", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 101), true},
		{"max length", strings.Repeat("a", 100), false},
		{"control character", "crm\x00tools", true},
		{"newline", "crm\ntools", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKeyword(tt.keyword); (err != nil) != tt.wantErr {
				t.Errorf("ValidateKeyword(%q) error = %v, wantErr %v", tt.keyword, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	if got := NormalizeKeyword("  best   crm\tsoftware "); got != "best crm software" {
		t.Errorf("NormalizeKeyword() = %q", got)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid http", "http://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with port", "https://example.com:8080", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"file scheme", "file:///etc/passwd", false, "URL must use http:// or https:// scheme"},
		{"no scheme", "example.com", false, "URL must use http:// or https:// scheme"},
		{"uppercase scheme", "HTTPS://example.com", true, ""},
		{"scheme only", "https://", false, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if !valid && msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"localhost IPv4", "127.0.0.1", true},
		{"localhost IPv6", "::1", true},
		{"10.x.x.x range", "10.0.0.1", true},
		{"172.16.x.x range", "172.16.0.1", true},
		{"192.168.x.x range", "192.168.0.1", true},
		{"link-local IPv4", "169.254.1.1", true},
		{"link-local IPv6", "fe80::1", true},
		{"AWS/GCP metadata", "169.254.169.254", true},
		{"Azure metadata", "168.63.129.16", true},
		{"unspecified IPv4", "0.0.0.0", true},
		{"Google DNS", "8.8.8.8", false},
		{"public IPv6", "2001:4860:4860::8888", false},
		{"nil IP", "", false},
		{"172.32.x.x not private", "172.32.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ip net.IP
			if tt.ip != "" {
				ip = net.ParseIP(tt.ip)
			}
			if got := IsPrivateIP(ip); got != tt.want {
				t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestValidateURLForFetch(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{"javascript scheme", "javascript:alert(1)", "URL must use http:// or https:// scheme"},
		{"empty url", "", "URL is required"},
		{"127.0.0.1", "http://127.0.0.1", "URL points to a private or reserved IP address"},
		{"loopback with port", "http://127.0.0.1:8080", "URL points to a private or reserved IP address"},
		{"10.x range", "http://10.0.0.1", "URL points to a private or reserved IP address"},
		{"AWS metadata", "http://169.254.169.254/latest/meta-data/", "URL points to a private or reserved IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURLForFetch(tt.url)
			if valid {
				t.Fatalf("ValidateURLForFetch(%q) valid = true", tt.url)
			}
			if msg != tt.wantMsg {
				t.Errorf("ValidateURLForFetch(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}
