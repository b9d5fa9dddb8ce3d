package safeurl

import (
	"errors"
	"net"
	"testing"
)

func staticLookup(addrs map[string][]string) func(string) ([]net.IP, error) {
	return func(host string) ([]net.IP, error) {
		strs, ok := addrs[host]
		if !ok {
			return nil, errors.New("no such host")
		}
		ips := make([]net.IP, len(strs))
		for i, s := range strs {
			ips[i] = net.ParseIP(s)
		}
		return ips, nil
	}
}

func TestValidate_RejectsNonHTTPSchemes(t *testing.T) {
	v := New()
	for _, raw := range []string{
		"file:///etc/passwd",
		"ftp://example.com/x",
		"gopher://example.com",
		"javascript:alert(1)",
	} {
		if err := v.Validate(raw); !errors.Is(err, ErrUnsafeTarget) {
			t.Errorf("Validate(%q) = %v, want ErrUnsafeTarget", raw, err)
		}
	}
}

func TestValidate_RejectsLoopbackResolution(t *testing.T) {
	v := New(WithLookup(staticLookup(map[string][]string{
		"evil.example": {"127.0.0.1"},
	})))
	if err := v.Validate("http://evil.example/product"); !errors.Is(err, ErrUnsafeTarget) {
		t.Fatalf("loopback-resolving host accepted: %v", err)
	}
}

func TestValidate_RejectsPrivateRanges(t *testing.T) {
	tests := []struct {
		name string
		addr string
	}{
		{"rfc1918 10/8", "10.1.2.3"},
		{"rfc1918 172.16/12", "172.16.0.9"},
		{"rfc1918 192.168/16", "192.168.1.1"},
		{"link local", "169.254.169.254"},
		{"multicast", "224.0.0.1"},
		{"ipv6 loopback", "::1"},
		{"ipv6 ula", "fc00::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(WithLookup(staticLookup(map[string][]string{
				"internal.example": {tt.addr},
			})))
			if err := v.Validate("https://internal.example/"); !errors.Is(err, ErrUnsafeTarget) {
				t.Errorf("address %s accepted: %v", tt.addr, err)
			}
		})
	}
}

func TestValidate_RejectsLiteralPrivateIP(t *testing.T) {
	v := New()
	if err := v.Validate("http://192.168.0.1/admin"); !errors.Is(err, ErrUnsafeTarget) {
		t.Fatalf("literal private IP accepted: %v", err)
	}
}

func TestValidate_FailsClosedOnResolutionError(t *testing.T) {
	v := New(WithLookup(staticLookup(nil)))
	if err := v.Validate("https://unresolvable.example/"); !errors.Is(err, ErrUnsafeTarget) {
		t.Fatalf("unresolvable host accepted: %v", err)
	}
}

func TestValidate_TrustedDomainBypassesResolution(t *testing.T) {
	// Lookup always errors; trusted hosts must still pass.
	v := New(WithLookup(staticLookup(nil)))
	for _, raw := range []string{
		"https://www.aliexpress.com/item/100500.html",
		"https://amazon.com/dp/B000",
		"https://via.placeholder.com/600x600.png",
	} {
		if err := v.Validate(raw); err != nil {
			t.Errorf("trusted url %q rejected: %v", raw, err)
		}
	}
}

func TestValidate_PublicResolutionAccepted(t *testing.T) {
	v := New(WithLookup(staticLookup(map[string][]string{
		"shop.example": {"93.184.216.34"},
	})))
	if err := v.Validate("https://shop.example/p/1"); err != nil {
		t.Fatalf("public host rejected: %v", err)
	}
}
