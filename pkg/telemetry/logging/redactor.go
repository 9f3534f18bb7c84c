package logging

import (
	"log/slog"
	"net"
	"net/netip"
	"regexp"
	"strings"
)

var (
	ipv4Pattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	ipv6Pattern = regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){2,7}[0-9a-fA-F]{0,4}\b|::1\b`)
)

// addressKeys are attribute keys whose whole value is a client address.
var addressKeys = map[string]bool{
	"ip":             true,
	"client_ip":      true,
	"remote_addr":    true,
	"source_address": true,
}

// Redactor masks client addresses in log attributes.
type Redactor struct{}

// NewRedactor creates a Redactor.
func NewRedactor() *Redactor {
	return &Redactor{}
}

// RedactAttr masks addresses in a, descending into groups.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = r.RedactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	case slog.KindString:
		s := v.String()
		if addressKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, RedactAddress(s))
		}
		return slog.String(a.Key, r.RedactString(s))
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}

// RedactString masks every IPv4 or IPv6 address embedded in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	value = ipv4Pattern.ReplaceAllStringFunc(value, RedactIPv4)
	return ipv6Pattern.ReplaceAllStringFunc(value, func(s string) string {
		if _, err := netip.ParseAddr(s); err != nil {
			return s
		}
		return RedactIPv6(s)
	})
}

// RedactAddress masks a client address, with or without a port.
func RedactAddress(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, ""
	}

	ip, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return addr
	}

	var masked string
	if ip.Is4() || ip.Is4In6() {
		masked = RedactIPv4(ip.Unmap().String())
	} else {
		masked = RedactIPv6(ip.String())
	}
	if port != "" {
		return net.JoinHostPort(masked, port)
	}
	return masked
}

// RedactIPv4 redacts an IPv4 address, keeping only the first octet.
func RedactIPv4(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}

	return parts[0] + ".*.*.*"
}

// RedactIPv6 redacts an IPv6 address, keeping only the first group.
func RedactIPv6(ip string) string {
	first, _, ok := strings.Cut(ip, ":")
	if !ok {
		return ip
	}
	if first == "" {
		return "::*"
	}
	return first + ":*"
}
