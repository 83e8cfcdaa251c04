package middleware

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders are consulted in order after X-Forwarded-For.
var proxyHeaders = []string{"X-Real-IP", "Proxy-Client-IP", "WL-Proxy-Client-IP"}

// ResolveClientIP returns the originating client address. It takes the first
// usable entry of X-Forwarded-For, then the single-value proxy headers, and
// finally the host part of the connection's remote address. "unknown" is
// treated as absent.
func ResolveClientIP(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := usableIP(part); ip != "" {
			return ip
		}
	}
	for _, h := range proxyHeaders {
		if ip := usableIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func usableIP(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "unknown") {
		return ""
	}
	return v
}
