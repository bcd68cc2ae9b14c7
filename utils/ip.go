package utils

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP prefers the first X-Forwarded-For hop, which is the original
// client as recorded by the outermost proxy; later hops are proxies and the
// whole header is only as trustworthy as that proxy chain.
func RealClientIP(r *http.Request) string {
	if xfwd := r.Header.Get("X-Forwarded-For"); xfwd != "" {
		first := xfwd
		if i := strings.Index(xfwd, ","); i >= 0 {
			first = xfwd[:i]
		}
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
