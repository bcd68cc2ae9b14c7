package utils

import (
	"net/http/httptest"
	"testing"
)

func TestRealClientIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"no header", "", "203.0.113.7:52100", "203.0.113.7"},
		{"single hop", "198.51.100.1", "10.0.0.1:80", "198.51.100.1"},
		{"proxy chain keeps first hop", "198.51.100.1, 10.0.0.2, 10.0.0.3", "10.0.0.1:80", "198.51.100.1"},
		{"padded entries", "  198.51.100.1 , 10.0.0.2", "10.0.0.1:80", "198.51.100.1"},
		{"blank header falls back", "   ", "203.0.113.7:52100", "203.0.113.7"},
		{"unparseable remote addr", "", "bogus", "bogus"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := RealClientIP(r); got != tc.want {
				t.Errorf("RealClientIP = %q, want %q", got, tc.want)
			}
		})
	}
}
