package model

import "testing"

func TestSenderIDRoundTrip(t *testing.T) {
	cases := []struct {
		sender Sender
		id     string
	}{
		{SystemSender(), "system"},
		{AgentSender(7), "agent-7"},
		{UserSender("conn-abc"), "conn-abc"},
	}
	for _, tc := range cases {
		if got := tc.sender.ID(); got != tc.id {
			t.Errorf("ID() = %q, want %q", got, tc.id)
		}
		if got := ParseSender(tc.id); got != tc.sender {
			t.Errorf("ParseSender(%q) = %+v, want %+v", tc.id, got, tc.sender)
		}
	}
}

func TestParseSenderFallbacks(t *testing.T) {
	if got := ParseSender(""); got.Kind != SenderSystem {
		t.Fatalf("empty id should parse as system, got %+v", got)
	}
	// A malformed agent id is treated as an opaque connection id.
	got := ParseSender("agent-xyz")
	if got.Kind != SenderUser || got.ConnID != "agent-xyz" {
		t.Fatalf("malformed agent id should fall back to user, got %+v", got)
	}
}

func TestUnknownUserSenderID(t *testing.T) {
	if got := UserSender("").ID(); got != "unknown" {
		t.Fatalf("empty conn id renders as %q, want unknown", got)
	}
}
