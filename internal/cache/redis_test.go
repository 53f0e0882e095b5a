package cache

import "testing"

func TestLatestKey(t *testing.T) {
	if k := latestKey("btc_usd"); k != "latest:btc_usd" {
		t.Fatalf("latestKey=%q", k)
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	if _, err := NewRedisCache("127.0.0.1:1", "", 0, 0); err == nil {
		t.Fatalf("expected connect error for unreachable redis")
	}
}
