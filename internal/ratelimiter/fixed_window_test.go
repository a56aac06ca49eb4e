package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retryAfter := rl.Allow("10.0.0.1")
	if ok {
		t.Fatal("fourth request should be rejected")
	}
	if retryAfter != time.Minute {
		t.Fatalf("expected retry-after of one minute, got %v", retryAfter)
	}

	// Other keys are unaffected.
	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Fatal("different key should be allowed")
	}
}
