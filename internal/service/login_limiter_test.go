package service

import (
	"testing"
	"time"
)

func TestLoginLimiterLock(t *testing.T) {
	ll := NewLoginLimiter(3, time.Minute, 2*time.Minute)

	for i := 0; i < 2; i++ {
		locked, _ := ll.RecordFailure("user@example.com")
		if locked {
			t.Fatalf("should not lock after %d failures", i+1)
		}
	}

	locked, remaining := ll.RecordFailure("user@example.com")
	if !locked {
		t.Fatal("should lock after max failures")
	}
	if remaining != time.Minute {
		t.Errorf("expected lock duration 1m, got %v", remaining)
	}

	isLocked, _ := ll.IsLocked("user@example.com")
	if !isLocked {
		t.Error("account should be locked")
	}
}

func TestLoginLimiterRecordSuccess(t *testing.T) {
	ll := NewLoginLimiter(3, time.Minute, 2*time.Minute)

	ll.RecordFailure("user@example.com")
	ll.RecordFailure("user@example.com")
	if got := ll.GetRemainingAttempts("user@example.com"); got != 1 {
		t.Errorf("expected 1 remaining attempt, got %d", got)
	}

	ll.RecordSuccess("user@example.com")
	if got := ll.GetRemainingAttempts("user@example.com"); got != 3 {
		t.Errorf("expected reset to 3 attempts, got %d", got)
	}
	isLocked, _ := ll.IsLocked("user@example.com")
	if isLocked {
		t.Error("account should not be locked after success")
	}
}

func TestLoginLimiterIndependentKeys(t *testing.T) {
	ll := NewLoginLimiter(2, time.Minute, 2*time.Minute)

	ll.RecordFailure("a@example.com")
	ll.RecordFailure("a@example.com")

	isLocked, _ := ll.IsLocked("a@example.com")
	if !isLocked {
		t.Error("a@example.com should be locked")
	}
	isLocked, _ = ll.IsLocked("b@example.com")
	if isLocked {
		t.Error("b@example.com should not be locked")
	}
	if got := ll.GetRemainingAttempts("b@example.com"); got != 2 {
		t.Errorf("expected 2 remaining attempts for untouched key, got %d", got)
	}
}

func TestIPLoginLimiterLock(t *testing.T) {
	ll := NewIPLoginLimiter(2, time.Minute, 2*time.Minute)

	ll.RecordFailure("10.0.0.1")
	locked, _ := ll.RecordFailure("10.0.0.1")
	if !locked {
		t.Fatal("IP should be locked after max failures")
	}

	isLocked, remaining := ll.IsLocked("10.0.0.1")
	if !isLocked {
		t.Error("IP should be locked")
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("unexpected remaining lock time: %v", remaining)
	}
}

func TestIPLoginLimiterSuccessDecrement(t *testing.T) {
	ll := NewIPLoginLimiter(5, time.Minute, 2*time.Minute)

	ll.RecordFailure("10.0.0.1")
	ll.RecordFailure("10.0.0.1")

	// 成功只减少计数，不完全清除
	ll.RecordSuccess("10.0.0.1")
	locked, _ := ll.RecordFailure("10.0.0.1")
	if locked {
		t.Error("should not be locked at 2 failures out of 5")
	}

	ll.RecordSuccess("10.0.0.1")
	ll.RecordSuccess("10.0.0.1")
	isLocked, _ := ll.IsLocked("10.0.0.1")
	if isLocked {
		t.Error("IP should not be locked after successes")
	}
}
