package ledger

import (
	"testing"
	"time"
)

func TestBillableAmountRounding(t *testing.T) {
	// 0.25h at $85.00/h = $21.25
	if got := BillableAmount(0.25, 8500); got != 2125 {
		t.Errorf("expected 2125, got %d", got)
	}
	// 1.75h at $33.33/h = $58.3275 -> rounds to $58.33
	if got := BillableAmount(1.75, 3333); got != 5833 {
		t.Errorf("expected 5833, got %d", got)
	}
}

func TestPlatformFee(t *testing.T) {
	if got := PlatformFee(100000, 20); got != 20000 {
		t.Errorf("expected 20000, got %d", got)
	}
	if got := PlatformFee(9999, 15); got != 1500 {
		t.Errorf("expected 1500, got %d", got)
	}
}

func TestClampFeeRate(t *testing.T) {
	if got := ClampFeeRate(10); got != 15 {
		t.Errorf("expected 15, got %v", got)
	}
	if got := ClampFeeRate(55); got != 40 {
		t.Errorf("expected 40, got %v", got)
	}
	if got := ClampFeeRate(22.5); got != 22.5 {
		t.Errorf("expected 22.5, got %v", got)
	}
}

func TestSubFloorNeverNegative(t *testing.T) {
	if got := SubFloor(500, 800); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := SubFloor(800, 500); got != 300 {
		t.Errorf("expected 300, got %d", got)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(3, 4); got != 75 {
		t.Errorf("expected 75, got %d", got)
	}
	if got := Percentage(0, 0); got != 0 {
		t.Errorf("expected 0 on empty total, got %d", got)
	}
}

func TestAverageSkipsNils(t *testing.T) {
	four := 4.0
	five := 5.0
	got := Average([]*float64{&four, nil, &five, nil})
	if got != 4.5 {
		t.Errorf("expected 4.5, got %v", got)
	}
	if got := Average([]*float64{nil, nil}); got != 0 {
		t.Errorf("expected 0 for all-nil, got %v", got)
	}
}

func TestNowMonotonic(t *testing.T) {
	prev := Now()
	for i := 0; i < 1000; i++ {
		next := Now()
		if !next.After(prev) {
			t.Fatalf("clock went backwards: %v then %v", prev, next)
		}
		prev = next
	}
	if time.Since(prev) < -time.Second {
		t.Fatal("clock far in the future")
	}
}
