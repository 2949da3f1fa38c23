package money

import "testing"

func TestToCentsRoundsHalfUp(t *testing.T) {
	cases := map[float64]Cents{
		10.995: 1100,
		10.994: 1099,
		0.005:  1,
		-0.005: -1,
		12.0:   1200,
	}
	for in, want := range cases {
		if got := ToCents(in); got != want {
			t.Fatalf("ToCents(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFromCentsRoundTrip(t *testing.T) {
	if got := FromCents(1234); got != 12.34 {
		t.Fatalf("FromCents(1234) = %v", got)
	}
}

func TestStringSign(t *testing.T) {
	if Cents(-150).String() != "-1.50" {
		t.Fatalf("unexpected negative rendering: %s", Cents(-150).String())
	}
	if Cents(150).String() != "1.50" {
		t.Fatalf("unexpected positive rendering: %s", Cents(150).String())
	}
}

func TestIsSettled(t *testing.T) {
	if !Cents(1).IsSettled() || !Cents(-1).IsSettled() || !Cents(0).IsSettled() {
		t.Fatalf("expected values within a cent to be settled")
	}
	if Cents(2).IsSettled() {
		t.Fatalf("expected 2 cents to not be settled")
	}
}

func TestWithinTolerance(t *testing.T) {
	if !Cents(101).WithinTolerance(100) {
		t.Fatalf("expected 101 within tolerance of 100")
	}
	if Cents(102).WithinTolerance(100) {
		t.Fatalf("expected 102 outside tolerance of 100")
	}
}
