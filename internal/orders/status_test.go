package orders

import "testing"

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []Status{"", "refunded", "PAID", "unknown"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusCancelled, true},
		{StatusPaid, StatusProcessing, true},
		{StatusPaid, StatusShipped, true},
		{StatusPaid, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusDelivered, true},
		{StatusShipped, StatusDelivered, true},

		// paid is only reachable through payment reconciliation.
		{StatusPending, StatusPaid, false},
		{StatusProcessing, StatusPaid, false},

		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusShipped, StatusProcessing, false},
		{StatusPending, StatusShipped, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
