package attendance

import (
	"errors"
	"testing"

	"github.com/alecgard/clubhive/internal/apperr"
)

func TestPointDelta(t *testing.T) {
	all := []Status{StatusRegistered, StatusAttended, StatusAbsent}
	want := map[[2]Status]int{
		{StatusRegistered, StatusAttended}: 10,
		{StatusAbsent, StatusAttended}:     10,
		{StatusAttended, StatusAbsent}:     -10,
		{StatusAttended, StatusRegistered}: -10,
	}
	for _, from := range all {
		for _, to := range all {
			got := PointDelta(from, to, 10)
			if got != want[[2]Status{from, to}] {
				t.Errorf("PointDelta(%s, %s) = %d, want %d", from, to, got, want[[2]Status{from, to}])
			}
		}
	}
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		balance, delta, want int
	}{
		{0, 10, 10},
		{10, -10, 0},
		{5, -10, 0},
		{0, -10, 0},
		{30, 0, 30},
	}
	for _, tt := range tests {
		if got := ApplyDelta(tt.balance, tt.delta); got != tt.want {
			t.Errorf("ApplyDelta(%d, %d) = %d, want %d", tt.balance, tt.delta, got, tt.want)
		}
	}
}

func TestAwardedFor(t *testing.T) {
	if AwardedFor(StatusAttended, 15) != 15 {
		t.Error("attended rows carry the event points")
	}
	if AwardedFor(StatusAbsent, 15) != 0 || AwardedFor(StatusRegistered, 15) != 0 {
		t.Error("non-attended rows carry no points")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"registered", "attended", "absent"} {
		if _, err := ParseStatus(s); err != nil {
			t.Errorf("ParseStatus(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "present", "Attended"} {
		if _, err := ParseStatus(s); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("ParseStatus(%q): expected invalid input, got %v", s, err)
		}
	}
}
