package services

import "testing"

func TestRecomputeAvailable(t *testing.T) {
	cases := []struct {
		name         string
		oldTotal     int
		oldAvailable int
		newTotal     int
		want         int
	}{
		{"increase keeps held seats", 10, 4, 15, 9},
		{"decrease keeps held seats", 10, 4, 8, 2},
		{"decrease below held floors at zero", 10, 2, 5, 0},
		{"unchanged total unchanged availability", 10, 7, 10, 7},
		{"empty schedule tracks new total", 10, 10, 3, 3},
		{"inconsistent counts treated as empty", 5, 9, 6, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RecomputeAvailable(tc.oldTotal, tc.oldAvailable, tc.newTotal)
			if got != tc.want {
				t.Fatalf("RecomputeAvailable(%d, %d, %d) = %d, want %d",
					tc.oldTotal, tc.oldAvailable, tc.newTotal, got, tc.want)
			}
		})
	}
}
