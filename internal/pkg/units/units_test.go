package units

import "testing"

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"km", Km(12345), "12.3 km"},
		{"km zero", Km(0), "0.0 km"},
		{"mins", Mins(2520), "42 min"},
		{"mins rounds", Mins(89), "1 min"},
		{"meters", Meters(310.4), "310 m"},
		{"ratio", Ratio(0.375), "37.5%"},
		{"percent", Percent(0.7), "70%"},
		{"score", Score(0.81234), "0.812"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
