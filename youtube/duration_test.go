package youtube

import "testing"

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Minutes and seconds", "PT23M44S", "00:23:44"},
		{"All components", "PT1H2M3S", "01:02:03"},
		{"Hours only", "PT2H", "02:00:00"},
		{"Seconds only", "PT59S", "00:00:59"},
		{"Empty duration", "PT", "00:00:00"},
		{"Long video", "PT12H34M56S", "12:34:56"},
		{"Malformed passes through", "garbage", "garbage"},
		{"Empty string passes through", "", ""},
		{"Trailing junk passes through", "PT1M extra", "PT1M extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseISODuration(tt.in); got != tt.want {
				t.Errorf("ParseISODuration(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
