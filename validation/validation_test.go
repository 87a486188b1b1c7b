package validation

import "testing"

func TestValidateChannelID(t *testing.T) {
	tests := []struct {
		name      string
		channelID string
		wantErr   bool
	}{
		{"Valid channel ID", "UCBR8-60-B28hp2BmDPdntcQ", false},
		{"Synthetic ID", "UC_dummy", false},
		{"Empty", "", true},
		{"Whitespace", "UC BR8", true},
		{"Path traversal", "../etc/passwd", true},
		{"Query injection", "UC123&key=x", true},
		{"Too long", string(make([]byte, 80)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChannelID(tt.channelID)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChannelID(%q) error = %v, wantErr %v", tt.channelID, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain name", "MyResults", "MyResults"},
		{"Spaces kept", "My Results", "My Results"},
		{"Path separators stripped", "../../etc", "etc"},
		{"Quotes stripped", `Results"; rm`, "Results rm"},
		{"Empty falls back", "", "Results"},
		{"Only junk falls back", `/\:*?"<>|`, "Results"},
		{"Leading dots trimmed", "..hidden", "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFolderName(tt.input, "Results"); got != tt.want {
				t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
