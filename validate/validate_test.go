package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestPlayerName(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "Ana", "Ana", nil},
		{"trimmed", "  Ana  ", "Ana", nil},
		{"max length", strings.Repeat("a", 15), strings.Repeat("a", 15), nil},
		{"unicode within limit", "über-spieler 12", "über-spieler 12", nil},
		{"empty", "", "", ErrNameRequired},
		{"whitespace only", "   ", "", ErrNameRequired},
		{"too long", strings.Repeat("a", 16), "", ErrNameTooLong},
		{"control characters", "an\x00a", "", ErrNameInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PlayerName(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("PlayerName(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("PlayerName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
