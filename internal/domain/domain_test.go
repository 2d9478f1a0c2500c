package domain

import (
	"errors"
	"testing"
)

func TestLanguages_Resolve(t *testing.T) {
	langs := NewLanguages("nl", "en")

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "nl", false},
		{"nl", "nl", false},
		{"en", "en", false},
		{"de", "", true},
		{"NL", "", true},
	}

	for _, tt := range tests {
		t.Run("lang="+tt.in, func(t *testing.T) {
			got, err := langs.Resolve(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedLanguage) {
					t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation in chain, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLanguages_Default(t *testing.T) {
	codes := NewLanguages().Codes()
	if len(codes) != 2 || codes[0] != "nl" || codes[1] != "en" {
		t.Errorf("unexpected default codes %v", codes)
	}
}

func TestParseDocumentsStatus(t *testing.T) {
	for _, s := range []string{"busy", "ready"} {
		if got, err := ParseDocumentsStatus(s); err != nil || string(got) != s {
			t.Errorf("ParseDocumentsStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "BUSY", "idle"} {
		if _, err := ParseDocumentsStatus(s); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseDocumentsStatus(%q): expected ErrInvalidStatus, got %v", s, err)
		}
	}
}
