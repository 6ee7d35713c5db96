package client

import (
	"errors"
	"testing"
)

func TestNormalizeEntry(t *testing.T) {
	got, err := NormalizeEntry(PlayEntry{RawURL: "  json:https://api.example/?url= ", PageURL: " https://v/1 ", Flag: " qq "})
	if err != nil {
		t.Fatalf("NormalizeEntry() error = %v", err)
	}
	if got.RawURL != "json:https://api.example/?url=" || got.PageURL != "https://v/1" || got.Flag != "qq" {
		t.Fatalf("NormalizeEntry() = %+v", got)
	}
}

func TestNormalizeEntryRejects(t *testing.T) {
	for _, entry := range []PlayEntry{
		{},
		{RawURL: "   "},
		{RawURL: "json:not a url"},
		{RawURL: "json:ftp://x/"},
	} {
		if _, err := NormalizeEntry(entry); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("NormalizeEntry(%+v) error = %v, want ErrInvalidInput", entry, err)
		}
	}
}

func TestNormalizeEntryPageOnly(t *testing.T) {
	if _, err := NormalizeEntry(PlayEntry{PageURL: "https://v/2"}); err != nil {
		t.Fatalf("NormalizeEntry() error = %v", err)
	}
}
