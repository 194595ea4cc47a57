package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := Wrap(ErrConnection, "plex", "fetch sections", "server den", base)

	if !errors.Is(err, ErrConnection) {
		t.Error("wrapped error should match ErrConnection")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should match the underlying error")
	}
	for _, fragment := range []string{"plex", "fetch sections", "server den"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("expected %q in error message %q", fragment, err.Error())
		}
	}
}

func TestWrapNilMarkerDefaultsToConnection(t *testing.T) {
	err := Wrap(nil, "plex", "connect", "", nil)
	if !errors.Is(err, ErrConnection) {
		t.Error("nil marker should default to ErrConnection")
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := Wrap(ErrCache, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected placeholder detail, got %q", err.Error())
	}
}
