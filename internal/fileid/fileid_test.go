package fileid

import (
	"strings"
	"testing"
)

func TestFileDocID(t *testing.T) {
	a := FileDocID("/docs/notes.txt")
	b := FileDocID("/docs/notes.txt")
	if a != b {
		t.Error("same path must yield same ID")
	}
	if !strings.HasPrefix(a, "file:") {
		t.Errorf("missing prefix: %s", a)
	}
	if FileDocID("/docs/other.txt") == a {
		t.Error("distinct paths collided")
	}
	// Cleaning makes trailing-slash and dot variants equivalent.
	if FileDocID("/docs/./notes.txt") != a {
		t.Error("uncleaned path variant yielded different ID")
	}
}
