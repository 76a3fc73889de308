package token

import (
	"strings"
	"testing"
)

func TestIssueDeterministic(t *testing.T) {
	c := NewCodec("test-secret")
	a := c.Issue(42, "a@x.com")
	b := c.Issue(42, "a@x.com")
	if a != b {
		t.Errorf("same inputs produced different tags: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := NewCodec("test-secret")
	tag := c.Issue(42, "a@x.com")
	if !c.Verify(tag, tag) {
		t.Error("expected tag to verify against itself")
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	c := NewCodec("test-secret")
	tag := c.Issue(42, "a@x.com")

	if c.Verify(tag, c.Issue(43, "a@x.com")) {
		t.Error("tag for a different order id verified")
	}
	if c.Verify(tag, c.Issue(42, "b@x.com")) {
		t.Error("tag for a different email verified")
	}

	other := NewCodec("other-secret")
	if c.Verify(tag, other.Issue(42, "a@x.com")) {
		t.Error("tag issued with a different secret verified")
	}
}

func TestVerifyRejectsTamperedTag(t *testing.T) {
	c := NewCodec("test-secret")
	tag := c.Issue(42, "a@x.com")

	// Flip one character.
	flipped := "0"
	if strings.HasPrefix(tag, "0") {
		flipped = "1"
	}
	tampered := flipped + tag[1:]
	if c.Verify(tag, tampered) {
		t.Error("tampered tag verified")
	}
}

func TestVerifyRejectsAnomalies(t *testing.T) {
	c := NewCodec("test-secret")
	tag := c.Issue(42, "a@x.com")

	cases := []struct {
		name              string
		stored, presented string
	}{
		{"empty stored", "", tag},
		{"empty presented", tag, ""},
		{"both empty", "", ""},
		{"truncated presented", tag, tag[:10]},
	}
	for _, tc := range cases {
		if c.Verify(tc.stored, tc.presented) {
			t.Errorf("%s: expected verification failure", tc.name)
		}
	}
}
