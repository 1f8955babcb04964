package tokens

import (
	"strings"
	"testing"
	"time"

	"swingtrack/internal/testutil"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")

	token, err := codec.Issue("user@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	payload, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if payload != "user@example.com" {
		t.Errorf("expected payload user@example.com, got %q", payload)
	}
}

func TestVerifyExpired(t *testing.T) {
	codec := NewCodec("test-secret")

	token, err := codec.Issue("user@example.com", -1*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = codec.Verify(token)
	testutil.AssertAppError(t, err, "TOKEN_EXPIRED")
}

func TestVerifyBadSignature(t *testing.T) {
	codec := NewCodec("test-secret")
	other := NewCodec("other-secret")

	token, err := other.Issue("user@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = codec.Verify(token)
	testutil.AssertAppError(t, err, "BAD_SIGNATURE")
}

func TestVerifyTamperedBody(t *testing.T) {
	codec := NewCodec("test-secret")

	token, err := codec.Issue("user@example.com", 15*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	// Flip a byte in the claims segment; the recomputed signature no
	// longer matches.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	body := []byte(parts[1])
	if body[0] == 'A' {
		body[0] = 'B'
	} else {
		body[0] = 'A'
	}
	tampered := parts[0] + "." + string(body) + "." + parts[2]

	if _, err := codec.Verify(tampered); err == nil {
		t.Fatal("expected tampered token to be rejected")
	}
}

func TestVerifyMalformed(t *testing.T) {
	codec := NewCodec("test-secret")

	for _, garbage := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := codec.Verify(garbage)
		testutil.AssertAppError(t, err, "INVALID_TOKEN")
	}
}

func TestDifferentTTLsYieldDifferentTokens(t *testing.T) {
	codec := NewCodec("test-secret")

	t1, err := codec.Issue("same-payload", 15*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	t2, err := codec.Issue("same-payload", 60*time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if t1 == t2 {
		t.Error("expected tokens with different expiries to differ")
	}
}
