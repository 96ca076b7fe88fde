package content

import (
	"context"
	"errors"
	"testing"
)

type failingVerifier struct{}

func (failingVerifier) Register(context.Context, []string) error { return errors.New("down") }
func (failingVerifier) Verify(context.Context, string, string) (Verification, error) {
	return Verification{}, errors.New("down")
}

func TestScoreNeutralWithoutVerifier(t *testing.T) {
	ctx := context.Background()

	if got := NewBridge(nil).Score(ctx, []string{"fp"}); got.Combined != 0.5 || got.VerifiedRatio != 0.5 {
		t.Fatalf("nil verifier: %+v, want neutral 0.5/0.5", got)
	}
	mock := NewMockVerifier()
	if got := NewBridge(mock).Score(ctx, nil); got.Combined != 0.5 {
		t.Fatalf("no fingerprints: %+v, want neutral", got)
	}
	if got := NewBridge(failingVerifier{}).Score(ctx, []string{"fp"}); got.Combined != 0.5 {
		t.Fatalf("verifier error: %+v, want neutral", got)
	}
}

func TestScorePenalizesExactMatches(t *testing.T) {
	ctx := context.Background()
	mock := NewMockVerifier()
	mock.Seed("stolen", Verification{Match: MatchExact, Confidence: 0.9})
	mock.Seed("original", Verification{Match: MatchNone, Confidence: 0.9})

	b := NewBridge(mock)
	copied := b.Score(ctx, []string{"stolen"})
	if copied.Combined >= 0.2 {
		t.Fatalf("exact match quality = %v, want 1-0.9", copied.Combined)
	}
	if copied.VerifiedRatio != 1.0 {
		t.Fatalf("verified ratio = %v, want 1.0", copied.VerifiedRatio)
	}

	clean := b.Score(ctx, []string{"original"})
	if clean.Combined != 0.9 {
		t.Fatalf("unmatched quality = %v, want confidence 0.9", clean.Combined)
	}
	if clean.VerifiedRatio != 0 {
		t.Fatalf("unmatched verified ratio = %v, want 0", clean.VerifiedRatio)
	}
}

func TestScoreNearMatchHalvesPenalty(t *testing.T) {
	ctx := context.Background()
	mock := NewMockVerifier()
	mock.Seed("edited", Verification{Match: MatchNear, Confidence: 0.8})

	got := NewBridge(mock).Score(ctx, []string{"edited"})
	if got.Combined != 0.6 {
		t.Fatalf("near match quality = %v, want 1 - 0.8·0.5 = 0.6", got.Combined)
	}
}

func TestScoreUnreportedConfidenceDefault(t *testing.T) {
	ctx := context.Background()
	mock := NewMockVerifier()
	mock.Seed("fp", Verification{Match: MatchNone, Confidence: 0})

	got := NewBridge(mock).Score(ctx, []string{"fp"})
	if got.Combined != 0.8 {
		t.Fatalf("unreported-confidence quality = %v, want default 0.8", got.Combined)
	}
}

func TestMockVerifierDeterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockVerifier()
	a, _ := m.Verify(ctx, "some-fingerprint", "text")
	b, _ := m.Verify(ctx, "some-fingerprint", "text")
	if a != b {
		t.Fatalf("mock verdicts differ: %+v vs %+v", a, b)
	}
}

func TestContentTypeOf(t *testing.T) {
	cases := map[string]string{
		"video:abc123": "video",
		"image:abc123": "image",
		"audio:abc123": "audio",
		"text:abc123":  "text",
		"abc123":       "text",
	}
	for fp, want := range cases {
		if got := ContentTypeOf(fp); got != want {
			t.Fatalf("ContentTypeOf(%q) = %q, want %q", fp, got, want)
		}
	}
}

func TestMockVerifierVideoConfidenceSkew(t *testing.T) {
	ctx := context.Background()
	m := NewMockVerifier()

	text, _ := m.Verify(ctx, "some-fingerprint", "text")
	video, _ := m.Verify(ctx, "some-fingerprint", "video")
	if video.Match != text.Match {
		t.Fatalf("verdict changed with content type: %v vs %v", video.Match, text.Match)
	}
	if video.Confidence >= text.Confidence {
		t.Fatalf("video confidence %v should trail text %v", video.Confidence, text.Confidence)
	}

	// Seeded verdicts stay pinned regardless of type.
	m.Seed("pinned", Verification{Match: MatchExact, Confidence: 0.9})
	pinned, _ := m.Verify(ctx, "pinned", "video")
	if pinned.Confidence != 0.9 {
		t.Fatalf("seeded confidence = %v, want 0.9", pinned.Confidence)
	}
}
