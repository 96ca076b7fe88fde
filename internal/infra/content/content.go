// Package content bridges the reputation engine to an external content
// verification service. The bridge turns per-fingerprint match results into
// a content-quality dimension; when no verifier is configured (or the
// verifier fails) every actor gets the neutral bundle so content never
// dominates the other dimensions by accident.
package content

import (
	"context"
	"strings"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// MatchType classifies how a fingerprint relates to known content.
type MatchType string

const (
	MatchExact       MatchType = "exact"       // verbatim copy of known content
	MatchNear        MatchType = "near"        // lightly edited duplicate
	MatchManipulated MatchType = "manipulated" // known content doctored to evade
	MatchNone        MatchType = "none"
)

// Verification is one fingerprint's verdict from the verifier.
type Verification struct {
	Match      MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"` // [0,1]
}

// Verifier is the external verification capability. Implementations:
// HTTPVerifier (production) and MockVerifier (tests, offline compute).
type Verifier interface {
	// Register submits fingerprints for future matching.
	Register(ctx context.Context, fingerprints []string) error
	// Verify returns the match verdict for one fingerprint. contentType
	// steers the matcher ("text", "image", "audio", "video").
	Verify(ctx context.Context, fingerprint, contentType string) (Verification, error)
}

// neutral is the bundle used when content quality cannot be assessed.
var neutral = domain.ContentScores{Combined: 0.5, VerifiedRatio: 0.5}

// Bridge converts fingerprint verdicts into the content-quality dimension.
type Bridge struct {
	verifier Verifier
}

// NewBridge wraps a verifier; nil is valid and yields neutral scores.
func NewBridge(v Verifier) *Bridge {
	return &Bridge{verifier: v}
}

// Score assesses an actor's sampled fingerprints.
//
// Per fingerprint:
//
//	exact or manipulated match → 1 - confidence  (copying known content is bad)
//	near match                 → 1 - confidence·0.5
//	no match                   → confidence       (0.8 when unreported)
//
// Combined is the mean quality; VerifiedRatio is the fraction of fingerprints
// the verifier matched at all. No verifier, no fingerprints, or any verifier
// error → neutral {0.5, 0.5}.
func (b *Bridge) Score(ctx context.Context, fingerprints []string) domain.ContentScores {
	if b == nil || b.verifier == nil || len(fingerprints) == 0 {
		return neutral
	}

	total := 0.0
	matched := 0
	for _, fp := range fingerprints {
		v, err := b.verifier.Verify(ctx, fp, ContentTypeOf(fp))
		if err != nil {
			return neutral
		}
		total += quality(v)
		if v.Match != MatchNone && v.Match != "" {
			matched++
		}
	}

	n := float64(len(fingerprints))
	return domain.ContentScores{
		Combined:      total / n,
		VerifiedRatio: float64(matched) / n,
	}
}

// ContentTypeOf reads the conventional "type:hash" fingerprint prefix.
// Unprefixed fingerprints are treated as text.
func ContentTypeOf(fingerprint string) string {
	switch {
	case strings.HasPrefix(fingerprint, "image:"):
		return "image"
	case strings.HasPrefix(fingerprint, "audio:"):
		return "audio"
	case strings.HasPrefix(fingerprint, "video:"):
		return "video"
	}
	return "text"
}

func quality(v Verification) float64 {
	switch v.Match {
	case MatchExact, MatchManipulated:
		return clamp01(1 - v.Confidence)
	case MatchNear:
		return clamp01(1 - v.Confidence*0.5)
	default:
		if v.Confidence == 0 {
			return 0.8 // unmatched and unreported: mildly positive prior
		}
		return clamp01(v.Confidence)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
