package tasks

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/playtime/internal/models"
)

// NearMissThreshold is the Jaro-Winkler similarity above which a non-matching field counts as a near miss.
const NearMissThreshold = 0.9

// IdentityKind classifies the outcome of [ResolveIdentity].
type IdentityKind int

const (
	IdentitySkip IdentityKind = iota
	IdentityUnresolvable
	IdentityID
)

func (k IdentityKind) String() string {
	switch k {
	case IdentitySkip:
		return "skip"
	case IdentityUnresolvable:
		return "unresolvable"
	case IdentityID:
		return "id"
	default:
		return ""
	}
}

// Identity is the canonical id chosen for a recording.
type Identity struct {
	Kind      IdentityKind
	MBID      string // Set only for IdentityID
	RuleIndex int    // Index of the remap rule that supplied or withheld the id, or -1
}

// ResolveIdentity decides which MBID, if any, is used to look up rec's duration.
//
// Skip rules win over everything. A recording's own MBID wins over remap rules.
// Otherwise the first matching remap rule decides, even when its replacement is null.
func ResolveIdentity(rec models.Recording, skip []models.SkipRule, remap []models.RemapRule) Identity {
	for _, rule := range skip {
		if rule.Matches(rec) {
			return Identity{Kind: IdentitySkip, RuleIndex: -1}
		}
	}

	if rec.HasMBID() {
		return Identity{Kind: IdentityID, MBID: rec.RecordingMBID, RuleIndex: -1}
	}

	for i, rule := range remap {
		if !rule.MatchWith.Matches(rec) {
			continue
		}
		if rule.RecordingMBID == nil || *rule.RecordingMBID == "" {
			return Identity{Kind: IdentityUnresolvable, RuleIndex: i}
		}
		return Identity{Kind: IdentityID, MBID: *rule.RecordingMBID, RuleIndex: i}
	}

	return Identity{Kind: IdentityUnresolvable, RuleIndex: -1}
}

// NearMiss is a remap rule that does not match a recording but probably was meant to.
type NearMiss struct {
	Index int
	Rule  models.RemapRule
	Score float64 // Lowest similarity across the rule's present fields
}

// NearMisses lists remap rules whose present fields are all similar to, but not all
// equal to, the recording's. Rules are compared case-sensitively, so a stray capital or
// a trailing space is the usual culprit.
func NearMisses(rec models.Recording, remap []models.RemapRule) []NearMiss {
	jw := metrics.NewJaroWinkler()

	var misses []NearMiss
	for i, rule := range remap {
		m := rule.MatchWith
		if m.Matches(rec) {
			continue
		}

		pairs := [][2]*string{
			{m.ArtistName, &rec.ArtistName},
			{m.ReleaseName, &rec.ReleaseName},
			{m.TrackName, &rec.TrackName},
		}

		score, compared := 1.0, 0
		for _, p := range pairs {
			if p[0] == nil {
				continue
			}
			compared++
			if s := strutil.Similarity(*p[0], *p[1], jw); s < score {
				score = s
			}
		}

		if compared > 0 && score >= NearMissThreshold {
			misses = append(misses, NearMiss{Index: i, Rule: rule, Score: score})
		}
	}

	return misses
}
