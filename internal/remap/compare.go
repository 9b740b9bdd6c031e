package remap

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CompareMode selects how a version is compared with the threshold
type CompareMode string

const (
	// CompareLexical compares plain strings, so "2.10.0" sorts below "2.8.6"
	CompareLexical CompareMode = "lexical"
	// CompareSemver compares semantic versions
	CompareSemver CompareMode = "semver"
)

// ParseCompareMode validates a compare mode name
func ParseCompareMode(s string) (CompareMode, error) {
	switch CompareMode(s) {
	case CompareLexical, "":
		return CompareLexical, nil
	case CompareSemver:
		return CompareSemver, nil
	default:
		return CompareLexical, fmt.Errorf("unknown compare mode %q (supported: lexical, semver)", s)
	}
}

// below reports whether version is below threshold. In semver mode a
// version that does not parse falls back to the lexical comparison.
func (m CompareMode) below(version, threshold string) bool {
	if m == CompareSemver {
		v, verr := semver.NewVersion(version)
		t, terr := semver.NewVersion(threshold)
		if verr == nil && terr == nil {
			return v.LessThan(t)
		}
	}
	return version < threshold
}
