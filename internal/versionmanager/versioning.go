package versionmanager

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mkbabb/words-sub000/internal/coreerrors"
)

// semver is a parsed "major.minor.patch" version string.
type semver struct {
	major, minor, patch int
}

func parseSemver(s string) (semver, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("%w: %q is not major.minor.patch", coreerrors.ErrInvalidVersion, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return semver{}, fmt.Errorf("%w: %q is not major.minor.patch", coreerrors.ErrInvalidVersion, s)
		}
		nums[i] = n
	}
	return semver{major: nums[0], minor: nums[1], patch: nums[2]}, nil
}

func (v semver) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v semver) greaterThan(other semver) bool {
	if v.major != other.major {
		return v.major > other.major
	}
	if v.minor != other.minor {
		return v.minor > other.minor
	}
	return v.patch > other.patch
}

// nextVersion implements spec.md §4.5.3: initial save is 1.0.0, default
// increment is patch, force_new_major resets minor/patch, an explicit
// override must be strictly greater than the current latest.
func nextVersion(current string, forceNewMajor bool, explicitOverride string) (string, error) {
	if current == "" {
		if explicitOverride != "" {
			if _, err := parseSemver(explicitOverride); err != nil {
				return "", err
			}
			return explicitOverride, nil
		}
		return "1.0.0", nil
	}

	cur, err := parseSemver(current)
	if err != nil {
		return "", err
	}

	if explicitOverride != "" {
		override, err := parseSemver(explicitOverride)
		if err != nil {
			return "", err
		}
		if !override.greaterThan(cur) {
			return "", fmt.Errorf("%w: override %q is not strictly greater than current %q", coreerrors.ErrInvalidVersion, explicitOverride, current)
		}
		return explicitOverride, nil
	}

	if forceNewMajor {
		return semver{major: cur.major + 1, minor: 0, patch: 0}.String(), nil
	}
	return semver{major: cur.major, minor: cur.minor, patch: cur.patch + 1}.String(), nil
}
