package radon

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a dot-separated tool version such as 5.1.0.
type Version []int

// MinVersion is the oldest radon release whose JSON output radonlens understands.
var MinVersion = Version{5, 1}

// ParseVersion parses trimmed output of `radon -v`.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty version string")
	}
	parts := strings.Split(s, ".")
	v := make(Version, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q", s)
		}
		v = append(v, n)
	}
	return v, nil
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// semver renders the first three components in canonical vMAJOR.MINOR.PATCH form.
func (v Version) semver() string {
	var c [3]int
	copy(c[:], v)
	return fmt.Sprintf("v%d.%d.%d", c[0], c[1], c[2])
}

// Compare returns -1, 0 or +1 comparing v and o component by component.
// Missing components count as zero, so 5.1 equals 5.1.0.
func (v Version) Compare(o Version) int {
	if c := semver.Compare(v.semver(), o.semver()); c != 0 {
		return c
	}
	for i := 3; i < len(v) || i < len(o); i++ {
		a, b := at(v, i), at(o, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func at(v Version, i int) int {
	if i < len(v) {
		return v[i]
	}
	return 0
}

// UnsupportedVersionMessage is shown when radon is older than MinVersion.
const UnsupportedVersionMessage = `You need at least radon version 5.1 installed. Try pip install "radon>=5.1".`

// RequireVersion fails with UnsupportedToolVersion when v is older than MinVersion.
func RequireVersion(v Version) error {
	if v.Compare(MinVersion) < 0 {
		return NewError(UnsupportedToolVersion, UnsupportedVersionMessage, nil)
	}
	return nil
}
