package convert

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidUnitSelector is returned for selectors that do not match the
// accepted grammar or contain a reversed range.
var ErrInvalidUnitSelector = errors.New("invalid unit selector")

// unitSelectorPattern accepts "all", a single unit "u3", a range "u3-u8",
// and comma-separated combinations "u1-u3,u5,u8-u10".
var unitSelectorPattern = regexp.MustCompile(`^(all|u\d+(-u\d+)?(,u\d+(-u\d+)?)*)$`)

// UnitSelector is a parsed unit selection: either everything, or a sorted
// deduplicated list of unit numbers.
type UnitSelector struct {
	All   bool
	Units []int
}

// ParseUnitSelector parses a selector string like "all", "u1", "u3-u8" or
// "u1-u3,u5,u8-u10". Ranges are inclusive; duplicates collapse and the
// result is sorted ascending.
func ParseUnitSelector(s string) (UnitSelector, error) {
	if !unitSelectorPattern.MatchString(s) {
		return UnitSelector{}, fmt.Errorf("%w: %q", ErrInvalidUnitSelector, s)
	}

	if s == "all" {
		return UnitSelector{All: true}, nil
	}

	seen := map[int]bool{}
	for _, segment := range strings.Split(s, ",") {
		start, end, found := strings.Cut(segment, "-")
		first := mustUnitNumber(start)
		if !found {
			seen[first] = true
			continue
		}
		last := mustUnitNumber(end)
		if first > last {
			return UnitSelector{}, fmt.Errorf("%w: reversed range %q", ErrInvalidUnitSelector, segment)
		}
		for i := first; i <= last; i++ {
			seen[i] = true
		}
	}

	units := make([]int, 0, len(seen))
	for n := range seen {
		units = append(units, n)
	}
	sort.Ints(units)

	return UnitSelector{Units: units}, nil
}

// Matches reports whether a unit name like "u5" is covered by the selector.
func (s UnitSelector) Matches(unit string) bool {
	if s.All {
		return true
	}
	n, err := strconv.Atoi(strings.TrimPrefix(unit, "u"))
	if err != nil {
		return false
	}
	for _, u := range s.Units {
		if u == n {
			return true
		}
	}
	return false
}

// UnitNames renders the selected unit numbers back to "u<n>" names.
func (s UnitSelector) UnitNames() []string {
	names := make([]string, len(s.Units))
	for i, n := range s.Units {
		names[i] = fmt.Sprintf("u%d", n)
	}
	return names
}

// mustUnitNumber converts a "u<n>" token already vetted by the selector
// pattern.
func mustUnitNumber(token string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(token, "u"))
	if err != nil {
		panic(fmt.Sprintf("unit token %q escaped the selector pattern", token))
	}
	return n
}
