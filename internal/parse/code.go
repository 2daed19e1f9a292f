package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	seqRe       = regexp.MustCompile(`-(\d+)\s*$`)
	floorRe     = regexp.MustCompile(`(\d+)\s*$`)
	zoneFloorRe = regexp.MustCompile(`(\d+)`)
)

// TableCode holds the structured parts of a code such as "T1-02".
type TableCode struct {
	Prefix string
	Floor  int
	Seq    int
}

// ParseTableCode extracts the floor number and sequence from a table code.
// The sequence is optional and stays 0 when absent.
func ParseTableCode(raw string) (TableCode, error) {
	s := strings.TrimSpace(raw)

	seq := 0
	if loc := seqRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil {
			seq = n
			s = strings.TrimSpace(s[:loc[0]])
		}
	}

	floor := 0
	prefix := s
	if loc := floorRe.FindStringSubmatchIndex(s); loc != nil {
		if n, err := strconv.Atoi(s[loc[2]:loc[3]]); err == nil {
			floor = n
			prefix = strings.TrimSpace(s[:loc[0]])
		}
	}

	if floor == 0 {
		return TableCode{}, fmt.Errorf("unable to parse floor from table code: %q", raw)
	}
	return TableCode{Prefix: strings.ToUpper(prefix), Floor: floor, Seq: seq}, nil
}

// FloorFromZone returns the first number in a zone label like "Tầng 3 - VIP",
// or 0 when there is none.
func FloorFromZone(zone string) int {
	m := zoneFloorRe.FindStringSubmatch(zone)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// FloorNumber resolves the floor of a table from its zone label, falling back
// to its code. It returns 0 when neither carries a number.
func FloorNumber(zone, code string) int {
	if n := FloorFromZone(zone); n > 0 {
		return n
	}
	if parsed, err := ParseTableCode(code); err == nil {
		return parsed.Floor
	}
	return 0
}

// DefaultFloorID maps a table to one of the seeded floor ids.
func DefaultFloorID(zone, code string) string {
	n := FloorNumber(zone, code)
	if n <= 0 {
		n = 1
	}
	return fmt.Sprintf("floor-%d", n)
}

// DefaultCategoryID picks the VIP category for VIP zones.
func DefaultCategoryID(zone string) string {
	if strings.Contains(strings.ToUpper(zone), "VIP") {
		return "cat-vip"
	}
	return "cat-normal"
}
