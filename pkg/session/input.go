package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digits = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseNodeIndex pulls the first number out of s, so "3", "N3" and " n3 "
// all name node 3. The index must be a whole number below count.
func ParseNodeIndex(field, s string, count int) (int, error) {
	m := digits.FindStringSubmatch(s)
	if m == nil {
		return 0, &InputError{Field: field, Value: s, Reason: "expected a node index"}
	}
	if m[1] != "" {
		return 0, &InputError{Field: field, Value: s, Reason: "expected a whole node index"}
	}
	idx, err := strconv.Atoi(m[0])
	if err != nil {
		return 0, &InputError{Field: field, Value: s, Reason: "expected a node index"}
	}
	if idx < 0 || idx >= count {
		return 0, &InputError{Field: field, Value: s, Reason: "no such node"}
	}
	return idx, nil
}

// ParseCost reads a finite number.
func ParseCost(s string) (float64, error) {
	v := strings.TrimSpace(s)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &InputError{Field: "cost", Value: s, Reason: "expected a number"}
	}
	return f, nil
}

// EdgeInput is a parsed "start,end,cost" entry.
type EdgeInput struct {
	Start int
	End   int
	Cost  float64
}

// ParseEdgeInput reads "start,end,cost" (commas or spaces).
func ParseEdgeInput(s string, count int) (EdgeInput, error) {
	parts := splitFields(s)
	if len(parts) != 3 {
		return EdgeInput{}, &InputError{Field: "edge", Value: s, Reason: "expected start,end,cost"}
	}
	start, err := ParseNodeIndex("start node", parts[0], count)
	if err != nil {
		return EdgeInput{}, err
	}
	end, err := ParseNodeIndex("end node", parts[1], count)
	if err != nil {
		return EdgeInput{}, err
	}
	cost, err := ParseCost(parts[2])
	if err != nil {
		return EdgeInput{}, err
	}
	return EdgeInput{Start: start, End: end, Cost: cost}, nil
}

// ParseRunInput reads "start,end".
func ParseRunInput(s string, count int) (start, end int, err error) {
	parts := splitFields(s)
	if len(parts) != 2 {
		return 0, 0, &InputError{Field: "run", Value: s, Reason: "expected start,end"}
	}
	if start, err = ParseNodeIndex("start node", parts[0], count); err != nil {
		return 0, 0, err
	}
	if end, err = ParseNodeIndex("end node", parts[1], count); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func splitFields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
}
