// Package fieldpath reads and writes values inside nested map/slice
// documents addressed by dot paths with optional bracket indices,
// e.g. "hardware.vendor" or "context.businessProcesses[0].name".
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a path. Indexed segments address Key[Index].
type Segment struct {
	Key     string
	Index   int
	Indexed bool
}

func (s Segment) String() string {
	if s.Indexed {
		return s.Key + "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Key
}

// Path is a parsed field path. Parse it once and reuse it for every row.
type Path []Segment

// Parse splits a dot/bracket path into segments.
func Parse(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty path")
	}

	parts := strings.Split(raw, ".")
	p := make(Path, 0, len(parts))
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("path %q segment %d: %w", raw, i, err)
		}
		p = append(p, seg)
	}
	return p, nil
}

// MustParse is Parse for paths known at compile time. It panics on a malformed path.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}

	open := strings.IndexByte(part, '[')
	if open < 0 {
		if strings.ContainsRune(part, ']') {
			return Segment{}, fmt.Errorf("unbalanced bracket in %q", part)
		}
		return Segment{Key: part}, nil
	}

	if open == 0 || !strings.HasSuffix(part, "]") {
		return Segment{}, fmt.Errorf("malformed index in %q", part)
	}

	digits := part[open+1 : len(part)-1]
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 || strings.ContainsAny(digits, "+-") {
		return Segment{}, fmt.Errorf("invalid index %q", digits)
	}
	return Segment{Key: part[:open], Index: idx, Indexed: true}, nil
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Last returns the final segment key without any index.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].Key
}

// HasIndex reports whether any segment carries a bracket index.
func (p Path) HasIndex() bool {
	for _, s := range p {
		if s.Indexed {
			return true
		}
	}
	return false
}

// Read walks obj along p. The second result is false as soon as any step is missing.
func Read(obj map[string]any, p Path) (any, bool) {
	if obj == nil || len(p) == 0 {
		return nil, false
	}

	var cur any = obj
	for _, seg := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[seg.Key]
		if !ok {
			return nil, false
		}
		if seg.Indexed {
			arr, ok := next.([]any)
			if !ok || seg.Index >= len(arr) {
				return nil, false
			}
			next = arr[seg.Index]
		}
		cur = next
	}
	return cur, cur != nil
}

// Write stores v at p inside obj, creating intermediate maps and slices.
// Containers of the wrong shape are replaced. Writing the same path twice keeps the last value.
func Write(obj map[string]any, p Path, v any) {
	if obj == nil || len(p) == 0 {
		return
	}

	cur := obj
	for i, seg := range p {
		last := i == len(p)-1

		if !seg.Indexed {
			if last {
				cur[seg.Key] = v
				return
			}
			child, ok := cur[seg.Key].(map[string]any)
			if !ok {
				child = make(map[string]any)
				cur[seg.Key] = child
			}
			cur = child
			continue
		}

		arr, _ := cur[seg.Key].([]any)
		if len(arr) <= seg.Index {
			grown := make([]any, seg.Index+1)
			copy(grown, arr)
			arr = grown
		}
		cur[seg.Key] = arr

		if last {
			arr[seg.Index] = v
			return
		}
		child, ok := arr[seg.Index].(map[string]any)
		if !ok {
			child = make(map[string]any)
			arr[seg.Index] = child
		}
		cur = child
	}
}
