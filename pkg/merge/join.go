package merge

import (
	"fmt"
	"strings"

	"github.com/arcdb/datamerge/pkg/types"
)

// JoinType governs which unmatched rows are retained in the merged output.
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
)

// String returns the wire name of the join type.
func (t JoinType) String() string {
	switch t {
	case JoinLeft:
		return "left"
	case JoinRight:
		return "right"
	case JoinFull:
		return "full"
	default:
		return "inner"
	}
}

// ParseJoinType parses a join type name. The empty string defaults to inner.
func ParseJoinType(s string) (JoinType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inner":
		return JoinInner, nil
	case "left":
		return JoinLeft, nil
	case "right":
		return JoinRight, nil
	case "full":
		return JoinFull, nil
	default:
		return JoinInner, fmt.Errorf("unknown merge type %q (expected inner, left, right or full)", s)
	}
}

// Stats are the aggregate counts describing the outcome of a join.
// LeftRows and RightRows are raw input sizes, independent of matching.
type Stats struct {
	LeftRows       int `json:"leftRows"`
	RightRows      int `json:"rightRows"`
	MatchedPairs   int `json:"matchedPairs"`
	UnmatchedLeft  int `json:"unmatchedLeft"`
	UnmatchedRight int `json:"unmatchedRight"`
}

// rowPair is one merged pairing. Either side may be nil for outer joins.
type rowPair struct {
	left  *types.Row
	right *types.Row
}

// executeJoin walks the left rows against the right-side index, applying the
// join-type policy. Duplicate keys on either side fan out into the full cross
// product of pairings. The unmatched counters are always computed; whether an
// unmatched row is also emitted depends on the join type.
func executeJoin(leftRows, rightRows []*types.Row, rightIndex map[string][]indexEntry, leftKey string, joinType JoinType) ([]rowPair, Stats) {
	stats := Stats{
		LeftRows:  len(leftRows),
		RightRows: len(rightRows),
	}

	pairs := make([]rowPair, 0, len(leftRows))
	consumed := make(map[int]struct{})

	for _, leftRow := range leftRows {
		v, _ := leftRow.Get(leftKey)
		key, keyable := NormalizeKey(v)

		var bucket []indexEntry
		if keyable {
			bucket = rightIndex[key]
		}

		if len(bucket) == 0 {
			stats.UnmatchedLeft++
			if joinType == JoinLeft || joinType == JoinFull {
				pairs = append(pairs, rowPair{left: leftRow})
			}
			continue
		}

		for _, entry := range bucket {
			pairs = append(pairs, rowPair{left: leftRow, right: entry.row})
			stats.MatchedPairs++
			consumed[entry.originalIndex] = struct{}{}
		}
	}

	for i, rightRow := range rightRows {
		if _, ok := consumed[i]; ok {
			continue
		}
		stats.UnmatchedRight++
		if joinType == JoinRight || joinType == JoinFull {
			pairs = append(pairs, rowPair{right: rightRow})
		}
	}

	return pairs, stats
}
