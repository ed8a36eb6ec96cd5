package coding

import "sort"

// Merge reduces per-sub-query candidate lists to a single ranked result.
//
// Each code keeps its highest-scoring occurrence; on equal scores the
// occurrence from the earliest sub-query wins. The survivors are ordered by
// score descending, then code ascending, and truncated to limit. The
// ordering is fully deterministic so identical requests against an
// unchanged index return identical results.
//
// queries maps Candidate.QueryIndex to the sub-query text for provenance;
// an out-of-range index leaves MatchedQuery empty.
func Merge(lists [][]Candidate, queries []string, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}

	best := make(map[string]Candidate)
	for _, list := range lists {
		for _, c := range list {
			if c.Code == "" {
				continue
			}
			prev, seen := best[c.Code]
			if !seen || c.Score > prev.Score || (c.Score == prev.Score && c.QueryIndex < prev.QueryIndex) {
				best[c.Code] = c
			}
		}
	}

	merged := make([]Candidate, 0, len(best))
	for _, c := range best {
		merged = append(merged, c)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Code < merged[j].Code
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}

	out := make([]Suggestion, len(merged))
	for i, c := range merged {
		desc := c.ShortDesc
		if desc == "" {
			desc = c.LongDesc
		}
		var matched string
		if c.QueryIndex >= 0 && c.QueryIndex < len(queries) {
			matched = queries[c.QueryIndex]
		}
		out[i] = Suggestion{
			Code:         c.Code,
			Description:  desc,
			Score:        c.Score,
			MatchedQuery: matched,
		}
	}
	return out
}
