package command

import (
	"math"

	"github.com/kavinhq/redicore/internal/rerror"
)

// maxLCSInputLen mirrors t_string.c's lcsCommand guard: both inputs must
// stay under UINT32_MAX - 1. (Match ranges here are carried in int
// fields; the bound is kept for parity with the C command.)
const maxLCSInputLen int64 = math.MaxUint32 - 1

// LCSOptions mirrors LCS's flag surface: LEN (just the length), IDX
// (matched ranges instead of the string), MINMATCHLEN (drop short
// matches from IDX output), and WITHMATCHLEN (include each match's
// length alongside its ranges).
type LCSOptions struct {
	Len          bool
	Idx          bool
	MinMatchLen  int
	WithMatchLen bool
}

// LCSRange is one matched substring's position in both inputs.
type LCSRange struct {
	AStart, AEnd int
	BStart, BEnd int
	MatchLen     int
}

// LCSResult is LCS's full computed output; callers pick which fields
// the requested options actually need.
type LCSResult struct {
	Str    string
	Len    int
	Ranges []LCSRange
}

// LCS computes the longest common subsequence of a and b via the
// standard O(len(a)*len(b)) dynamic-programming table, then (if Idx is
// set) walks it backward to recover match ranges — the same two-pass
// shape t_string.c's lcsCommand uses. Either input at or beyond
// UINT32_MAX-1 bytes is rejected up front, matching lcsCommand's own
// "String too long for LCS" guard.
func LCS(a, b []byte, opts LCSOptions) (LCSResult, error) {
	if int64(len(a)) >= maxLCSInputLen || int64(len(b)) >= maxLCSInputLen {
		return LCSResult{}, rerror.ErrStringTooLongForLCS
	}
	n, m := len(a), len(b)
	dp := make([][]int32, n+1)
	for i := range dp {
		dp[i] = make([]int32, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	result := LCSResult{Len: int(dp[n][m])}
	if !opts.Idx && !opts.Len {
		result.Str = backtrackString(a, b, dp)
	}
	if opts.Idx {
		result.Ranges = backtrackRanges(a, b, dp, opts.MinMatchLen)
	}
	return result, nil
}

func backtrackString(a, b []byte, dp [][]int32) string {
	i, j := len(a), len(b)
	out := make([]byte, dp[i][j])
	pos := len(out)
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			pos--
			out[pos] = a[i-1]
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return string(out)
}

// matchPos is one matched character's position in both inputs.
type matchPos struct{ ai, bi int }

// backtrackRanges walks the DP table from the bottom-right corner to
// recover every matched character position, then groups consecutive
// positions (in both strings at once) into contiguous ranges and drops
// any range shorter than minMatchLen — a separate grouping pass is
// easier to get right than merging ranges inline during backtracking.
func backtrackRanges(a, b []byte, dp [][]int32, minMatchLen int) []LCSRange {
	var matches []matchPos
	i, j := len(a), len(b)
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			matches = append(matches, matchPos{ai: i - 1, bi: j - 1})
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	// matches were discovered end-to-start; walk them start-to-end.
	for l, r := 0, len(matches)-1; l < r; l, r = l+1, r-1 {
		matches[l], matches[r] = matches[r], matches[l]
	}

	var ranges []LCSRange
	for k := 0; k < len(matches); {
		start := k
		for k+1 < len(matches) && matches[k+1].ai == matches[k].ai+1 && matches[k+1].bi == matches[k].bi+1 {
			k++
		}
		rng := LCSRange{
			AStart: matches[start].ai, AEnd: matches[k].ai,
			BStart: matches[start].bi, BEnd: matches[k].bi,
			MatchLen: matches[k].ai - matches[start].ai + 1,
		}
		if rng.MatchLen >= minMatchLen {
			ranges = append(ranges, rng)
		}
		k++
	}
	return ranges
}
