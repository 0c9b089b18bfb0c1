package incremental

import (
	"github.com/arthur-debert/hwmstore/hwm"
)

// NewFiles returns the candidates h does not cover yet, in their original order.
// Candidates may be absolute or relative to the HWM folder; duplicates are dropped.
func NewFiles(h hwm.FileListHWM, candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, c := range candidates {
		if _, dup := seen[c]; dup || h.Covers(c) {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Record adds handled files to h, returning the updated HWM
func Record(h hwm.FileListHWM, handled []string) (hwm.FileListHWM, error) {
	if len(handled) == 0 {
		return h, nil
	}
	return h.Add(handled)
}
