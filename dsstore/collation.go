package dsstore

import "strings"

// CompareKeys orders two records the way the container's index does:
// case-insensitive filename comparison first, raw code-point order as the
// tie-break, then the 4-character attribute code. It returns -1, 0, or +1.
func CompareKeys(a, b Record) int {
	if c := strings.Compare(foldName(a.FileName), foldName(b.FileName)); c != 0 {
		return c
	}
	if c := strings.Compare(a.FileName, b.FileName); c != 0 {
		return c
	}
	return strings.Compare(a.Code, b.Code)
}

func foldName(s string) string {
	return strings.ToLower(s)
}
