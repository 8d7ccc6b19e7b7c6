package lots

import (
	"strings"
	"unicode/utf8"
)

// ExtractDong derives the neighborhood (dong) from a street or lot-number
// address. Pattern and hotspot lookups match the result exactly, so the
// first match wins:
//
//  1. any token of two or more characters ending in 동 but not 읍동
//  2. any token ending in 읍 or 면
//
// Otherwise it returns "".
func ExtractDong(address string) string {
	parts := strings.Fields(address)
	for _, p := range parts {
		if strings.HasSuffix(p, "동") && utf8.RuneCountInString(p) >= 2 && !strings.HasSuffix(p, "읍동") {
			return p
		}
	}
	for _, p := range parts {
		if strings.HasSuffix(p, "읍") || strings.HasSuffix(p, "면") {
			return p
		}
	}
	return ""
}
