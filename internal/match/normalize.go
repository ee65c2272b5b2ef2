package match

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// parenthesized chunks like "(본관)" or "(Main Branch)" carry no
	// identity and are dropped wholesale, non-greedily.
	parenRe = regexp.MustCompile(`\(.*?\)`)

	// genericTokens lists facility-type words that appear inconsistently
	// across the two sources ("정자도서관" vs "정자 작은도서관" vs
	// "Jeongja Library"). Longer tokens come first so the alternation
	// consumes them before their prefixes.
	genericTokens = regexp.MustCompile(`(?i)` +
		`작은도서관|어린이도서관|도서관|도서실|자료실|정보관|문화관|분관|본관|` +
		`작은|어린이|시립|구립|군립|국립|도립|` +
		`informationcenter|readingroom|mainbranch|library|branch|municipal|provincial|national|small`)

	// addrCoreRe extracts the three structural slots of a Korean address:
	// region (시/도, optional), subregion (시/군/구, required) and
	// locality (읍/면/동, optional).
	addrCoreRe = regexp.MustCompile(
		`([가-힣]+(?:특별자치시|특별자치도|특별시|광역시|도))?` +
			`\s*([가-힣]+(?:시|군|구))` +
			`(\s*[가-힣]+(?:읍|면|동))?`)
)

// Sejong has no 시/군/구 subdivision, so its addresses collapse to the
// city prefix alone.
const sejongPrefix = "세종특별자치시"

// NormalizeName canonicalizes a raw facility name into a comparison key.
// It is total: blank input yields the empty string, and the result is a
// fixed point of the function itself.
func NormalizeName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = parenRe.ReplaceAllString(s, "")
	s = stripNonAlnum(s)

	// Token stripping runs to a fixed point: removing one token can make
	// two halves of another token adjacent, and normalization must be
	// stable on its own output.
	for {
		next := genericTokens.ReplaceAllString(s, "")
		if next == s {
			break
		}
		s = next
	}
	return s
}

// NormalizeAddress reduces a freeform Korean address to its
// administrative-hierarchy core. Street-level noise (building numbers,
// unit numbers) is discarded so that two descriptions of the same
// facility compare equal as long as they agree on the district.
func NormalizeAddress(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, sejongPrefix) {
		return sejongPrefix
	}

	if m := addrCoreRe.FindStringSubmatch(s); m != nil {
		return stripNonAlnum(m[1] + m[2] + m[3])
	}

	// Fallback for addresses the structural regex cannot parse: keep the
	// first two whitespace-delimited tokens (or everything, if shorter).
	fields := strings.Fields(s)
	if len(fields) >= 2 {
		return stripNonAlnum(fields[0] + fields[1])
	}
	return stripNonAlnum(s)
}

// stripNonAlnum removes every rune that is not a letter (any script) or
// a digit.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
