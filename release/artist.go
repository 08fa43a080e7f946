package release

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rainycape/unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// order is important
var cleanArtistRepls = []struct {
	expr *regexp.Regexp
	repl string
}{
	// translation
	{regexp.MustCompile(` = .+`), ""},
	// disambiguation suffix
	{regexp.MustCompile(` \(\d{1,3}\)$`), ""},
	// internal disambiguation
	{regexp.MustCompile(` \(\d{1,2}\)(,| &)`), ","},
	{regexp.MustCompile(` [-•+]`), ","},
}

// CleanArtist normalises a Discogs artist credit: disambiguation numbers and
// inline translations go, odd delimiters become commas, titlecase is applied,
// and a trailing "The" is folded into the name before it.
func CleanArtist(artist string) string {
	for _, r := range cleanArtistRepls {
		artist = r.expr.ReplaceAllString(artist, r.repl)
	}
	artist = Titlecase(artist)

	words := strings.Split(artist, ", ")
	for i := 1; i < len(words); i++ {
		if words[i] != "The" {
			continue
		}
		if !strings.Contains(strings.ToLower(words[i-1]), "the") {
			words[i-1] = "The " + words[i-1]
		}
		words = slices.Delete(words, i, i+1)
		i--
	}
	artist = strings.Join(words, ", ")
	artist = strings.ReplaceAll(artist, ", the", ", The")
	artist = strings.TrimSpace(artist)
	artist = strings.TrimRight(artist, "*")
	return artist
}

var smallWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {},
	"en": {}, "for": {}, "if": {}, "in": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "via": {}, "vs": {}, "vs.": {},
}

var titleCaser = cases.Title(language.AmericanEnglish, cases.NoLower)

// Titlecase capitalises each word. Small words in the middle are always
// lowered, even when the credit capitalises them ("Tears For Fears" ->
// "Tears for Fears"); any other word already carrying capitals passes
// through (DJ, McCoy, BWV).
func Titlecase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if i > 0 && i < len(words)-1 {
			if _, ok := smallWords[strings.ToLower(word)]; ok {
				words[i] = strings.ToLower(word)
				continue
			}
		}
		if word != strings.ToLower(word) {
			continue
		}
		words[i] = titleCaser.String(word)
	}
	return strings.Join(words, " ")
}

// IsASCII is like a per-rune ascii check, but less strict: punctuation and
// whitespace are ignored, and one ascii rune anywhere is enough.
func IsASCII(s string) bool {
	for _, r := range s {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r) {
			continue
		}
		if r < utf8.RuneSelf {
			return true
		}
	}
	return false
}

// Transliterate appends an ascii rendering to a non-ascii artist name, eg
// "Мумий Тролль" -> "Мумий Тролль (Mumii Troll')". Names that are already
// ascii enough pass through.
func Transliterate(name string) string {
	if IsASCII(name) {
		return name
	}
	ascii := strings.TrimSpace(unidecode.Unidecode(name))
	if ascii == "" || ascii == name {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, ascii)
}

// ParseNumRange expands a Discogs track range string like "3 to 7, 9" into
// [3 4 5 6 7 9]. Disc-prefixed ranges ("1-1 to 1-12") have their common
// prefix stripped first.
func ParseNumRange(s string) ([]int, error) {
	var result []int
	delims := []string{" to ", "~", "-"}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var expanded bool
		for _, delim := range delims {
			if !strings.Contains(part, delim) {
				continue
			}
			nums, err := expandRange(part, delim)
			if err != nil {
				return nil, err
			}
			result = append(result, nums...)
			expanded = true
			break
		}
		if expanded {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse track range %q: %w", s, err)
		}
		result = append(result, n)
	}
	return result, nil
}

func expandRange(part, delim string) ([]int, error) {
	start, end, _ := strings.Cut(part, delim)
	if _, err := strconv.Atoi(start); err != nil {
		// the dashes in "1-1 to 1-21" are disc prefixes, not ranges
		prefix := commonPrefix(start, end)
		start = strings.TrimPrefix(start, prefix)
		end = strings.TrimPrefix(end, prefix)
	}
	from, err := strconv.Atoi(start)
	if err != nil {
		return nil, fmt.Errorf("parse track range %q: %w", part, err)
	}
	to, err := strconv.Atoi(end)
	if err != nil {
		return nil, fmt.Errorf("parse track range %q: %w", part, err)
	}
	var nums []int
	for n := from; n <= to; n++ {
		nums = append(nums, n)
	}
	return nums, nil
}

func commonPrefix(a, b string) string {
	short, long := a, b
	if len(b) < len(a) {
		short, long = b, a
	}
	var i int
	for i < len(short) && short[i] == long[i] {
		i++
	}
	// "1-1 to 1-12" should give "1-", not "1-1"
	if i == len(short) && i > 0 {
		i--
	}
	return short[:i]
}
