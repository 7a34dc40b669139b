package linker

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the lowest JaroWinkler similarity accepted as a link.
const DefaultThreshold = 0.92

// Link is the outcome of matching one scraped name.
type Link struct {
	Name        string
	Correlation float64
}

// PartyLinker maps party names as written on candidate cards to the
// names held in the party registry.
type PartyLinker struct {
	threshold float64
	names     []string
	folded    []string
	exact     map[string]string
}

func NewPartyLinker(names []string, threshold float64) *PartyLinker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	l := &PartyLinker{
		threshold: threshold,
		exact:     make(map[string]string, len(names)),
	}
	for _, name := range names {
		folded := Fold(name)
		if folded == "" {
			continue
		}
		if _, ok := l.exact[folded]; ok {
			continue
		}
		l.exact[folded] = name
		l.names = append(l.names, name)
		l.folded = append(l.folded, folded)
	}
	return l
}

// Resolve returns the registry name for name. Exact matches on the folded
// form win; otherwise the most similar name above the threshold is used.
func (l *PartyLinker) Resolve(name string) (Link, bool) {
	folded := Fold(name)
	if folded == "" {
		return Link{}, false
	}
	if match, ok := l.exact[folded]; ok {
		return Link{Name: match, Correlation: 1}, true
	}

	var best Link
	for i, candidate := range l.folded {
		similarity := matchr.JaroWinkler(folded, candidate, false)
		if similarity > best.Correlation {
			best = Link{Name: l.names[i], Correlation: similarity}
		}
	}
	if best.Correlation < l.threshold {
		return Link{}, false
	}
	return best, true
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s, strips diacritics and collapses whitespace.
func Fold(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
