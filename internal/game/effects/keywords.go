package effects

import (
	"fmt"
	"sort"
	"strings"
)

// Keyword is an evergreen ability the engine knows how to enforce.
type Keyword string

const (
	Flying         Keyword = "Flying"
	Reach          Keyword = "Reach"
	Haste          Keyword = "Haste"
	Vigilance      Keyword = "Vigilance"
	Defender       Keyword = "Defender"
	MustAttack     Keyword = "MustAttack"
	Trample        Keyword = "Trample"
	Lifelink       Keyword = "Lifelink"
	Deathtouch     Keyword = "Deathtouch"
	Shroud         Keyword = "Shroud"
	Hexproof       Keyword = "Hexproof"
	Flash          Keyword = "Flash"
	Indestructible Keyword = "Indestructible"
	Delve          Keyword = "Delve"
)

var knownKeywords = map[string]Keyword{}

func init() {
	for _, k := range []Keyword{
		Flying, Reach, Haste, Vigilance, Defender, MustAttack, Trample,
		Lifelink, Deathtouch, Shroud, Hexproof, Flash, Indestructible, Delve,
	} {
		knownKeywords[strings.ToLower(string(k))] = k
	}
}

// ParseKeyword resolves a keyword name case-insensitively.
func ParseKeyword(s string) (Keyword, error) {
	k, ok := knownKeywords[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown keyword %q", s)
	}
	return k, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Keyword) UnmarshalText(text []byte) error {
	parsed, err := ParseKeyword(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// KeywordSet is an unordered set of keywords.
type KeywordSet map[Keyword]struct{}

// NewKeywordSet builds a set from the given keywords.
func NewKeywordSet(ks ...Keyword) KeywordSet {
	s := make(KeywordSet, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

func (s KeywordSet) Has(k Keyword) bool {
	_, ok := s[k]
	return ok
}

func (s KeywordSet) Add(k Keyword) {
	s[k] = struct{}{}
}

func (s KeywordSet) Remove(k Keyword) {
	delete(s, k)
}

// Clone returns an independent copy; cloning nil yields an empty set.
func (s KeywordSet) Clone() KeywordSet {
	out := make(KeywordSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Sorted lists the keywords alphabetically.
func (s KeywordSet) Sorted() []Keyword {
	out := make([]Keyword, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
