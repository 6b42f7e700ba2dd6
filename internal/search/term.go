// Package search pages Yelp business search results for a city, fanning
// oversized cities out by postal code, and loads them into a store.
package search

// BlackOwned is the phrase used for the Black-owned business search.
const BlackOwned = "Black owned"

// Term is an optional search phrase. The zero value, AllBusinesses, means
// no term and is distinct from a phrase.
type Term struct {
	phrase string
	set    bool
}

// AllBusinesses searches without a term.
var AllBusinesses = Term{}

// Phrase returns a term that searches for p.
func Phrase(p string) Term {
	return Term{phrase: p, set: true}
}

// IsSet reports whether t carries a phrase.
func (t Term) IsSet() bool {
	return t.set
}

// Label is the value stored in the _term column: the phrase, or "" for
// AllBusinesses.
func (t Term) Label() string {
	return t.phrase
}

func (t Term) String() string {
	if !t.set {
		return "total"
	}
	return t.phrase
}

// Terms maps the command-line selections onto search terms, Black-owned
// first.
func Terms(blackOwned, all bool) []Term {
	var terms []Term
	if blackOwned {
		terms = append(terms, Phrase(BlackOwned))
	}
	if all {
		terms = append(terms, AllBusinesses)
	}
	return terms
}
