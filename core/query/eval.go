package query

import (
	"slices"
	"strings"

	"github.com/FocuswithJustin/JuniperStudy/core/bible"
	"github.com/FocuswithJustin/JuniperStudy/core/tokens"
)

// Evaluate matches a query tree against a token context. ok is false for
// "no match"; a match may carry an empty position list (a satisfied Not).
// Positions are token indices in ascending order.
func Evaluate(p Part, ctx tokens.Context) (hits []int, ok bool) {
	switch p := p.(type) {
	case Word:
		return collect(ctx, func(i int) bool { return ctx.Text(i) == p.Text })
	case StartsWith:
		return collect(ctx, func(i int) bool { return strings.HasPrefix(ctx.Text(i), p.Prefix) })
	case EndsWith:
		return collect(ctx, func(i int) bool { return strings.HasSuffix(ctx.Text(i), p.Suffix) })
	case Strongs:
		return collect(ctx, func(i int) bool { return slices.Contains(ctx.Strongs(i), p.Number) })
	case And:
		union := []int{}
		for _, child := range p.Parts {
			h, ok := Evaluate(child, ctx)
			if !ok {
				return nil, false
			}
			union = append(union, h...)
		}
		slices.Sort(union)
		return slices.Compact(union), true
	case Or:
		for _, child := range p.Parts {
			if h, ok := Evaluate(child, ctx); ok {
				return h, true
			}
		}
		return nil, false
	case Not:
		if _, ok := Evaluate(p.Part, ctx); ok {
			return nil, false
		}
		return []int{}, true
	case Sequence:
		return sequence(p, ctx)
	default:
		return nil, false
	}
}

func collect(ctx tokens.Context, match func(int) bool) ([]int, bool) {
	var hits []int
	for i := 0; i < ctx.Len(); i++ {
		if match(i) {
			hits = append(hits, i)
		}
	}
	return hits, len(hits) > 0
}

// sequence returns the first run start..start+n-1 where the k-th child
// matches at start+k. Earlier starts win; there is no backtracking into
// later runs once one is found.
func sequence(seq Sequence, ctx tokens.Context) ([]int, bool) {
	if len(seq.Parts) == 0 {
		return nil, false
	}
	positions := make([][]int, len(seq.Parts))
	for k, child := range seq.Parts {
		h, ok := Evaluate(child, ctx)
		if !ok {
			return nil, false
		}
		positions[k] = h
	}

	for _, start := range positions[0] {
		matched := true
		for k := 1; k < len(positions); k++ {
			if _, found := slices.BinarySearch(positions[k], start+k); !found {
				matched = false
				break
			}
		}
		if matched {
			run := make([]int, len(positions))
			for k := range run {
				run[k] = start + k
			}
			return run, true
		}
	}
	return nil, false
}

// ContainsWord reports whether any leaf of the tree, including leaves under
// Not, would match word. Renderers use it to decide what to highlight.
func ContainsWord(p Part, word string) bool {
	word = strings.ToLower(word)
	switch p := p.(type) {
	case Word:
		return p.Text == word
	case StartsWith:
		return strings.HasPrefix(word, p.Prefix)
	case EndsWith:
		return strings.HasSuffix(word, p.Suffix)
	case Not:
		return ContainsWord(p.Part, word)
	case And:
		return anyPart(p.Parts, func(c Part) bool { return ContainsWord(c, word) })
	case Or:
		return anyPart(p.Parts, func(c Part) bool { return ContainsWord(c, word) })
	case Sequence:
		return anyPart(p.Parts, func(c Part) bool { return ContainsWord(c, word) })
	default:
		return false
	}
}

// ContainsStrongs reports whether any Strong's leaf of the tree, including
// leaves under Not, equals n.
func ContainsStrongs(p Part, n bible.StrongsNumber) bool {
	switch p := p.(type) {
	case Strongs:
		return p.Number == n
	case Not:
		return ContainsStrongs(p.Part, n)
	case And:
		return anyPart(p.Parts, func(c Part) bool { return ContainsStrongs(c, n) })
	case Or:
		return anyPart(p.Parts, func(c Part) bool { return ContainsStrongs(c, n) })
	case Sequence:
		return anyPart(p.Parts, func(c Part) bool { return ContainsStrongs(c, n) })
	default:
		return false
	}
}

func anyPart(parts []Part, fn func(Part) bool) bool {
	return slices.ContainsFunc(parts, fn)
}
