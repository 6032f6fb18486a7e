package s1_panel

import (
	"sort"

	"github.com/jwlim/pitfolio/internal/contracts"
)

// Normalizer reduces raw fundamental facts to one unit per (ticker, concept)
// and one value per (ticker, concept, filed date), then pivots them into
// wide per-filing snapshots.
type Normalizer struct {
	concepts map[string]bool
	forms    map[string]bool
}

// NewNormalizer creates a normalizer restricted to the given concept and
// disclosure-form allow-lists. Nil slices select the defaults.
func NewNormalizer(concepts, forms []string) *Normalizer {
	if concepts == nil {
		concepts = contracts.DefaultConcepts
	}
	if forms == nil {
		forms = contracts.DefaultForms
	}

	n := &Normalizer{
		concepts: make(map[string]bool, len(concepts)),
		forms:    make(map[string]bool, len(forms)),
	}
	for _, c := range concepts {
		n.concepts[c] = true
	}
	for _, f := range forms {
		n.forms[f] = true
	}
	return n
}

// Normalize filters, deduplicates, and pivots facts into per-filing
// snapshots ordered by (ticker, filed) ascending. Empty input yields no
// snapshots, which downstream treats as an all-null ticker, not an error.
func (n *Normalizer) Normalize(facts []contracts.FundamentalFact) []contracts.WideSnapshot {
	kept := n.filter(facts)
	kept = n.selectUnits(kept)
	kept = dedupeByFiledDate(kept)
	return pivot(kept)
}

// filter keeps facts on the allow-lists with parsable dates
func (n *Normalizer) filter(facts []contracts.FundamentalFact) []contracts.FundamentalFact {
	out := make([]contracts.FundamentalFact, 0, len(facts))
	for _, f := range facts {
		if !n.concepts[f.Concept] || !n.forms[f.Form] {
			continue
		}
		if f.PeriodEnd.IsZero() || f.Filed.IsZero() {
			continue
		}
		f.Ticker = contracts.NormalizeTicker(f.Ticker)
		if f.Ticker == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// selectUnits keeps, for each (ticker, concept), only the facts reported in
// the most frequent unit. Concepts show up in several units (currency vs.
// per-share); mixing them corrupts downstream aggregation, so exactly one
// unit survives per pair. Ties break to the first-seen unit, which keeps
// the choice reproducible.
func (n *Normalizer) selectUnits(facts []contracts.FundamentalFact) []contracts.FundamentalFact {
	type pair struct{ ticker, concept string }

	counts := make(map[pair]map[string]int)
	firstSeen := make(map[pair][]string)

	for _, f := range facts {
		p := pair{f.Ticker, f.Concept}
		if counts[p] == nil {
			counts[p] = make(map[string]int)
		}
		if counts[p][f.Unit] == 0 {
			firstSeen[p] = append(firstSeen[p], f.Unit)
		}
		counts[p][f.Unit]++
	}

	chosen := make(map[pair]string, len(counts))
	for p, byUnit := range counts {
		best := ""
		bestCount := -1
		for _, unit := range firstSeen[p] {
			if byUnit[unit] > bestCount {
				best = unit
				bestCount = byUnit[unit]
			}
		}
		chosen[p] = best
	}

	out := make([]contracts.FundamentalFact, 0, len(facts))
	for _, f := range facts {
		if chosen[pair{f.Ticker, f.Concept}] == f.Unit {
			out = append(out, f)
		}
	}
	return out
}

// dedupeByFiledDate keeps one fact per (ticker, concept, filed date): the
// one with the latest period end, since a later period end at the same
// filing date is the more recent restatement.
func dedupeByFiledDate(facts []contracts.FundamentalFact) []contracts.FundamentalFact {
	sorted := make([]contracts.FundamentalFact, len(facts))
	copy(sorted, facts)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if a.Concept != b.Concept {
			return a.Concept < b.Concept
		}
		if !a.Filed.Equal(b.Filed) {
			return a.Filed.Before(b.Filed)
		}
		return a.PeriodEnd.Before(b.PeriodEnd)
	})

	out := make([]contracts.FundamentalFact, 0, len(sorted))
	for _, f := range sorted {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.Ticker == f.Ticker && last.Concept == f.Concept && last.Filed.Equal(f.Filed) {
				// Same filing date, later period end wins
				*last = f
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// pivot converts long facts into wide snapshots keyed by (ticker, filed).
// A filing date missing a concept simply leaves it out of the map.
func pivot(facts []contracts.FundamentalFact) []contracts.WideSnapshot {
	type key struct {
		ticker string
		filed  int64
	}

	byKey := make(map[key]*contracts.WideSnapshot)
	var order []key

	for _, f := range facts {
		k := key{f.Ticker, f.Filed.Unix()}
		snap, ok := byKey[k]
		if !ok {
			snap = &contracts.WideSnapshot{
				Ticker:   f.Ticker,
				Filed:    f.Filed,
				Concepts: make(map[string]float64),
			}
			byKey[k] = snap
			order = append(order, k)
		}
		snap.Concepts[f.Concept] = f.Value
	}

	out := make([]contracts.WideSnapshot, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ticker != out[j].Ticker {
			return out[i].Ticker < out[j].Ticker
		}
		return out[i].Filed.Before(out[j].Filed)
	})
	return out
}
