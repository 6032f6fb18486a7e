package s1_panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwlim/pitfolio/internal/contracts"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fact(ticker, concept, unit string, value float64, end, filed time.Time) contracts.FundamentalFact {
	return contracts.FundamentalFact{
		Ticker:    ticker,
		Concept:   concept,
		Unit:      unit,
		Value:     value,
		Form:      "10-Q",
		PeriodEnd: end,
		Filed:     filed,
	}
}

func TestNormalizer_UnitMajorityVote(t *testing.T) {
	n := NewNormalizer(nil, nil)

	// USD appears twice, USD/shares once: USD wins for the pair
	facts := []contracts.FundamentalFact{
		fact("TSLA", "Revenues", "USD", 100, day(2023, 3, 31), day(2023, 4, 20)),
		fact("TSLA", "Revenues", "USD/shares", 1.5, day(2023, 6, 30), day(2023, 7, 20)),
		fact("TSLA", "Revenues", "USD", 120, day(2023, 9, 30), day(2023, 10, 20)),
	}

	snaps := n.Normalize(facts)
	require.Len(t, snaps, 2)
	for _, s := range snaps {
		v, ok := s.Concepts["Revenues"]
		require.True(t, ok)
		assert.NotEqual(t, 1.5, v, "per-share unit should have been discarded")
	}
}

func TestNormalizer_UnitTieBreaksFirstSeen(t *testing.T) {
	n := NewNormalizer(nil, nil)

	// One fact per unit: the first-seen unit must win, reproducibly
	facts := []contracts.FundamentalFact{
		fact("AAPL", "Assets", "USD", 500, day(2023, 3, 31), day(2023, 4, 20)),
		fact("AAPL", "Assets", "EUR", 460, day(2023, 6, 30), day(2023, 7, 20)),
	}

	snaps := n.Normalize(facts)
	require.Len(t, snaps, 1)
	assert.Equal(t, 500.0, snaps[0].Concepts["Assets"])
}

func TestNormalizer_LatestPeriodEndPerFiledDate(t *testing.T) {
	n := NewNormalizer(nil, nil)

	filed := day(2023, 4, 20)
	facts := []contracts.FundamentalFact{
		fact("TSLA", "NetIncomeLoss", "USD", 10, day(2022, 12, 31), filed),
		fact("TSLA", "NetIncomeLoss", "USD", 25, day(2023, 3, 31), filed),
	}

	snaps := n.Normalize(facts)
	require.Len(t, snaps, 1)
	assert.Equal(t, 25.0, snaps[0].Concepts["NetIncomeLoss"],
		"later period end at the same filing date must win")
}

func TestNormalizer_FiltersFormsAndConcepts(t *testing.T) {
	n := NewNormalizer(nil, nil)

	facts := []contracts.FundamentalFact{
		fact("TSLA", "Revenues", "USD", 100, day(2023, 3, 31), day(2023, 4, 20)),
		// Unknown concept
		fact("TSLA", "SomeObscureTag", "USD", 1, day(2023, 3, 31), day(2023, 4, 20)),
	}
	// Disallowed form
	other := fact("TSLA", "Assets", "USD", 7, day(2023, 3, 31), day(2023, 4, 20))
	other.Form = "8-K"
	facts = append(facts, other)

	snaps := n.Normalize(facts)
	require.Len(t, snaps, 1)
	assert.Len(t, snaps[0].Concepts, 1)
	assert.Contains(t, snaps[0].Concepts, "Revenues")
}

func TestNormalizer_EmptyInput(t *testing.T) {
	n := NewNormalizer(nil, nil)
	assert.Empty(t, n.Normalize(nil))
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(nil, nil)

	facts := []contracts.FundamentalFact{
		fact("TSLA", "Revenues", "USD", 100, day(2023, 3, 31), day(2023, 4, 20)),
		fact("TSLA", "Revenues", "USD", 120, day(2023, 6, 30), day(2023, 7, 20)),
		fact("TSLA", "Assets", "USD", 900, day(2023, 3, 31), day(2023, 4, 20)),
	}

	once := n.Normalize(facts)

	// Flatten the normalized output back into facts and normalize again
	var flat []contracts.FundamentalFact
	for _, s := range once {
		for c, v := range s.Concepts {
			flat = append(flat, fact(s.Ticker, c, "USD", v, s.Filed, s.Filed))
		}
	}
	twice := n.Normalize(flat)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Ticker, twice[i].Ticker)
		assert.True(t, once[i].Filed.Equal(twice[i].Filed))
		assert.Equal(t, once[i].Concepts, twice[i].Concepts)
	}
}

func TestNormalizer_SnapshotsSortedByFiled(t *testing.T) {
	n := NewNormalizer(nil, nil)

	facts := []contracts.FundamentalFact{
		fact("TSLA", "Revenues", "USD", 120, day(2023, 6, 30), day(2023, 7, 20)),
		fact("AAPL", "Revenues", "USD", 90, day(2023, 3, 31), day(2023, 5, 1)),
		fact("TSLA", "Revenues", "USD", 100, day(2023, 3, 31), day(2023, 4, 20)),
	}

	snaps := n.Normalize(facts)
	require.Len(t, snaps, 3)
	assert.Equal(t, "AAPL", snaps[0].Ticker)
	assert.Equal(t, "TSLA", snaps[1].Ticker)
	assert.True(t, snaps[1].Filed.Before(snaps[2].Filed))
}
