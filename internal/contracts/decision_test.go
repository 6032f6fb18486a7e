package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAction(t *testing.T) {
	assert.Equal(t, ActionBuy, NormalizeAction(" buy "))
	assert.Equal(t, ActionSell, NormalizeAction("SELL"))
	assert.Equal(t, ActionHold, NormalizeAction("hold"))
	assert.Equal(t, ActionHold, NormalizeAction("short"))
	assert.Equal(t, ActionHold, NormalizeAction(""))
}

func TestNormalizeSizing(t *testing.T) {
	assert.Equal(t, SizingAllIn, NormalizeSizing("all_in"))
	assert.Equal(t, SizingOneShare, NormalizeSizing("one_share"))
	assert.Equal(t, SizingOneShare, NormalizeSizing("kelly"))
	assert.Equal(t, SizingOneShare, NormalizeSizing(""))
}
