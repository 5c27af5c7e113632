package sniper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchOfferingPrefix(t *testing.T) {
	wanted := []string{"ram64", "raid1"}

	value, ok := MatchOffering("ram64-ecc-2400", wanted)
	assert.True(t, ok)
	assert.Equal(t, "ram64", value)

	value, ok = MatchOffering("raid1-soft", wanted)
	assert.True(t, ok)
	assert.Equal(t, "raid1", value)

	_, ok = MatchOffering("nic10g", wanted)
	assert.False(t, ok)

	// Exact equality is a valid prefix too.
	value, ok = MatchOffering("ram64", wanted)
	assert.True(t, ok)
	assert.Equal(t, "ram64", value)
}

func TestUnmetValues(t *testing.T) {
	wanted := []string{"ram64", "raid1"}

	assert.Nil(t, UnmetValues(wanted, []string{"ram64-ecc", "raid1-soft"}))
	assert.Equal(t, []string{"raid1"}, UnmetValues(wanted, []string{"ram64-ecc"}))
	assert.Equal(t, wanted, UnmetValues(wanted, nil))
	assert.Nil(t, UnmetValues(nil, nil))
}
