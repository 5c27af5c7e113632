package sniper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/provider"
)

func entry(fqn string, dcs ...provider.DatacenterAvailability) provider.AvailabilityEntry {
	return provider.AvailabilityEntry{FQN: fqn, PlanCode: "24ska01", Datacenters: dcs}
}

func dc(name, availability string) provider.DatacenterAvailability {
	return provider.DatacenterAvailability{Datacenter: name, Availability: availability}
}

func TestFindAvailableDatacenterSentinelsNeverMatch(t *testing.T) {
	entries := []provider.AvailabilityEntry{
		entry("24ska01", dc("GRA", "unavailable"), dc("GRA", "unknown"), dc("GRA", "")),
	}
	_, found := FindAvailableDatacenter(entries, "gra", nil)
	assert.False(t, found)
}

func TestFindAvailableDatacenterScansInProviderOrder(t *testing.T) {
	// First entry carries a sentinel for the target, second a real
	// stock signal: the scan must pass over the first and hit the second.
	entries := []provider.AvailabilityEntry{
		entry("24ska01.ram32", dc("BHS", "unknown")),
		entry("24ska01.ram64", dc("BHS", "1H-high")),
	}
	match, found := FindAvailableDatacenter(entries, "bhs", nil)
	require.True(t, found)
	assert.Equal(t, "BHS", match.Datacenter)
	assert.Equal(t, "1H-high", match.Availability)
	assert.Equal(t, "24ska01.ram64", match.FQN)
}

func TestFindAvailableDatacenterOpaqueTokenCountsAsStock(t *testing.T) {
	entries := []provider.AvailabilityEntry{
		entry("24ska01", dc("RBX", "720H"), dc("GRA", "240H-low")),
	}
	match, found := FindAvailableDatacenter(entries, "GRA", nil)
	require.True(t, found)
	assert.Equal(t, "GRA", match.Datacenter)
}

func TestFindAvailableDatacenterCaseInsensitiveVerbatimToken(t *testing.T) {
	entries := []provider.AvailabilityEntry{
		entry("24ska01", dc("gra", "1H-high")),
	}
	match, found := FindAvailableDatacenter(entries, "GRA", nil)
	require.True(t, found)
	// The provider's exact token is returned for subsequent calls.
	assert.Equal(t, "gra", match.Datacenter)
}

func TestFindAvailableDatacenterOptionFilter(t *testing.T) {
	entries := []provider.AvailabilityEntry{
		entry("24ska01.ram32.ssd500", dc("GRA", "1H-high")),
		entry("24ska01.ram64.ssd500", dc("GRA", "72H")),
	}
	options := []core.AddonOption{{Label: "memory", Value: "ram64"}}

	match, found := FindAvailableDatacenter(entries, "gra", options)
	require.True(t, found)
	assert.Equal(t, "24ska01.ram64.ssd500", match.FQN)
}

func TestFindAvailableDatacenterOptionFilterFallsBackUnfiltered(t *testing.T) {
	entries := []provider.AvailabilityEntry{
		entry("24ska01.ram32.ssd500", dc("GRA", "1H-high")),
	}
	// No FQN mentions the requested value: scan everything instead of
	// missing the inventory window.
	options := []core.AddonOption{{Label: "memory", Value: "ram999"}}

	match, found := FindAvailableDatacenter(entries, "gra", options)
	require.True(t, found)
	assert.Equal(t, "24ska01.ram32.ssd500", match.FQN)
}

func TestFindAvailableDatacenterNoEntries(t *testing.T) {
	_, found := FindAvailableDatacenter(nil, "gra", nil)
	assert.False(t, found)
}

func TestRegionForDatacenter(t *testing.T) {
	cases := map[string]string{
		"gra":  "europe",
		"GRA3": "europe",
		"rbx8": "europe",
		"bhs5": "canada",
		"vin":  "usa",
		"hil1": "usa",
		"syd2": "apac",
		"sgp":  "apac",
		"zzz1": "",
		"":     "",
	}
	for dc, want := range cases {
		assert.Equal(t, want, RegionForDatacenter(dc), "datacenter %q", dc)
	}
}
