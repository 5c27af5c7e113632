package sniper

import (
	"strings"

	"github.com/imagehubcc/titan-sniper/internal/core"
	"github.com/imagehubcc/titan-sniper/internal/provider"
)

// Match is the availability hit the order workflow acts on. Datacenter
// carries the provider's exact token, which may differ in case from the
// requested one and must be used verbatim in subsequent calls.
type Match struct {
	Datacenter   string
	FQN          string
	Availability string
}

// The provider's availability field is not a boolean. These are the only
// values known to mean "no stock"; anything else, including encoded
// strings like "1H-high", counts as available. Missing a sale costs more
// than a doomed purchase attempt, which checkout rejects anyway.
func availabilityNegative(v string) bool {
	switch v {
	case "", "unavailable", "unknown":
		return true
	}
	return false
}

// FindAvailableDatacenter scans probe entries for the first datacenter
// matching target (case-insensitive) with a positive stock signal.
//
// When the task requests memory/storage options, entries whose FQN
// contains every requested value are scanned first; if none qualifies
// the full unfiltered list is scanned instead. Scan order follows the
// provider's ordering, first match wins.
func FindAvailableDatacenter(entries []provider.AvailabilityEntry, target string, options []core.AddonOption) (Match, bool) {
	candidates := filterByOptions(entries, options)
	if len(candidates) == 0 {
		candidates = entries
	}

	for _, entry := range candidates {
		for _, dc := range entry.Datacenters {
			if !strings.EqualFold(dc.Datacenter, target) {
				continue
			}
			if availabilityNegative(dc.Availability) {
				continue
			}
			return Match{
				Datacenter:   dc.Datacenter,
				FQN:          entry.FQN,
				Availability: dc.Availability,
			}, true
		}
	}
	return Match{}, false
}

// filterByOptions keeps entries whose FQN mentions every requested
// memory/storage option value.
func filterByOptions(entries []provider.AvailabilityEntry, options []core.AddonOption) []provider.AvailabilityEntry {
	var wanted []string
	for _, opt := range options {
		switch opt.Label {
		case "memory", "storage":
			if opt.Value != "" {
				wanted = append(wanted, opt.Value)
			}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	var filtered []provider.AvailabilityEntry
	for _, entry := range entries {
		all := true
		for _, value := range wanted {
			if !strings.Contains(entry.FQN, value) {
				all = false
				break
			}
		}
		if all {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
