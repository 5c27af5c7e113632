package sniper

import "strings"

// Closed mapping from datacenter name prefixes to the provider's region
// configuration values. Datacenters outside the table leave the region
// unset; whether that aborts the purchase depends on the provider
// marking the region configuration required.
var regionPrefixes = []struct {
	region   string
	prefixes []string
}{
	{"europe", []string{"gra", "rbx", "sbg", "eri", "lim", "waw", "par", "fra", "lon"}},
	{"canada", []string{"bhs", "beauharnois"}},
	{"usa", []string{"vin", "hil", "vint", "hill"}},
	{"apac", []string{"syd", "sgp", "mum"}},
}

// RegionForDatacenter infers the geographic region for a datacenter
// token, or "" when the datacenter is unmapped.
func RegionForDatacenter(dc string) string {
	dc = strings.ToLower(dc)
	if dc == "" {
		return ""
	}
	for _, group := range regionPrefixes {
		for _, prefix := range group.prefixes {
			if strings.HasPrefix(dc, prefix) {
				return group.region
			}
		}
	}
	return ""
}
