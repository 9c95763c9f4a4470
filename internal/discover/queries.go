// Package discover turns a brand list into vetted supplier candidates: it
// generates search queries, runs them through a SERP provider, and filters
// the raw result URLs down to unique, relevant registered domains.
package discover

import (
	"fmt"
	"math/rand"
)

// Queries renders the first perBrand patterns for a brand, in pattern order.
// A perBrand beyond the pattern list yields every pattern.
func Queries(brand string, patterns []string, perBrand int) []string {
	if perBrand <= 0 || perBrand > len(patterns) {
		perBrand = len(patterns)
	}
	out := make([]string, 0, perBrand)
	for _, p := range patterns[:perBrand] {
		out = append(out, fmt.Sprintf(p, brand))
	}
	return out
}

// ZIPVariants appends up to n geo-biased variants of the lead query to the
// end of the list, with the ZIP seeds sampled without replacement. The rng
// is injectable so tests are deterministic; nil keeps the base queries
// untouched along with n <= 0.
func ZIPVariants(queries, zips []string, n int, rng *rand.Rand) []string {
	if n <= 0 || rng == nil || len(zips) == 0 || len(queries) == 0 {
		return queries
	}
	if n > len(zips) {
		n = len(zips)
	}
	picked := rng.Perm(len(zips))[:n]

	out := make([]string, 0, len(queries)+n)
	out = append(out, queries...)
	for _, i := range picked {
		out = append(out, fmt.Sprintf("%s near %s", queries[0], zips[i]))
	}
	return out
}
