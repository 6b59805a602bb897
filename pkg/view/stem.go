package view

import (
	"slices"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// FileStem turns a region name into a safe file name stem.
//
// Spaces become underscores. Letters, digits, '-', '_' and '.' are kept;
// everything else (path separators, punctuation, control characters) is
// removed. Leading dots are stripped so the stem is never hidden or a
// relative path. An empty result becomes "region".
func FileStem(region string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(region) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	stem := strings.TrimLeft(b.String(), ".")
	if stem == "" {
		return "region"
	}
	return stem
}

// UniqueStems maps each region to a file stem no other region shares.
//
// Regions whose [FileStem] is unique, ignoring case, keep it. When several
// regions fold to the same stem, each of them gets a suffix derived from a
// name-based UUID of the full region name, so "Tamil Nadu" and "Tamil_Nadu"
// become two distinct "Tamil_Nadu-xxxxxxxx" stems. The mapping depends only
// on the set of regions, not their order.
func UniqueStems(regions []string) map[string]string {
	groups := make(map[string][]string, len(regions))
	for _, r := range regions {
		key := strings.ToLower(FileStem(r))
		if !slices.Contains(groups[key], r) {
			groups[key] = append(groups[key], r)
		}
	}

	stems := make(map[string]string, len(regions))
	for _, members := range groups {
		if len(members) == 1 {
			stems[members[0]] = FileStem(members[0])
			continue
		}
		for _, r := range members {
			stems[r] = FileStem(r) + "-" + stemSuffix(r)
		}
	}
	return stems
}

func stemSuffix(region string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("lineage:region:"+region))
	return id.String()[:8]
}
