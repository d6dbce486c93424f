package domain

import "fmt"

// =============================================================================
// Unique Slug Resolution
// =============================================================================

// maxSlugAttempts caps the suffix search. The existing set is bounded by the
// owner's site count, so hitting this cap is practically unreachable.
const maxSlugAttempts = 10000

// ResolveUniqueSlug resolves a candidate slug against the owner's existing
// slugs. If the candidate is free it is returned unchanged; otherwise the
// lowest positive integer suffix (-1, -2, ...) that yields a free slug is
// appended.
//
// The resolution is deterministic: the same candidate and existing set always
// produce the same result. The namespace is per-user, so two users may own
// identically-slugged sites.
//
// Example:
//
//	ResolveUniqueSlug("blog", {})               // returns "blog"
//	ResolveUniqueSlug("blog", {"blog"})         // returns "blog-1"
//	ResolveUniqueSlug("blog", {"blog","blog-1"}) // returns "blog-2"
func ResolveUniqueSlug(candidate string, existing map[string]struct{}) (string, error) {
	if _, taken := existing[candidate]; !taken {
		return candidate, nil
	}
	for i := 1; i <= maxSlugAttempts; i++ {
		slug := fmt.Sprintf("%s-%d", candidate, i)
		if _, taken := existing[slug]; !taken {
			return slug, nil
		}
	}
	return "", fmt.Errorf("%w: no free suffix for %q within %d attempts",
		ErrSlugSpaceExhausted, candidate, maxSlugAttempts)
}

// SlugSet builds a membership set from a list of slugs.
func SlugSet(slugs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		set[s] = struct{}{}
	}
	return set
}
