// Package correlate turns raw findings into the final result set: dedup by
// URL, re-score confidence from cross-source agreement, and order
// deterministically. Everything here is synchronous and operates on
// already-collected data; it never suspends.
package correlate

import (
	"sort"

	"dossier/internal/search/models"
)

// Correlate deduplicates findings, upgrades confidence where independent
// sources corroborate the same identity attribute, and returns the ordered
// result list.
func Correlate(findings []models.Finding, _ models.Query) []models.Result {
	deduped := dedupeByURL(findings)

	results := make([]models.Result, 0, len(deduped))
	for i, f := range deduped {
		n := corroborationCount(deduped, i)
		f.Confidence = rescore(f.Confidence, n)
		results = append(results, models.Result(f))
	}

	// Confidence tier first; source then URL break ties so repeated runs over
	// the same findings produce identical output.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence.Rank() != results[j].Confidence.Rank() {
			return results[i].Confidence.Rank() > results[j].Confidence.Rank()
		}
		if results[i].Source != results[j].Source {
			return results[i].Source < results[j].Source
		}
		return results[i].URL < results[j].URL
	})
	return results
}

// dedupeByURL keeps the first-seen finding per URL. The same URL is the same
// evidence regardless of which attribute-task produced it.
func dedupeByURL(findings []models.Finding) []models.Finding {
	seen := make(map[string]struct{}, len(findings))
	var kept []models.Finding
	for _, f := range findings {
		if _, dup := seen[f.URL]; dup {
			continue
		}
		seen[f.URL] = struct{}{}
		kept = append(kept, f)
	}
	return kept
}

// corroborationCount counts how many other findings agree with finding i on
// a non-empty username, email, or phone. Each other finding counts at most
// once even when it agrees on several attributes.
func corroborationCount(findings []models.Finding, i int) int {
	f := findings[i]
	count := 0
	for j, other := range findings {
		if j == i {
			continue
		}
		if agrees(f, other) {
			count++
		}
	}
	return count
}

func agrees(a, b models.Finding) bool {
	if a.Username != "" && a.Username == b.Username {
		return true
	}
	if a.Email != "" && a.Email == b.Email {
		return true
	}
	if a.Phone != "" && a.Phone == b.Phone {
		return true
	}
	return false
}

// rescore applies the corroboration rule. Corroboration only ever raises a
// finding's confidence; a finding that already reported high keeps it.
func rescore(original models.Confidence, corroborating int) models.Confidence {
	switch {
	case corroborating >= 2:
		return original.Max(models.ConfidenceHigh)
	case corroborating == 1:
		return original.Max(models.ConfidenceMedium)
	default:
		return original
	}
}
