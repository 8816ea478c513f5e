package sources

import "github.com/scholarforge/scholarforge/pkg/models"

// MergePapers combines result sets from multiple connectors, dropping
// duplicates. Two papers are the same when their DOIs match or, absent
// DOIs, their normalized titles match. The duplicate with the higher
// citation count wins, on the assumption that the better-indexed source
// carries the more complete record.
func MergePapers(sets ...[]models.Paper) []models.Paper {
	var merged []models.Paper
	for _, set := range sets {
		for _, p := range set {
			idx := -1
			for i := range merged {
				if models.SamePaper(&merged[i], &p) {
					idx = i
					break
				}
			}
			if idx < 0 {
				merged = append(merged, p)
				continue
			}
			if p.CitationCount > merged[idx].CitationCount {
				keep := merged[idx]
				merged[idx] = p
				fillMissing(&merged[idx], &keep)
			} else {
				fillMissing(&merged[idx], &p)
			}
		}
	}
	return merged
}

// fillMissing copies fields the kept record lacks from the discarded
// duplicate.
func fillMissing(dst, src *models.Paper) {
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
}
