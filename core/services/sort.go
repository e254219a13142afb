package services

import (
	"cmp"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kubescape/vulnintel/core/domain"
)

// PriorityYears are publish years listed ahead of every other year
var PriorityYears = mapset.NewSet[int](2024, 2025)

// CustomCVESort orders records published in a priority year first, then by year
// descending, then by publish timestamp descending.
func CustomCVESort(a, b domain.Vulnerability) int {
	ya, yb := a.PublishedDate.UTC().Year(), b.PublishedDate.UTC().Year()
	pa, pb := PriorityYears.Contains(ya), PriorityYears.Contains(yb)
	if pa != pb {
		if pa {
			return -1
		}
		return 1
	}
	if ya != yb {
		return cmp.Compare(yb, ya)
	}
	return b.PublishedDate.Compare(a.PublishedDate)
}

// SortVulnerabilities sorts in place with CustomCVESort, keeping the input order of equal records
func SortVulnerabilities(vulns []domain.Vulnerability) {
	slices.SortStableFunc(vulns, CustomCVESort)
}
