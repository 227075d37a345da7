package feed

import (
	"strings"

	"github.com/careerhub-go/internal/models"
)

// ApplyFilters runs the client-side predicates over one enriched page, in
// order: open-only, free-text, tag set, skill set, team-size range. The
// input slice is not mutated.
func ApplyFilters(filter models.ProjectFilter, items []models.EnrichedProject) []models.EnrichedProject {
	out := make([]models.EnrichedProject, 0, len(items))

	for _, item := range items {
		if filter.OpenOnly && !item.IsOpen {
			continue
		}
		if !matchesFreeText(&item.ProjectRecord, filter.Query) {
			continue
		}
		if !hasAny(item.Tags, filter.Tags) {
			continue
		}
		if !hasAny(item.SkillsNeeded, filter.Skills) {
			continue
		}
		if !inTeamRange(item.TeamSize, filter.TeamSizeMin, filter.TeamSizeMax) {
			continue
		}
		out = append(out, item)
	}

	return out
}

// matchesFreeText is a case-insensitive substring match against title,
// description, tags and skills; any single field containing the query is
// enough
func matchesFreeText(record *models.ProjectRecord, query string) bool {
	if query == "" {
		return true
	}
	needle := strings.ToLower(query)

	if strings.Contains(strings.ToLower(record.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(record.Description), needle) {
		return true
	}
	for _, tag := range record.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	for _, skill := range record.SkillsNeeded {
		if strings.Contains(strings.ToLower(skill), needle) {
			return true
		}
	}
	return false
}

// hasAny implements the OR semantics of the tag/skill filters: the record
// passes when it carries at least one of the selected values. An empty
// selection passes everything.
func hasAny(values, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, want := range selected {
		for _, have := range values {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// inTeamRange checks the inclusive team-size bounds. A missing team size
// counts as 1; a zero bound is unbounded.
func inTeamRange(size, min, max int) bool {
	if size <= 0 {
		size = 1
	}
	if min > 0 && size < min {
		return false
	}
	if max > 0 && size > max {
		return false
	}
	return true
}
