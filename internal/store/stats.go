package store

import (
	"sort"
	"strconv"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

// Statistics summarizes the stored candidate pool for recruiters.
type Statistics struct {
	TotalCandidates        int            `json:"total_candidates"`
	PopularTechnologies    []TechCount    `json:"popular_technologies"`
	ExperienceDistribution map[string]int `json:"experience_distribution"`
}

type TechCount struct {
	Technology string `json:"technology"`
	Count      int    `json:"count"`
}

// Stats aggregates the candidate pool: technology mentions (top ten) and
// experience bands. Band boundaries match question difficulty selection.
func Stats(records []candidate.Record) Statistics {
	stats := Statistics{
		TotalCandidates:     len(records),
		PopularTechnologies: []TechCount{},
		ExperienceDistribution: map[string]int{
			"Junior":    0,
			"Mid-level": 0,
			"Senior":    0,
		},
	}

	counts := make(map[string]int)
	for _, r := range records {
		for _, tech := range splitTechs(r.TechStack) {
			counts[strings.ToLower(tech)]++
		}

		years, err := strconv.ParseFloat(strings.TrimSpace(r.ExperienceYears), 64)
		if err != nil {
			continue
		}
		switch {
		case years <= 2:
			stats.ExperienceDistribution["Junior"]++
		case years <= 5:
			stats.ExperienceDistribution["Mid-level"]++
		default:
			stats.ExperienceDistribution["Senior"]++
		}
	}

	for tech, count := range counts {
		stats.PopularTechnologies = append(stats.PopularTechnologies, TechCount{Technology: tech, Count: count})
	}
	sort.Slice(stats.PopularTechnologies, func(i, j int) bool {
		a, b := stats.PopularTechnologies[i], stats.PopularTechnologies[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Technology < b.Technology
	})
	if len(stats.PopularTechnologies) > 10 {
		stats.PopularTechnologies = stats.PopularTechnologies[:10]
	}

	return stats
}

// FindByEmail returns all submissions for one candidate, case-insensitive.
func FindByEmail(records []candidate.Record, email string) []candidate.Record {
	target := strings.ToLower(strings.TrimSpace(email))
	if target == "" {
		return nil
	}

	var matches []candidate.Record
	for _, r := range records {
		if strings.ToLower(r.Email) == target {
			matches = append(matches, r)
		}
	}

	return matches
}

func splitTechs(stack string) []string {
	fields := strings.FieldsFunc(stack, func(r rune) bool {
		return r == ',' || r == ';'
	})

	var techs []string
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			techs = append(techs, f)
		}
	}

	return techs
}
