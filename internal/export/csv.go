// Package export renders stored candidate records for recruiters.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

var baseColumns = []string{
	"full_name",
	"email",
	"phone",
	"experience_years",
	"desired_position",
	"location",
	"tech_stack",
	"created_at",
	"session_id",
}

// WriteCSV writes all records as one CSV document. Question and answer
// columns are padded to the widest record so every row has the same width;
// records with fewer pairs leave the extra cells blank.
func WriteCSV(w io.Writer, records []candidate.Record) error {
	maxPairs := 0
	for _, r := range records {
		if n := len(r.TechnicalQuestions); n > maxPairs {
			maxPairs = n
		}
		if n := len(r.TechnicalAnswers); n > maxPairs {
			maxPairs = n
		}
	}

	header := make([]string, 0, len(baseColumns)+2*maxPairs)
	header = append(header, baseColumns...)
	for i := 1; i <= maxPairs; i++ {
		header = append(header, fmt.Sprintf("question_%d", i), fmt.Sprintf("answer_%d", i))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			r.FullName, r.Email, r.Phone, r.ExperienceYears,
			r.DesiredPosition, r.Location, r.TechStack,
			r.CreatedAt, r.SessionID,
		)
		for i := 0; i < maxPairs; i++ {
			row = append(row, at(r.TechnicalQuestions, i), at(r.TechnicalAnswers, i))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
