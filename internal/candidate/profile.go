package candidate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
)

// Profile aggregates everything collected during one screening interview.
// Fields are free text: empty means "not collected yet", non-empty means the
// value passed its field validator.
type Profile struct {
	FullName        string
	Email           string
	Phone           string
	ExperienceYears string
	DesiredPosition string
	Location        string
	TechStack       string

	// TechnicalQuestions is fixed once generated; TechnicalAnswers is
	// append-only and never longer than TechnicalQuestions.
	TechnicalQuestions []string
	TechnicalAnswers   []string

	SessionID string
	CreatedAt time.Time
}

// New creates an empty profile with its identity already assigned.
func New() *Profile {
	return &Profile{
		TechnicalQuestions: []string{},
		TechnicalAnswers:   []string{},
		SessionID:          uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
	}
}

// Complete reports whether every required contact/profile field is set.
func (p *Profile) Complete() bool {
	return p.FullName != "" &&
		p.Email != "" &&
		p.Phone != "" &&
		p.ExperienceYears != "" &&
		p.DesiredPosition != "" &&
		p.Location != "" &&
		p.TechStack != ""
}

// InterviewComplete reports whether every generated question has an answer.
func (p *Profile) InterviewComplete() bool {
	return len(p.TechnicalQuestions) > 0 &&
		len(p.TechnicalAnswers) == len(p.TechnicalQuestions)
}

// KeyTechnologies returns up to n meaningful tokens from the declared tech
// stack, splitting on commas and semicolons. Tokens shorter than three
// characters are skipped.
func (p *Profile) KeyTechnologies(n int) []string {
	if n <= 0 || p.TechStack == "" {
		return nil
	}

	normalized := strings.NewReplacer(",", " ", ";", " ").Replace(p.TechStack)

	var techs []string
	for _, token := range strings.Fields(normalized) {
		if len(token) <= 2 {
			continue
		}
		techs = append(techs, token)
		if len(techs) == n {
			break
		}
	}

	return techs
}

// Record is the flat storage shape of a profile, shared by every persistence
// backend and by the CSV export.
type Record struct {
	FullName           string   `json:"full_name" mapstructure:"full_name"`
	Email              string   `json:"email" mapstructure:"email"`
	Phone              string   `json:"phone" mapstructure:"phone"`
	ExperienceYears    string   `json:"experience_years" mapstructure:"experience_years"`
	DesiredPosition    string   `json:"desired_position" mapstructure:"desired_position"`
	Location           string   `json:"location" mapstructure:"location"`
	TechStack          string   `json:"tech_stack" mapstructure:"tech_stack"`
	TechnicalQuestions []string `json:"technical_questions" mapstructure:"technical_questions"`
	TechnicalAnswers   []string `json:"technical_answers" mapstructure:"technical_answers"`
	SessionID          string   `json:"session_id" mapstructure:"session_id"`
	CreatedAt          string   `json:"created_at" mapstructure:"created_at"`
}

// Record converts the profile into its flat storage shape.
func (p *Profile) Record() Record {
	return Record{
		FullName:           p.FullName,
		Email:              p.Email,
		Phone:              p.Phone,
		ExperienceYears:    p.ExperienceYears,
		DesiredPosition:    p.DesiredPosition,
		Location:           p.Location,
		TechStack:          p.TechStack,
		TechnicalQuestions: append([]string{}, p.TechnicalQuestions...),
		TechnicalAnswers:   append([]string{}, p.TechnicalAnswers...),
		SessionID:          p.SessionID,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
	}
}

// Profile reconstructs a profile from its stored record.
func (r Record) Profile() (*Profile, error) {
	createdAt := time.Time{}
	if r.CreatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", r.CreatedAt, err)
		}
		createdAt = parsed
	}

	return &Profile{
		FullName:           r.FullName,
		Email:              r.Email,
		Phone:              r.Phone,
		ExperienceYears:    r.ExperienceYears,
		DesiredPosition:    r.DesiredPosition,
		Location:           r.Location,
		TechStack:          r.TechStack,
		TechnicalQuestions: append([]string{}, r.TechnicalQuestions...),
		TechnicalAnswers:   append([]string{}, r.TechnicalAnswers...),
		SessionID:          r.SessionID,
		CreatedAt:          createdAt,
	}, nil
}

// DecodeRecords maps raw storage items onto typed records.
func DecodeRecords(items []map[string]any) ([]Record, error) {
	var records []Record

	cfg := &mapstructure.DecoderConfig{
		Result:  &records,
		TagName: "mapstructure",
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build record decoder: %w", err)
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode candidate records: %w", err)
	}

	return records, nil
}
