package candidate

import (
	"regexp"
	"strconv"
	"strings"
)

// Keyword vocabularies for the tech-stack plausibility heuristic. Both lists
// are intentionally incomplete: the check only drives a corrective re-prompt
// and must never hard-block input it cannot recognize.
var (
	roleKeywords = []string{
		"developer", "engineer", "scientist", "analyst", "manager",
		"lead", "senior", "junior", "intern", "architect", "consultant",
		"specialist", "coordinator", "director", "administrator",
		"frontend", "backend", "fullstack", "full stack", "full-stack",
		"software", "web", "mobile", "data", "machine learning", "ml",
		"devops", "qa", "quality assurance", "tester", "scrum master",
	}

	techKeywords = []string{
		"python", "javascript", "java", "c++", "c#", "react", "angular",
		"vue", "node", "django", "flask", "spring", "sql", "mongodb",
		"postgresql", "mysql", "redis", "aws", "azure", "docker",
		"kubernetes", "git", "html", "css", "typescript", "php",
		"ruby", "go", "rust", "swift", "kotlin", "flutter", "xamarin",
		"tensorflow", "pytorch", "pandas", "numpy", "scikit", "api",
		"rest", "graphql", "microservices", "linux", "windows", "macos",
	}
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail checks the localpart@domain.tld shape: ASCII local part, at
// least one dot in the domain, a TLD of two or more letters.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidPhone strips common separators and accepts 10 to 15 digits.
func ValidPhone(phone string) bool {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', '(', ')', ' ':
			return -1
		}
		return r
	}, phone)

	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// ValidExperienceYears accepts any number in [0, 50], fractional included.
func ValidExperienceYears(years string) bool {
	value, err := strconv.ParseFloat(strings.TrimSpace(years), 64)
	if err != nil {
		return false
	}
	return value >= 0 && value <= 50
}

// Sanitize strips characters unsafe for storage and trims whitespace.
// Idempotent: sanitizing twice yields the same result.
func Sanitize(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(cleaned)
}

// LooksLikeRole flags short inputs that name a job role instead of a tech
// stack: at least one role keyword, zero recognized technologies, five words
// or fewer. Ambiguous input passes through.
func LooksLikeRole(techStack string) bool {
	lower := strings.ToLower(techStack)

	if len(strings.Fields(techStack)) > 5 {
		return false
	}

	for _, keyword := range techKeywords {
		if strings.Contains(lower, keyword) {
			return false
		}
	}

	for _, keyword := range roleKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return false
}

// ValidateForSave checks the minimum required to persist a profile: an
// identity (name and valid email), plus format checks on whatever optional
// fields were collected. Interviews that end early still produce a savable
// profile.
func ValidateForSave(p *Profile) map[string][]string {
	errs := make(map[string][]string)

	if len(strings.TrimSpace(p.FullName)) < 2 {
		errs["full_name"] = append(errs["full_name"], "full name is required (minimum 2 characters)")
	}

	switch {
	case p.Email == "":
		errs["email"] = append(errs["email"], "email address is required")
	case !ValidEmail(p.Email):
		errs["email"] = append(errs["email"], "email address is not valid")
	}

	if p.Phone != "" && !ValidPhone(p.Phone) {
		errs["phone"] = append(errs["phone"], "phone number is not valid")
	}

	if p.ExperienceYears != "" && !ValidExperienceYears(p.ExperienceYears) {
		errs["experience_years"] = append(errs["experience_years"], "years of experience must be a number between 0 and 50")
	}

	return errs
}

// Validate checks a full profile before persistence and returns per-field
// error messages, keyed by the record field name. An empty map means valid.
func Validate(p *Profile) map[string][]string {
	errs := make(map[string][]string)

	if len(strings.TrimSpace(p.FullName)) < 2 {
		errs["full_name"] = append(errs["full_name"], "full name is required (minimum 2 characters)")
	}

	switch {
	case p.Email == "":
		errs["email"] = append(errs["email"], "email address is required")
	case !ValidEmail(p.Email):
		errs["email"] = append(errs["email"], "email address is not valid")
	}

	switch {
	case p.Phone == "":
		errs["phone"] = append(errs["phone"], "phone number is required")
	case !ValidPhone(p.Phone):
		errs["phone"] = append(errs["phone"], "phone number is not valid")
	}

	switch {
	case p.ExperienceYears == "":
		errs["experience_years"] = append(errs["experience_years"], "years of experience is required")
	case !ValidExperienceYears(p.ExperienceYears):
		errs["experience_years"] = append(errs["experience_years"], "years of experience must be a number between 0 and 50")
	}

	if len(strings.TrimSpace(p.DesiredPosition)) < 2 {
		errs["desired_position"] = append(errs["desired_position"], "desired position must be specified")
	}

	if len(strings.TrimSpace(p.Location)) < 2 {
		errs["location"] = append(errs["location"], "location must be specified")
	}

	if len(strings.TrimSpace(p.TechStack)) < 3 {
		errs["tech_stack"] = append(errs["tech_stack"], "technical skills and tools must be specified")
	}

	return errs
}
