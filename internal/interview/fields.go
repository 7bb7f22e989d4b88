package interview

import (
	"fmt"

	"github.com/talentscout/hiring-assistant/internal/candidate"
)

// Field enumerates the required profile attributes collected during the
// info-gathering stage. The enum replaces the original's string-keyed
// dispatch so the compiler can check exhaustiveness.
type Field int

const (
	FieldFullName Field = iota
	FieldEmail
	FieldPhone
	FieldExperienceYears
	FieldDesiredPosition
	FieldLocation
	FieldTechStack
)

// requiredFields fixes the collection order.
var requiredFields = []Field{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldExperienceYears,
	FieldDesiredPosition,
	FieldLocation,
	FieldTechStack,
}

func (f Field) Key() string {
	switch f {
	case FieldFullName:
		return "full_name"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "phone"
	case FieldExperienceYears:
		return "experience_years"
	case FieldDesiredPosition:
		return "desired_position"
	case FieldLocation:
		return "location"
	case FieldTechStack:
		return "tech_stack"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Prompt returns the user-facing question for the field, with format examples.
func (f Field) Prompt() string {
	switch f {
	case FieldFullName:
		return "What's your full name? (e.g., John Smith)"
	case FieldEmail:
		return "What's your email address? (e.g., john.smith@email.com)"
	case FieldPhone:
		return "What's your phone number? (e.g., 5551234567 or 555-123-4567 890)"
	case FieldExperienceYears:
		return "How many years of professional experience do you have? (e.g., 3, 5.5, or 0 for entry level)"
	case FieldDesiredPosition:
		return "What position(s) are you interested in? Please be specific with the role and technology focus. (e.g., 'Senior Backend Engineer - Python', 'Data Scientist - Machine Learning', 'Frontend Developer - React')"
	case FieldLocation:
		return "What's your current location? (e.g., San Francisco, CA or New York, NY or Remote)"
	case FieldTechStack:
		return "Please list your technical skills including programming languages, frameworks, databases, and tools you're proficient with. (e.g., 'Python, Django, PostgreSQL, React, Docker, AWS' or 'JavaScript, Node.js, MongoDB, Express, Git')"
	}
	return "Could you please provide that information?"
}

func fieldValue(p *candidate.Profile, f Field) string {
	switch f {
	case FieldFullName:
		return p.FullName
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	case FieldExperienceYears:
		return p.ExperienceYears
	case FieldDesiredPosition:
		return p.DesiredPosition
	case FieldLocation:
		return p.Location
	case FieldTechStack:
		return p.TechStack
	}
	return ""
}

// nextUnsetField walks the fixed order and returns the first field without a
// value. The second result is false once every required field is set.
func nextUnsetField(p *candidate.Profile) (Field, bool) {
	for _, f := range requiredFields {
		if fieldValue(p, f) == "" {
			return f, true
		}
	}
	return 0, false
}

// acceptField validates sanitized input for the field and stores it on
// success. The returned message either acknowledges the value or explains why
// it was rejected.
func acceptField(p *candidate.Profile, f Field, input string) (string, bool) {
	switch f {
	case FieldFullName:
		if len(input) < 2 {
			return "Please provide your full name (at least 2 characters).", false
		}
		p.FullName = input
		return fmt.Sprintf("Nice to meet you, %s!", input), true

	case FieldEmail:
		if !candidate.ValidEmail(input) {
			return "Please provide a valid email address (e.g., name@example.com).", false
		}
		p.Email = input
		return "Great! I've recorded your email address.", true

	case FieldPhone:
		if !candidate.ValidPhone(input) {
			return "Please provide a valid phone number (10-15 digits).", false
		}
		p.Phone = input
		return "Thank you for providing your phone number.", true

	case FieldExperienceYears:
		if !candidate.ValidExperienceYears(input) {
			return "Please provide a valid number of years (0-50).", false
		}
		p.ExperienceYears = input
		return fmt.Sprintf("Got it! %s years of experience.", input), true

	case FieldDesiredPosition:
		if len(input) < 2 {
			return "Please specify the position you're interested in.", false
		}
		p.DesiredPosition = input
		return fmt.Sprintf("Excellent! Looking for %s positions.", input), true

	case FieldLocation:
		if len(input) < 2 {
			return "Please provide your current location.", false
		}
		p.Location = input
		return fmt.Sprintf("Perfect! Located in %s.", input), true

	case FieldTechStack:
		if len(input) < 3 {
			return "Please provide more details about your technical skills and tools.", false
		}
		if candidate.LooksLikeRole(input) {
			return "It looks like you might have entered a job role instead of technical skills. Please list your actual technical skills like programming languages, frameworks, databases, and tools you work with.\n\n" +
				"For example: 'Python, Django, PostgreSQL, React, Docker, AWS' rather than 'Backend Developer' or 'Full Stack Engineer'.", false
		}
		p.TechStack = input
		return "Excellent! I've recorded your technical skills.", true
	}

	return "I didn't understand that. Could you please try again?", false
}
