package matching

import "strings"

// TutorAttributes is the slice of a tutor profile the engine needs.
// Empty fields switch the corresponding rule off (fail-open), so tutors
// with incomplete profiles still see the full requirement pool.
type TutorAttributes struct {
	Subjects []string
	City     string
	Area     string
}

// Candidate is the requirement side of the predicate.
type Candidate struct {
	Subject  string
	Location string
}

// Matches reports whether a requirement is relevant to a tutor. Acceptance
// is the conjunction of the subject rule and the location rule; either rule
// is vacuously true when its inputs are absent.
func Matches(tutor TutorAttributes, c Candidate) bool {
	return subjectRule(tutor.Subjects, c.Subject) && locationRule(tutor.City, tutor.Area, c.Location)
}

// subjectRule accepts when any tutor subject and the requirement subject
// contain each other, case-folded, in either direction. A tutor with no
// subjects skips the rule entirely. A requirement with an empty subject is
// rejected when the tutor does filter by subject: "" is a substring of
// everything, which would otherwise turn a blank field into a wildcard.
func subjectRule(tutorSubjects []string, reqSubject string) bool {
	subjects := normalizeAll(tutorSubjects)
	if len(subjects) == 0 {
		return true
	}

	req := fold(reqSubject)
	if req == "" {
		return false
	}

	for _, s := range subjects {
		if strings.Contains(s, req) || strings.Contains(req, s) {
			return true
		}
	}
	return false
}

// locationRule accepts when tutor city and requirement location contain each
// other in either direction, or the tutor area is contained in the
// requirement location. Either side missing skips the rule.
func locationRule(tutorCity, tutorArea, reqLocation string) bool {
	city := fold(tutorCity)
	loc := fold(reqLocation)
	if city == "" || loc == "" {
		return true
	}

	if strings.Contains(loc, city) || strings.Contains(city, loc) {
		return true
	}

	if area := fold(tutorArea); area != "" && strings.Contains(loc, area) {
		return true
	}
	return false
}

// SubjectPrecheck is the cheap gate used by the realtime feed before a full
// reload: it is exactly the subject rule, with location ignored.
func SubjectPrecheck(tutorSubjects []string, reqSubject string) bool {
	return subjectRule(tutorSubjects, reqSubject)
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}
