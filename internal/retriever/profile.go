package retriever

import "strings"

// Profile describes the student asking the question. Every field is
// optional.
type Profile struct {
	Major            string
	ClassYear        string
	Semester         string
	CurrentCourses   []string
	CompletedCourses []string
}

// Summary renders the profile as a deterministic one-line string used to
// bias the query embedding toward profile-relevant content. Only
// populated fields appear, in a fixed order.
func (p *Profile) Summary() string {
	if p == nil {
		return ""
	}

	var parts []string
	if p.Major != "" {
		parts = append(parts, "Major: "+p.Major)
	}
	if p.ClassYear != "" {
		parts = append(parts, "Class year: "+p.ClassYear)
	}
	if p.Semester != "" {
		parts = append(parts, "Current/target semester: "+p.Semester)
	}
	if len(p.CurrentCourses) > 0 {
		parts = append(parts, "Current courses: "+strings.Join(p.CurrentCourses, ", "))
	}
	if len(p.CompletedCourses) > 0 {
		parts = append(parts, "Completed / prereq courses: "+strings.Join(p.CompletedCourses, ", "))
	}
	return strings.Join(parts, " | ")
}
