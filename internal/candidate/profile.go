// Package candidate holds the candidate profile carried through
// question personalization and report generation.
package candidate

// Profile describes the candidate taking the assessment. The engine
// treats it as opaque context: it is forwarded to question sources for
// personalization and to the report source, never interpreted beyond
// the ID.
type Profile struct {
	ID              string   `json:"id"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	ExperienceLevel string   `json:"experienceLevel,omitempty"` // fresher | junior | mid | senior
	TargetRole      string   `json:"targetRole,omitempty"`
	Skills          []string `json:"skills,omitempty"`
}

// Anonymous returns a minimal profile for sessions without a known
// candidate. The engine itself requires only a stable ID.
func Anonymous(id string) Profile {
	return Profile{ID: id}
}
