package question

// Vocabulary is the closed category set for one section type, plus the
// default category assigned when a question arrives with a missing or
// unrecognized tag.
type Vocabulary struct {
	Categories []Category
	Default    string
}

// vocabularies is the data-driven category table, one closed set per
// section type.
var vocabularies = map[SectionType]Vocabulary{
	SectionAptitude: {
		Categories: []Category{
			{ID: "quantitative", Name: "Quantitative Aptitude"},
			{ID: "logical-reasoning", Name: "Logical Reasoning"},
			{ID: "verbal", Name: "Verbal Ability"},
			{ID: "data-interpretation", Name: "Data Interpretation"},
		},
		Default: "logical-reasoning",
	},
	SectionProgramming: {
		Categories: []Category{
			{ID: "fundamentals", Name: "Language Fundamentals"},
			{ID: "data-structures", Name: "Data Structures"},
			{ID: "algorithms", Name: "Algorithms"},
			{ID: "debugging", Name: "Debugging"},
			{ID: "complexity", Name: "Complexity Analysis"},
		},
		Default: "fundamentals",
	},
	SectionEmployability: {
		Categories: []Category{
			{ID: "communication", Name: "Communication"},
			{ID: "teamwork", Name: "Teamwork"},
			{ID: "problem-solving", Name: "Problem Solving"},
			{ID: "time-management", Name: "Time Management"},
			{ID: "adaptability", Name: "Adaptability"},
			{ID: "professionalism", Name: "Professionalism"},
		},
		Default: "problem-solving",
	},
}

// VocabularyFor returns the category vocabulary for the given section
// type. Unknown section types get an empty vocabulary.
func VocabularyFor(t SectionType) Vocabulary {
	return vocabularies[t]
}

// CategoriesFor returns the ordered category list for a section type.
func CategoriesFor(t SectionType) []Category {
	v := vocabularies[t]
	out := make([]Category, len(v.Categories))
	copy(out, v.Categories)
	return out
}

// DefaultCategory returns the repair category for a section type.
func DefaultCategory(t SectionType) string {
	return vocabularies[t].Default
}

// InVocabulary reports whether category is a member of the section
// type's closed set.
func InVocabulary(t SectionType, category string) bool {
	for _, c := range vocabularies[t].Categories {
		if c.ID == category {
			return true
		}
	}
	return false
}
