package question

import "testing"

func TestGenerateEmergency_ExactCount(t *testing.T) {
	for _, n := range []int{1, 4, 10, 25} {
		qs := GenerateEmergency(SectionAptitude, n, "")
		if len(qs) != n {
			t.Errorf("GenerateEmergency(aptitude, %d) returned %d questions", n, len(qs))
		}
	}
}

func TestGenerateEmergency_AllValidatorPassing(t *testing.T) {
	for _, st := range []SectionType{SectionAptitude, SectionProgramming, SectionEmployability} {
		qs := GenerateEmergency(st, 12, "")
		for i, q := range qs {
			res := Validate(q, st)
			if !res.Accepted {
				t.Errorf("%s question %d rejected: %s (prompt %q)", st, i, res.Reason, q.Prompt)
			}
		}
	}
}

func TestGenerateEmergency_CoversEveryCategoryBeforeRepeating(t *testing.T) {
	cats := CategoriesFor(SectionEmployability)
	qs := GenerateEmergency(SectionEmployability, len(cats), "")

	seen := make(map[string]bool)
	for _, q := range qs {
		seen[q.Category] = true
	}
	for _, c := range cats {
		if !seen[c.ID] {
			t.Errorf("category %q not covered in first %d questions", c.ID, len(cats))
		}
	}
}

func TestGenerateEmergency_FixedCategory(t *testing.T) {
	qs := GenerateEmergency(SectionEmployability, 6, "teamwork")
	for _, q := range qs {
		if q.Category != "teamwork" {
			t.Errorf("Category = %q, want teamwork", q.Category)
		}
	}
}

func TestGenerateEmergency_UnknownCategoryFallsBackToCycle(t *testing.T) {
	qs := GenerateEmergency(SectionAptitude, 4, "astrology")
	if len(qs) != 4 {
		t.Fatalf("got %d questions, want 4", len(qs))
	}
	for _, q := range qs {
		if !InVocabulary(SectionAptitude, q.Category) {
			t.Errorf("category %q outside the aptitude vocabulary", q.Category)
		}
	}
}

func TestGenerateEmergency_UniqueIDs(t *testing.T) {
	qs := GenerateEmergency(SectionProgramming, 20, "")
	ids := make(map[string]bool)
	for _, q := range qs {
		if ids[q.ID] {
			t.Errorf("duplicate id %q", q.ID)
		}
		ids[q.ID] = true
	}
}

func TestGenerateEmergency_DeterministicContent(t *testing.T) {
	a := GenerateEmergency(SectionAptitude, 8, "")
	b := GenerateEmergency(SectionAptitude, 8, "")
	for i := range a {
		if a[i].Prompt != b[i].Prompt || a[i].CorrectAnswer != b[i].CorrectAnswer {
			t.Errorf("question %d content differs between runs", i)
		}
	}
}
