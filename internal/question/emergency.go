package question

import (
	"fmt"

	"github.com/google/uuid"
)

// template is one emergency question body. Content is fixed; only the
// generated id varies between runs.
type template struct {
	Prompt      string
	Options     []string
	Correct     string
	Explanation string
	Difficulty  Difficulty
}

// emergencyBank holds locally synthesized questions per section type
// and category, used when the remote source is unavailable or returns
// too few valid items.
var emergencyBank = map[SectionType]map[string][]template{
	SectionAptitude: {
		"quantitative": {
			{
				Prompt:      "What is 15% of 240?",
				Options:     []string{"30", "32", "36", "40"},
				Correct:     "36",
				Explanation: "15% of 240 = 0.15 × 240 = 36.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "A train travels 180 km in 2.5 hours. What is its average speed?",
				Options:     []string{"68 km/h", "70 km/h", "72 km/h", "75 km/h"},
				Correct:     "72 km/h",
				Explanation: "Speed = distance ÷ time = 180 ÷ 2.5 = 72 km/h.",
				Difficulty:  DifficultyMedium,
			},
		},
		"logical-reasoning": {
			{
				Prompt:      "Complete the series: 2, 6, 12, 20, 30, ?",
				Options:     []string{"40", "42", "44", "46"},
				Correct:     "42",
				Explanation: "Differences grow by 2 each step: 4, 6, 8, 10, 12, so 30 + 12 = 42.",
				Difficulty:  DifficultyMedium,
			},
			{
				Prompt:      "All roses are flowers. Some flowers fade quickly. Which conclusion follows?",
				Options:     []string{"All roses fade quickly", "Some roses may fade quickly", "No roses fade quickly", "All flowers are roses"},
				Correct:     "Some roses may fade quickly",
				Explanation: "The premises only permit a possibility, not a certainty, about roses fading.",
				Difficulty:  DifficultyMedium,
			},
		},
		"verbal": {
			{
				Prompt:      "Choose the word closest in meaning to \"meticulous\".",
				Options:     []string{"Careless", "Thorough", "Rapid", "Vague"},
				Correct:     "Thorough",
				Explanation: "Meticulous means showing great attention to detail.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "Pick the correctly punctuated sentence.",
				Options:     []string{"Its going to rain today.", "It's going to rain today.", "Its' going to rain today.", "It going to rain, today."},
				Correct:     "It's going to rain today.",
				Explanation: "\"It's\" is the contraction of \"it is\".",
				Difficulty:  DifficultyEasy,
			},
		},
		"data-interpretation": {
			{
				Prompt:      "A store's sales were 120, 150, and 180 units over three months. What was the average monthly sale?",
				Options:     []string{"140", "145", "150", "155"},
				Correct:     "150",
				Explanation: "(120 + 150 + 180) ÷ 3 = 450 ÷ 3 = 150.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "If a quantity rises from 80 to 100, what is the percentage increase?",
				Options:     []string{"20%", "25%", "27.5%", "30%"},
				Correct:     "25%",
				Explanation: "Increase of 20 on a base of 80 is 20/80 = 25%.",
				Difficulty:  DifficultyMedium,
			},
		},
	},
	SectionProgramming: {
		"fundamentals": {
			{
				Prompt:      "What does a variable's scope determine?",
				Options:     []string{"Its memory address", "Where it can be accessed", "Its data type", "Its initial value"},
				Correct:     "Where it can be accessed",
				Explanation: "Scope defines the region of the program in which a name is visible.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "Which of these is a value type rather than a reference in most languages?",
				Options:     []string{"An integer", "An object instance", "An array", "A map"},
				Correct:     "An integer",
				Explanation: "Primitive numerics are typically copied by value.",
				Difficulty:  DifficultyMedium,
			},
		},
		"data-structures": {
			{
				Prompt:      "Which data structure serves elements in last-in, first-out order?",
				Options:     []string{"Queue", "Stack", "Heap", "Linked list"},
				Correct:     "Stack",
				Explanation: "A stack pushes and pops from the same end, giving LIFO order.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "What is the average lookup cost in a well-sized hash table?",
				Options:     []string{"O(1)", "O(log n)", "O(n)", "O(n log n)"},
				Correct:     "O(1)",
				Explanation: "With a good hash and load factor, lookups touch a constant number of slots.",
				Difficulty:  DifficultyMedium,
			},
		},
		"algorithms": {
			{
				Prompt:      "Binary search requires its input to be:",
				Options:     []string{"Sorted", "Unique", "Numeric", "Balanced"},
				Correct:     "Sorted",
				Explanation: "Halving the search space only works when order is established.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "Which sorting approach is typically fastest on average for large random data?",
				Options:     []string{"Bubble sort", "Insertion sort", "Quicksort", "Selection sort"},
				Correct:     "Quicksort",
				Explanation: "Quicksort averages O(n log n) with small constants.",
				Difficulty:  DifficultyMedium,
			},
		},
		"debugging": {
			{
				Prompt:      "A program crashes only with certain inputs. What is the most systematic first step?",
				Options:     []string{"Rewrite the module", "Reduce the input to a minimal failing case", "Add random delays", "Disable error messages"},
				Correct:     "Reduce the input to a minimal failing case",
				Explanation: "A minimal reproduction isolates the faulty path before any fix.",
				Difficulty:  DifficultyMedium,
			},
			{
				Prompt:      "An off-by-one error most commonly appears in:",
				Options:     []string{"Loop boundaries", "Variable naming", "Comment formatting", "Import order"},
				Correct:     "Loop boundaries",
				Explanation: "Iterating one step too far or short is the classic off-by-one.",
				Difficulty:  DifficultyEasy,
			},
		},
		"complexity": {
			{
				Prompt:      "Doubling the input size of an O(n²) algorithm multiplies its work by roughly:",
				Options:     []string{"2", "4", "8", "16"},
				Correct:     "4",
				Explanation: "(2n)² = 4n².",
				Difficulty:  DifficultyMedium,
			},
			{
				Prompt:      "Which growth rate is slowest for large n?",
				Options:     []string{"O(n)", "O(n log n)", "O(log n)", "O(n²)"},
				Correct:     "O(log n)",
				Explanation: "Logarithmic growth is flatter than linear and polynomial growth.",
				Difficulty:  DifficultyEasy,
			},
		},
	},
	SectionEmployability: {
		"communication": {
			{
				Prompt:      "A teammate misunderstood your written update. What is the best response?",
				Options:     []string{"Repeat the same message", "Clarify with a short conversation", "Escalate to a manager", "Ignore the confusion"},
				Correct:     "Clarify with a short conversation",
				Explanation: "Switching channels and confirming understanding resolves ambiguity fastest.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "When presenting to a non-technical audience, you should:",
				Options:     []string{"Use as much jargon as possible", "Lead with outcomes and plain language", "Skip questions", "Read slides verbatim"},
				Correct:     "Lead with outcomes and plain language",
				Explanation: "Audiences retain outcomes framed in their own vocabulary.",
				Difficulty:  DifficultyEasy,
			},
		},
		"teamwork": {
			{
				Prompt:      "Two team members disagree on an approach before a deadline. The most constructive move is to:",
				Options:     []string{"Let the louder person win", "Time-box a comparison against shared criteria", "Postpone the decision indefinitely", "Split the team"},
				Correct:     "Time-box a comparison against shared criteria",
				Explanation: "Objective criteria and a time limit turn conflict into a decision.",
				Difficulty:  DifficultyMedium,
			},
			{
				Prompt:      "A new member is struggling to contribute. A strong teammate would first:",
				Options:     []string{"Report them", "Pair with them on a small task", "Take over their work", "Wait for them to ask"},
				Correct:     "Pair with them on a small task",
				Explanation: "Low-stakes pairing builds context and confidence quickly.",
				Difficulty:  DifficultyEasy,
			},
		},
		"problem-solving": {
			{
				Prompt:      "Faced with a large ambiguous problem, the best first step is to:",
				Options:     []string{"Start coding immediately", "Break it into smaller, testable parts", "Ask someone else to solve it", "Pick the first idea that comes to mind"},
				Correct:     "Break it into smaller, testable parts",
				Explanation: "Decomposition exposes the real constraints before committing effort.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "Your chosen solution fails a key constraint late in the project. You should:",
				Options:     []string{"Hide the issue", "Re-evaluate alternatives against the constraint", "Blame the requirements", "Ship it anyway"},
				Correct:     "Re-evaluate alternatives against the constraint",
				Explanation: "Constraints are non-negotiable; the solution, not the constraint, must move.",
				Difficulty:  DifficultyMedium,
			},
		},
		"time-management": {
			{
				Prompt:      "You have three tasks due today and one is blocking a colleague. Which goes first?",
				Options:     []string{"The easiest one", "The blocking one", "The longest one", "The newest one"},
				Correct:     "The blocking one",
				Explanation: "Unblocking others multiplies total team throughput.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "Which habit most reliably prevents deadline surprises?",
				Options:     []string{"Working longer hours", "Raising risks as soon as they appear", "Keeping estimates private", "Starting everything at once"},
				Correct:     "Raising risks as soon as they appear",
				Explanation: "Early signals leave time to re-plan; late heroics do not.",
				Difficulty:  DifficultyMedium,
			},
		},
		"adaptability": {
			{
				Prompt:      "Mid-project, the requirements change significantly. The most adaptable response is to:",
				Options:     []string{"Insist on the original plan", "Reassess priorities and adjust the plan", "Stop working until things settle", "Escalate every detail"},
				Correct:     "Reassess priorities and adjust the plan",
				Explanation: "Plans serve goals; when goals move, plans follow.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "You are assigned a tool you have never used. You should first:",
				Options:     []string{"Refuse the task", "Spend a bounded period learning the essentials", "Outsource it quietly", "Use the old tool anyway"},
				Correct:     "Spend a bounded period learning the essentials",
				Explanation: "A time-boxed ramp-up balances learning against delivery.",
				Difficulty:  DifficultyMedium,
			},
		},
		"professionalism": {
			{
				Prompt:      "You discover a mistake in work you already delivered. The professional response is to:",
				Options:     []string{"Wait to see if anyone notices", "Disclose it and propose a fix", "Delete the evidence", "Shift attention elsewhere"},
				Correct:     "Disclose it and propose a fix",
				Explanation: "Owning errors early preserves trust and limits damage.",
				Difficulty:  DifficultyEasy,
			},
			{
				Prompt:      "A client sends a frustrated message about a delay. You should:",
				Options:     []string{"Respond in kind", "Acknowledge, explain, and give a revised date", "Forward it without comment", "Ignore it until resolved"},
				Correct:     "Acknowledge, explain, and give a revised date",
				Explanation: "Acknowledgement plus a concrete commitment de-escalates.",
				Difficulty:  DifficultyMedium,
			},
		},
	},
}

// GenerateEmergency synthesizes count questions for the section type.
// When category is non-empty, all questions come from that category;
// otherwise categories are cycled in vocabulary order, each covered
// once before any repeats. Content is deterministic; only the ids
// carry a random suffix for uniqueness. Never returns fewer than count.
func GenerateEmergency(sectionType SectionType, count int, category string) []Question {
	if count <= 0 {
		return nil
	}

	bank := emergencyBank[sectionType]
	if bank == nil {
		// Unknown section type: fall back to the employability bank so
		// the caller still gets a full set.
		sectionType = SectionEmployability
		bank = emergencyBank[sectionType]
	}

	cats := categoryCycle(sectionType, category, bank)

	out := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		cat := cats[i%len(cats)]
		templates := bank[cat]
		tpl := templates[(i/len(cats))%len(templates)]

		out = append(out, Question{
			ID:            fmt.Sprintf("emg-%s-%d-%s", sectionType, i, shortSuffix()),
			Kind:          KindMCQ,
			Prompt:        tpl.Prompt,
			Options:       append([]string(nil), tpl.Options...),
			CorrectAnswer: tpl.Correct,
			Explanation:   tpl.Explanation,
			Difficulty:    tpl.Difficulty,
			Category:      cat,
		})
	}
	return out
}

// categoryCycle returns the ordered list of categories to draw from.
func categoryCycle(sectionType SectionType, category string, bank map[string][]template) []string {
	if category != "" {
		if _, ok := bank[category]; ok {
			return []string{category}
		}
	}
	var cats []string
	for _, c := range vocabularies[sectionType].Categories {
		if _, ok := bank[c.ID]; ok {
			cats = append(cats, c.ID)
		}
	}
	return cats
}

func shortSuffix() string {
	return uuid.NewString()[:8]
}
