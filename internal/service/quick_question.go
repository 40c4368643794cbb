package service

import "github.com/arrahchii/portfolio-sub000/internal/profile"

// DefaultQuickQuestionFallback is returned for quick questions outside the table.
const DefaultQuickQuestionFallback = "I'd be happy to help with that! Feel free to ask me anything " +
	"about my projects, skills or experience, or use the Contact tab to reach me directly."

// QuickQuestionResolver maps the UI's canned questions to their answers.
type QuickQuestionResolver struct {
	questions []string
	answers   map[string]string
	fallback  string
}

// NewQuickQuestionResolver builds the lookup table from the profile. An empty
// fallback uses DefaultQuickQuestionFallback.
func NewQuickQuestionResolver(p profile.Profile, fallback string) *QuickQuestionResolver {
	if fallback == "" {
		fallback = DefaultQuickQuestionFallback
	}
	r := &QuickQuestionResolver{
		questions: make([]string, 0, len(p.QuickQuestions)),
		answers:   make(map[string]string, len(p.QuickQuestions)),
		fallback:  fallback,
	}
	for _, q := range p.QuickQuestions {
		if _, dup := r.answers[q.Question]; !dup {
			r.questions = append(r.questions, q.Question)
		}
		r.answers[q.Question] = q.Answer
	}
	return r
}

// Resolve returns the canned answer for an exact question match, otherwise the fallback.
func (r *QuickQuestionResolver) Resolve(question string) string {
	if answer, ok := r.answers[question]; ok {
		return answer
	}
	return r.fallback
}

// Questions lists the offered questions in table order.
func (r *QuickQuestionResolver) Questions() []string {
	return append([]string(nil), r.questions...)
}
