package scoring

import "github.com/ahrav/go-paddock/internal/domain"

// scoreChoice handles single_choice and text. Textarea answers are free
// form and never score. The all-podiums special case overrides ordinary
// matching whenever the actual answer is the bonus value.
func scoreChoice(q *domain.ChoiceQuestion, predicted, actual domain.Answer) float64 {
	if q.Kind == domain.TypeTextarea {
		return 0
	}
	if q.SpecialCase == domain.SpecialCaseAllPodiumsBonus {
		if got, ok := domain.ScalarString(actual); ok && got == q.BonusValue {
			want, _ := domain.ScalarString(predicted)
			return award(want == q.BonusValue, q.BonusPoints)
		}
	}
	return award(matches(actual, predicted), q.Points)
}

// scoreNumeric compares by numeric value, so "7" and "7.0" match.
func scoreNumeric(q *domain.NumericQuestion, predicted, actual domain.Answer) float64 {
	want, ok := domain.ScalarNumber(predicted)
	if !ok {
		return 0
	}
	got, ok := domain.ScalarNumber(actual)
	if !ok {
		return 0
	}
	return award(got == want, q.Points)
}
