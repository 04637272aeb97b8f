package application

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/ahrav/go-paddock/internal/domain"
)

// maxSuggestionDistance bounds how different a typo may be from a known
// name and still be suggested.
const maxSuggestionDistance = 3

// QuestionFactory builds a question variant from its catalog entry. base
// carries the id, prompt and resolved options; points is already checked
// against the type's expected shape.
type QuestionFactory func(cfg QuestionConfig, base domain.Base, points Points) (domain.Question, error)

// QuestionRegistry maps question type tags to factories. Unregistered types
// build an UnknownQuestion, which scores zero.
type QuestionRegistry struct {
	// factories maps type tags to their factory functions.
	factories map[domain.QuestionType]QuestionFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewQuestionRegistry creates a registry with every built-in type registered.
func NewQuestionRegistry() *QuestionRegistry {
	r := &QuestionRegistry{factories: make(map[domain.QuestionType]QuestionFactory)}
	r.registerBuiltinFactories()
	return r
}

func (r *QuestionRegistry) registerBuiltinFactories() {
	r.factories[domain.TypeRanking] = buildRanking
	choice := func(kind domain.QuestionType) QuestionFactory {
		return func(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
			return buildChoice(kind, cfg, base, p)
		}
	}
	r.factories[domain.TypeSingleChoice] = choice(domain.TypeSingleChoice)
	r.factories[domain.TypeText] = choice(domain.TypeText)
	r.factories[domain.TypeTextarea] = choice(domain.TypeTextarea)
	r.factories[domain.TypeBoolean] = func(_ QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
		return &domain.BooleanQuestion{Base: base, Points: p.Scalar}, nil
	}
	r.factories[domain.TypeMultiSelect] = buildMultiSelect
	r.factories[domain.TypeMultiSelectLimited] = func(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
		return &domain.LimitedSelectQuestion{Base: base, Count: cfg.Count, Points: p.Scalar}, nil
	}
	r.factories[domain.TypeTeammateBattle] = buildTeammateBattle
	r.factories[domain.TypeBooleanWithOptionalDriver] = func(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
		return &domain.BooleanDriverQuestion{Base: base, Points: p.Scalar, BonusPoints: cfg.BonusPoints}, nil
	}
	valueDriver := func(kind domain.QuestionType) QuestionFactory {
		return func(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
			return buildValueDriver(kind, cfg, base, p)
		}
	}
	r.factories[domain.TypeNumericWithDriver] = valueDriver(domain.TypeNumericWithDriver)
	r.factories[domain.TypeSingleChoiceWithDriver] = valueDriver(domain.TypeSingleChoiceWithDriver)
	r.factories[domain.TypeNumeric] = func(_ QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
		return &domain.NumericQuestion{Base: base, Points: p.Scalar}, nil
	}
}

// Build creates the question for cfg. An unregistered type yields an
// UnknownQuestion and known is false.
func (r *QuestionRegistry) Build(cfg QuestionConfig, base domain.Base, points Points) (q domain.Question, known bool, err error) {
	r.mu.RLock()
	factory, exists := r.factories[domain.QuestionType(cfg.Type)]
	r.mu.RUnlock()

	if !exists {
		return &domain.UnknownQuestion{Base: base, RawType: cfg.Type}, false, nil
	}

	q, err = factory(cfg, base, points)
	if err != nil {
		return nil, true, fmt.Errorf("failed to build question %s of type %s: %w", cfg.ID, cfg.Type, err)
	}
	return q, true, nil
}

// RegisterQuestionFactory registers or replaces the factory for a type.
func (r *QuestionRegistry) RegisterQuestionFactory(t domain.QuestionType, factory QuestionFactory) error {
	if t == "" {
		return fmt.Errorf("question type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[t] = factory
	return nil
}

// SupportedTypes returns the registered type tags in sorted order.
func (r *QuestionRegistry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}

// SuggestType returns the registered type closest to t, or "" when nothing
// is close enough.
func (r *QuestionRegistry) SuggestType(t string) string {
	return suggest(t, r.SupportedTypes())
}

// suggest returns the candidate with the smallest edit distance to word,
// preferring earlier candidates on ties.
func suggest(word string, candidates []string) string {
	best, bestDist := "", maxSuggestionDistance+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(word, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func buildRanking(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
	q := &domain.RankingQuestion{Base: base, Count: cfg.Count, Points: map[string]float64{}}
	allowed := make(map[string]bool, q.SlotCount())
	for i := 0; i < q.SlotCount(); i++ {
		allowed[domain.SlotLabel(i)] = true
	}
	for key, v := range p.Table {
		if !allowed[key] {
			return nil, fmt.Errorf("%w: points key %q does not name one of %d ranked slots",
				domain.ErrInvalidConfiguration, key, q.SlotCount())
		}
		q.Points[key] = v
	}
	return q, nil
}

func buildChoice(kind domain.QuestionType, cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
	if cfg.SpecialCase == domain.SpecialCaseAllPodiumsBonus && cfg.BonusValue == "" {
		return nil, fmt.Errorf("%w: special_case %s requires bonus_value",
			domain.ErrInvalidConfiguration, cfg.SpecialCase)
	}
	return &domain.ChoiceQuestion{
		Base:        base,
		Kind:        kind,
		Points:      p.Scalar,
		SpecialCase: cfg.SpecialCase,
		BonusValue:  cfg.BonusValue,
		BonusPoints: cfg.BonusPoints,
	}, nil
}

func buildMultiSelect(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
	q := &domain.MultiSelectQuestion{Base: base, Points: p.Scalar, Penalty: p.Scalar}
	if cfg.Penalty != nil {
		q.Penalty = *cfg.Penalty
	}
	if cfg.Minimum != nil {
		q.Minimum = *cfg.Minimum
	}
	return q, nil
}

// buildTeammateBattle accepts fewer than two options; such a battle never
// resolves and scores zero.
func buildTeammateBattle(cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
	return &domain.TeammateBattleQuestion{Base: base, Points: p.Scalar, TieBonus: cfg.TieBonus}, nil
}

func buildValueDriver(kind domain.QuestionType, cfg QuestionConfig, base domain.Base, p Points) (domain.Question, error) {
	q := &domain.ValueDriverQuestion{Base: base, Kind: kind}
	for key, v := range p.Table {
		switch key {
		case "position":
			q.PositionPoints = v
		case "driver":
			q.DriverPoints = v
		default:
			return nil, fmt.Errorf("%w: points key %q must be position or driver", domain.ErrInvalidConfiguration, key)
		}
	}
	if len(cfg.NearbyPoints) > 0 {
		q.NearbyPoints = make(map[int]float64, len(cfg.NearbyPoints))
		for key, v := range cfg.NearbyPoints {
			distance, err := strconv.Atoi(key)
			if err != nil || distance < 0 {
				return nil, fmt.Errorf("%w: position_nearby_points key %q must be a non-negative integer",
					domain.ErrInvalidConfiguration, key)
			}
			q.NearbyPoints[distance] = v
		}
	}
	return q, nil
}
