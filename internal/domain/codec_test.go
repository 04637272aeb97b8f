package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		answer   Answer
	}{
		{
			name:     "ranking",
			question: &RankingQuestion{Base: Base{QID: "drivers_championship_top_3"}},
			answer:   Ranking{{"Norris"}, {"Piastri"}, {"Verstappen"}},
		},
		{
			name:     "ranking with shared slot",
			question: &RankingQuestion{Base: Base{QID: "constructors_championship_top_3"}},
			answer:   Ranking{{"McLaren"}, {"Ferrari", "Mercedes"}},
		},
		{
			name:     "multi select",
			question: &MultiSelectQuestion{Base: Base{QID: "all_podium_finishers"}},
			answer:   Selection{"Norris", "Leclerc"},
		},
		{
			name:     "limited selection",
			question: &LimitedSelectQuestion{Base: Base{QID: "select_three_races_dnfs"}},
			answer:   Selection{"Monaco", "Singapore", "Las Vegas"},
		},
		{
			name:     "race counts",
			question: &LimitedSelectQuestion{Base: Base{QID: "select_three_races_dnfs"}},
			answer:   RaceCounts{"Monaco": 4, "Singapore": 2},
		},
		{
			name:     "teammate battle",
			question: &TeammateBattleQuestion{Base: Base{QID: "teammate_battle_lawson_lindblad"}},
			answer:   TeammateBattle{Winner: "Lawson", Diff: Float(12)},
		},
		{
			name:     "teammate tie",
			question: &TeammateBattleQuestion{Base: Base{QID: "teammate_battle_lawson_lindblad"}},
			answer:   TeammateBattle{Winner: TieWinner},
		},
		{
			name:     "boolean with driver",
			question: &BooleanDriverQuestion{Base: Base{QID: "race_ban"}},
			answer:   ChoiceWithDriver{Choice: "yes", Driver: "Ocon"},
		},
		{
			name:     "boolean without driver",
			question: &BooleanDriverQuestion{Base: Base{QID: "race_ban"}},
			answer:   ChoiceWithDriver{Choice: "no"},
		},
		{
			name:     "value with driver",
			question: &ValueDriverQuestion{Base: Base{QID: "lowest_grid_win_position"}, Kind: TypeSingleChoiceWithDriver},
			answer:   ValueWithDriver{Value: "Pitlane", Driver: "Hamilton"},
		},
		{
			name:     "numeric",
			question: &NumericQuestion{Base: Base{QID: "races_before_title_decided"}},
			answer:   Number(3),
		},
		{
			name:     "text",
			question: &ChoiceQuestion{Base: Base{QID: "most_points_no_podium"}, Kind: TypeSingleChoice},
			answer:   Text("Williams"),
		},
		{
			name:     "text shaped like a list",
			question: &ChoiceQuestion{Base: Base{QID: "first_time_winner"}, Kind: TypeText},
			answer:   Text(`["A"]`),
		},
		{
			name:     "text with quotes",
			question: &ChoiceQuestion{Base: Base{QID: "first_time_winner"}, Kind: TypeText},
			answer:   Text(` "quoted" `),
		},
		{
			name:     "boolean shaped like a list",
			question: &BooleanQuestion{Base: Base{QID: "all_teams_score_points"}},
			answer:   Text("[yes]"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeAnswer(tt.question, tt.answer)
			require.NoError(t, err)

			decoded := DecodeAnswer(tt.question, encoded)
			assert.Equal(t, tt.answer, decoded)
		})
	}
}

func TestEncodeAnswer(t *testing.T) {
	numeric := &NumericQuestion{Base: Base{QID: "n"}}

	t.Run("nil is empty", func(t *testing.T) {
		s, err := EncodeAnswer(numeric, nil)
		require.NoError(t, err)
		assert.Empty(t, s)
	})

	t.Run("numeric text is canonicalized", func(t *testing.T) {
		s, err := EncodeAnswer(numeric, Text(" 07.0 "))
		require.NoError(t, err)
		assert.Equal(t, "7", s)
	})

	t.Run("non numeric text rejected", func(t *testing.T) {
		_, err := EncodeAnswer(numeric, Text("seven"))
		assert.True(t, errors.Is(err, ErrAnswerShape))
	})

	t.Run("composite for wrong type rejected", func(t *testing.T) {
		_, err := EncodeAnswer(numeric, Selection{"a"})
		assert.True(t, errors.Is(err, ErrAnswerShape))
	})

	t.Run("list shaped text is stored as a string literal", func(t *testing.T) {
		q := &ChoiceQuestion{Base: Base{QID: "c"}, Kind: TypeText}
		s, err := EncodeAnswer(q, Text(`["A"]`))
		require.NoError(t, err)
		assert.Equal(t, `"[\"A\"]"`, s)

		s, err = EncodeAnswer(q, Text("Williams"))
		require.NoError(t, err)
		assert.Equal(t, "Williams", s)
	})

	t.Run("composite writes null driver", func(t *testing.T) {
		q := &BooleanDriverQuestion{Base: Base{QID: "race_ban"}}
		s, err := EncodeAnswer(q, ChoiceWithDriver{Choice: "no"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"choice":"no","driver":null}`, s)
	})
}

func TestDecodeAnswer_Lenient(t *testing.T) {
	battle := &TeammateBattleQuestion{Base: Base{QID: "tb"}}
	ranking := &RankingQuestion{Base: Base{QID: "r"}}
	limited := &LimitedSelectQuestion{Base: Base{QID: "l"}}
	valueDriver := &ValueDriverQuestion{Base: Base{QID: "v"}, Kind: TypeNumericWithDriver}

	tests := []struct {
		name     string
		question Question
		raw      string
		want     Answer
	}{
		{"empty", ranking, "", nil},
		{"null", ranking, "null", nil},
		{"garbage ranking", ranking, "{not json", nil},
		{"ranking with null slot", ranking, `["A",null,"C"]`, Ranking{{"A"}, nil, {"C"}}},
		{"diff as string", battle, `{"winner":"A","diff":"9"}`, TeammateBattle{Winner: "A", Diff: Float(9)}},
		{"diff not numeric", battle, `{"winner":"A","diff":"lots"}`, TeammateBattle{Winner: "A"}},
		{"battle not an object", battle, `"A"`, nil},
		{"limited scalar", limited, `"Monaco"`, nil},
		{"value as number", valueDriver, `{"value":4,"driver":"Norris"}`, ValueWithDriver{Value: "4", Driver: "Norris"}},
		{"numeric garbage", &NumericQuestion{Base: Base{QID: "n"}}, "many", nil},
		{"accepted set for choice", &ChoiceQuestion{Base: Base{QID: "c"}, Kind: TypeSingleChoice}, `["Haas F1 Team","Williams"]`, Selection{"Haas F1 Team", "Williams"}},
		{"string literal is text", &ChoiceQuestion{Base: Base{QID: "c"}, Kind: TypeText}, `"Williams"`, Text("Williams")},
		{"bracket text stays text", &ChoiceQuestion{Base: Base{QID: "c"}, Kind: TypeText}, "[draft", Text("[draft")},
		{"unknown keeps text", &UnknownQuestion{Base: Base{QID: "u"}, RawType: "slider"}, "42", Text("42")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeAnswer(tt.question, tt.raw))
		})
	}
}

func TestScalarHelpers(t *testing.T) {
	s, ok := ScalarString(Number(2.5))
	assert.True(t, ok)
	assert.Equal(t, "2.5", s)

	_, ok = ScalarString(Selection{"a"})
	assert.False(t, ok)

	n, ok := ScalarNumber(Text(" 12 "))
	assert.True(t, ok)
	assert.Equal(t, 12.0, n)

	_, ok = ScalarNumber(nil)
	assert.False(t, ok)
}

func TestSlotLabel(t *testing.T) {
	assert.Equal(t, "1st", SlotLabel(0))
	assert.Equal(t, "5th", SlotLabel(4))
	assert.Equal(t, "6", SlotLabel(5))
}
