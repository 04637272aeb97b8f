// Package testutils holds fixtures and port mocks shared by tests.
package testutils

import (
	"strconv"

	"github.com/ahrav/go-paddock/internal/domain"
)

// AllPodiumsLabel is the bonus answer of the most_points_no_podium question.
const AllPodiumsLabel = "All teams scored a podium"

// SampleRoster returns the 2026 grid.
func SampleRoster() domain.Roster {
	return domain.Roster{
		Drivers: []string{
			"Max Verstappen", "Sergio Perez", "Lando Norris", "Oscar Piastri",
			"Charles Leclerc", "Lewis Hamilton", "George Russell", "Kimi Antonelli",
			"Fernando Alonso", "Lance Stroll", "Carlos Sainz Jr.", "Alexander Albon",
			"Esteban Ocon", "Oliver Bearman", "Liam Lawson", "Arvid Lindblad",
			"Pierre Gasly", "Isack Hadjar", "Nico Hulkenberg", "Gabriel Bortoleto",
			"Valtteri Bottas", "Franco Colapinto",
		},
		Teams: []string{
			"McLaren", "Ferrari", "Red Bull Racing", "Mercedes", "Williams",
			"Aston Martin", "Racing Bulls", "Haas F1 Team", "Audi", "Alpine", "Cadillac",
		},
	}
}

// SampleRaces returns the 2026 calendar.
func SampleRaces() []string {
	return []string{
		"Australian Grand Prix", "Chinese Grand Prix", "Japanese Grand Prix",
		"Bahrain Grand Prix", "Saudi Arabian Grand Prix", "Miami Grand Prix",
		"Canadian Grand Prix", "Monaco Grand Prix", "Barcelona-Catalunya Grand Prix",
		"Austrian Grand Prix", "British Grand Prix", "Belgian Grand Prix",
		"Hungarian Grand Prix", "Dutch Grand Prix", "Italian Grand Prix",
		"Spanish Grand Prix", "Azerbaijan Grand Prix", "Singapore Grand Prix",
		"United States Grand Prix", "Mexico City Grand Prix", "Sao Paulo Grand Prix",
		"Las Vegas Grand Prix", "Qatar Grand Prix", "Abu Dhabi Grand Prix",
	}
}

// SampleQuestions returns the 2026 catalog with options already resolved
// against SampleRoster and SampleRaces.
func SampleQuestions() []domain.Question {
	roster := SampleRoster()
	races := SampleRaces()
	drivers := func(id string) domain.Base {
		return domain.Base{QID: id, Choices: roster.Drivers, Source: domain.SourceDrivers}
	}
	teams := func(id string) domain.Base {
		return domain.Base{QID: id, Choices: roster.Teams, Source: domain.SourceTeams}
	}
	plain := func(id string, options ...string) domain.Base {
		return domain.Base{QID: id, Choices: options}
	}
	yesNo := func(id string) *domain.BooleanQuestion {
		return &domain.BooleanQuestion{Base: plain(id, "yes", "no"), Points: 5}
	}

	grid := make([]string, 0, 23)
	for i := 1; i <= 22; i++ {
		grid = append(grid, strconv.Itoa(i))
	}
	grid = append(grid, "Pitlane")

	return []domain.Question{
		&domain.RankingQuestion{
			Base:   drivers("drivers_championship_top_3"),
			Count:  3,
			Points: map[string]float64{"1st": 25, "2nd": 18, "3rd": 15},
		},
		&domain.ChoiceQuestion{Base: drivers("drivers_championship_last"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.RankingQuestion{
			Base:   teams("constructors_championship_top_3"),
			Count:  3,
			Points: map[string]float64{"1st": 20, "2nd": 15, "3rd": 10},
		},
		&domain.ChoiceQuestion{Base: teams("constructors_championship_last"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.BooleanQuestion{Base: plain("all_teams_score_points", "yes", "no"), Points: 10},
		&domain.ChoiceQuestion{Base: drivers("most_driver_of_the_day"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.ChoiceQuestion{Base: drivers("most_dnfs_driver"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.ChoiceQuestion{Base: teams("destructors_team"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.ChoiceQuestion{Base: drivers("destructors_driver"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.MultiSelectQuestion{Base: drivers("all_podium_finishers"), Points: 3, Penalty: 3},
		&domain.TeammateBattleQuestion{
			Base:     plain("teammate_battle_antonelli_russell", "Kimi Antonelli", "George Russell"),
			Points:   15,
			TieBonus: 10,
		},
		&domain.TeammateBattleQuestion{
			Base:     plain("teammate_battle_lawson_lindblad", "Liam Lawson", "Arvid Lindblad"),
			Points:   15,
			TieBonus: 10,
		},
		&domain.ChoiceQuestion{Base: plain("alpine_vs_cadillac_audi", "More", "Less"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.ChoiceQuestion{
			Base: domain.Base{
				QID:     "most_points_no_podium",
				Choices: domain.DedupeOptions(roster.Teams, []string{AllPodiumsLabel}),
				Source:  domain.SourceTeams,
			},
			Kind:        domain.TypeSingleChoice,
			Points:      10,
			SpecialCase: domain.SpecialCaseAllPodiumsBonus,
			BonusValue:  AllPodiumsLabel,
			BonusPoints: 25,
		},
		&domain.BooleanDriverQuestion{Base: drivers("race_ban"), Points: 10, BonusPoints: 15},
		&domain.ValueDriverQuestion{
			Base:           plain("lowest_grid_win_position", grid...),
			Kind:           domain.TypeSingleChoiceWithDriver,
			PositionPoints: 15,
			DriverPoints:   10,
			NearbyPoints:   map[int]float64{1: 5, 2: 2},
		},
		&domain.LimitedSelectQuestion{
			Base:   domain.Base{QID: "select_three_races_dnfs", Choices: races, Source: domain.SourceRaces},
			Count:  3,
			Points: 1,
		},
		&domain.ChoiceQuestion{Base: teams("closest_qualifying_teammates"), Kind: domain.TypeSingleChoice, Points: 10},
		&domain.NumericQuestion{Base: plain("races_before_title_decided"), Points: 15},
		yesNo("mini_q1_first_race_winner_champion"),
		yesNo("mini_q2_mercedes_engines_top5"),
		yesNo("mini_q3_ferrari_podium"),
		yesNo("mini_q4_sprint_champion_same"),
		yesNo("mini_q5_team_engine_switch_2027_2028"),
		&domain.ValueDriverQuestion{
			Base:           drivers("most_poles"),
			Kind:           domain.TypeNumericWithDriver,
			PositionPoints: 10,
			DriverPoints:   10,
		},
		&domain.ChoiceQuestion{Base: plain("season_headline"), Kind: domain.TypeTextarea, Points: 0},
	}
}

// QuestionByID returns the question with id from questions, or nil.
func QuestionByID(questions []domain.Question, id string) domain.Question {
	for _, q := range questions {
		if q.ID() == id {
			return q
		}
	}
	return nil
}
