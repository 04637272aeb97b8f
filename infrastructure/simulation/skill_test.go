package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahrav/go-paddock/internal/domain"
)

func TestBuildSkillModel(t *testing.T) {
	roster := domain.Roster{
		Drivers: []string{"Max Verstappen", "Lando Norris", "Rookie"},
		Teams:   []string{"McLaren", "Red Bull Racing", "Newcomers"},
	}
	m := BuildSkillModel(roster, DefaultPriors())

	assert.InDelta(t, 90+98*0.45, m.ExpectedDriver["Max Verstappen"], 1e-9)
	assert.InDelta(t, 95+95*0.45, m.ExpectedDriver["Lando Norris"], 1e-9)

	// Unknown driver joins the first roster team with the default skill.
	assert.Equal(t, "McLaren", m.DriverTeam["Rookie"])
	assert.Equal(t, 75.0, m.DriverSkill["Rookie"])
	assert.InDelta(t, 95+75*0.45, m.ExpectedDriver["Rookie"], 1e-9)

	// Unknown team gets the default strength but no drivers.
	assert.Equal(t, 62.0, m.TeamBase["Newcomers"])
	assert.Zero(t, m.ExpectedTeam["Newcomers"])
	assert.InDelta(t, m.ExpectedDriver["Lando Norris"]+m.ExpectedDriver["Rookie"], m.ExpectedTeam["McLaren"], 1e-9)
	assert.Equal(t, []string{"Lando Norris", "Rookie"}, m.TeamDrivers["McLaren"])

	assert.Equal(t, 75.0, m.skill("Nobody"))
}

func TestBuildSkillModel_NoTeams(t *testing.T) {
	roster := domain.Roster{Drivers: []string{"Solo"}}
	m := BuildSkillModel(roster, DefaultPriors())

	assert.Equal(t, "", m.DriverTeam["Solo"])
	assert.InDelta(t, 62+75*0.45, m.ExpectedDriver["Solo"], 1e-9)
	assert.Empty(t, m.ExpectedTeam)
}

func TestPriorsMerge(t *testing.T) {
	base := DefaultPriors()
	merged := base.Merge(Priors{
		TeamStrength: map[string]float64{"Alpine": 99},
		SkillWeight:  0.5,
	})

	assert.Equal(t, 99.0, merged.TeamStrength["Alpine"])
	assert.Equal(t, 95.0, merged.TeamStrength["McLaren"])
	assert.Equal(t, 0.5, merged.SkillWeight)
	assert.Equal(t, base.DefaultDriverSkill, merged.DefaultDriverSkill)
	assert.Equal(t, 60.0, base.TeamStrength["Alpine"], "base untouched")

	rules := DefaultSeasonRules().Merge(SeasonRules{UnderdogTeam: "Williams"})
	assert.Equal(t, "Williams", rules.UnderdogTeam)
	assert.Equal(t, "Ferrari", rules.PodiumPairTeam)
}
