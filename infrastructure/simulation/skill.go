package simulation

import "github.com/ahrav/go-paddock/internal/domain"

// SkillModel holds expected performance per driver and team for one run.
// It is built once and read concurrently by every season; nothing mutates
// it after BuildSkillModel returns.
type SkillModel struct {
	Drivers        []string
	Teams          []string
	TeamBase       map[string]float64
	DriverTeam     map[string]string
	DriverSkill    map[string]float64
	TeamDrivers    map[string][]string
	ExpectedDriver map[string]float64
	ExpectedTeam   map[string]float64

	defaultSkill float64
}

// BuildSkillModel derives the model from the roster and priors. Teams and
// drivers missing from the priors get the default strength and skill;
// unmapped drivers join the first roster team, or "" when there is none.
// It never fails.
func BuildSkillModel(roster domain.Roster, priors Priors) *SkillModel {
	m := &SkillModel{
		Drivers:        append([]string(nil), roster.Drivers...),
		Teams:          append([]string(nil), roster.Teams...),
		TeamBase:       make(map[string]float64, len(roster.Teams)),
		DriverTeam:     make(map[string]string, len(roster.Drivers)),
		DriverSkill:    make(map[string]float64, len(roster.Drivers)),
		TeamDrivers:    make(map[string][]string, len(roster.Teams)),
		ExpectedDriver: make(map[string]float64, len(roster.Drivers)),
		ExpectedTeam:   make(map[string]float64, len(roster.Teams)),
		defaultSkill:   priors.DefaultDriverSkill,
	}

	fallbackTeam := ""
	if len(roster.Teams) > 0 {
		fallbackTeam = roster.Teams[0]
	}

	for _, team := range roster.Teams {
		base, ok := priors.TeamStrength[team]
		if !ok {
			base = priors.DefaultTeamStrength
		}
		m.TeamBase[team] = base
		m.TeamDrivers[team] = nil
	}

	for _, driver := range roster.Drivers {
		team, ok := priors.DriverTeam[driver]
		if !ok {
			team = fallbackTeam
		}
		skill, ok := priors.DriverSkill[driver]
		if !ok {
			skill = priors.DefaultDriverSkill
		}
		m.DriverTeam[driver] = team
		m.DriverSkill[driver] = skill
		m.TeamDrivers[team] = append(m.TeamDrivers[team], driver)
	}

	for _, driver := range roster.Drivers {
		team := m.DriverTeam[driver]
		base, ok := m.TeamBase[team]
		if !ok {
			// Team from the priors that is not on the roster.
			base, ok = priors.TeamStrength[team]
			if !ok {
				base = priors.DefaultTeamStrength
			}
		}
		m.ExpectedDriver[driver] = base + m.DriverSkill[driver]*priors.SkillWeight
	}

	for _, team := range roster.Teams {
		var sum float64
		for _, driver := range m.TeamDrivers[team] {
			sum += m.ExpectedDriver[driver]
		}
		m.ExpectedTeam[team] = sum
	}

	return m
}

// skill returns a driver's rating, falling back to the default for names
// outside the roster.
func (m *SkillModel) skill(driver string) float64 {
	if s, ok := m.DriverSkill[driver]; ok {
		return s
	}
	return m.defaultSkill
}
