package simulation

// Priors are the static strength tables the skill model is built from.
// Entities missing from the tables fall back to the defaults.
type Priors struct {
	// TeamStrength is the base strength per team.
	TeamStrength map[string]float64 `yaml:"team_strength" json:"team_strength"`

	// DriverTeam assigns drivers to teams.
	DriverTeam map[string]string `yaml:"driver_team" json:"driver_team"`

	// DriverSkill is the skill rating per driver.
	DriverSkill map[string]float64 `yaml:"driver_skill" json:"driver_skill"`

	// DefaultTeamStrength applies to teams without an entry. Default: 62.
	DefaultTeamStrength float64 `yaml:"default_team_strength" json:"default_team_strength" validate:"gte=0"`

	// DefaultDriverSkill applies to drivers without an entry. Default: 75.
	DefaultDriverSkill float64 `yaml:"default_driver_skill" json:"default_driver_skill" validate:"gte=0,lte=100"`

	// SkillWeight scales driver skill into expected performance. Default: 0.45.
	SkillWeight float64 `yaml:"skill_weight" json:"skill_weight" validate:"gte=0"`
}

// SeasonRules names the entities that season-specific questions compare.
type SeasonRules struct {
	// UnderdogTeam is compared against the combined UnderdogRivals.
	UnderdogTeam string `yaml:"underdog_team" json:"underdog_team"`

	// UnderdogRivals are summed for the underdog comparison.
	UnderdogRivals []string `yaml:"underdog_rivals" json:"underdog_rivals"`

	// PodiumPairTeam is the team whose two drivers must both reach the podium set.
	PodiumPairTeam string `yaml:"podium_pair_team" json:"podium_pair_team"`

	// AllPodiumsLabel is the answer used when every team reached the podium.
	AllPodiumsLabel string `yaml:"all_podiums_label" json:"all_podiums_label"`

	// StreetRaces are case-insensitive race name fragments considered
	// retirement-prone.
	StreetRaces []string `yaml:"street_races" json:"street_races"`
}

// DefaultPriors returns the built-in 2026 grid.
func DefaultPriors() Priors {
	return Priors{
		TeamStrength: map[string]float64{
			"McLaren":         95,
			"Ferrari":         92,
			"Red Bull Racing": 90,
			"Mercedes":        88,
			"Williams":        75,
			"Aston Martin":    73,
			"Racing Bulls":    69,
			"Haas F1 Team":    66,
			"Audi":            63,
			"Alpine":          60,
			"Cadillac":        55,
		},
		DriverTeam: map[string]string{
			"Max Verstappen":    "Red Bull Racing",
			"Sergio Perez":      "Red Bull Racing",
			"Lando Norris":      "McLaren",
			"Oscar Piastri":     "McLaren",
			"Charles Leclerc":   "Ferrari",
			"Lewis Hamilton":    "Ferrari",
			"George Russell":    "Mercedes",
			"Kimi Antonelli":    "Mercedes",
			"Fernando Alonso":   "Aston Martin",
			"Lance Stroll":      "Aston Martin",
			"Carlos Sainz Jr.":  "Williams",
			"Alexander Albon":   "Williams",
			"Esteban Ocon":      "Haas F1 Team",
			"Oliver Bearman":    "Haas F1 Team",
			"Liam Lawson":       "Racing Bulls",
			"Arvid Lindblad":    "Racing Bulls",
			"Pierre Gasly":      "Alpine",
			"Isack Hadjar":      "Alpine",
			"Nico Hulkenberg":   "Audi",
			"Gabriel Bortoleto": "Audi",
			"Valtteri Bottas":   "Cadillac",
			"Franco Colapinto":  "Cadillac",
		},
		DriverSkill: map[string]float64{
			"Max Verstappen":    98,
			"Lando Norris":      95,
			"Oscar Piastri":     94,
			"Charles Leclerc":   93,
			"Lewis Hamilton":    92,
			"George Russell":    91,
			"Kimi Antonelli":    88,
			"Carlos Sainz Jr.":  86,
			"Fernando Alonso":   86,
			"Sergio Perez":      85,
			"Alexander Albon":   84,
			"Pierre Gasly":      82,
			"Esteban Ocon":      81,
			"Nico Hulkenberg":   80,
			"Liam Lawson":       79,
			"Oliver Bearman":    78,
			"Valtteri Bottas":   77,
			"Lance Stroll":      76,
			"Arvid Lindblad":    75,
			"Isack Hadjar":      74,
			"Gabriel Bortoleto": 73,
			"Franco Colapinto":  72,
		},
		DefaultTeamStrength: 62,
		DefaultDriverSkill:  75,
		SkillWeight:         0.45,
	}
}

// DefaultSeasonRules returns the rules for the 2026 catalog.
func DefaultSeasonRules() SeasonRules {
	return SeasonRules{
		UnderdogTeam:    "Alpine",
		UnderdogRivals:  []string{"Cadillac", "Audi", "Aston Martin"},
		PodiumPairTeam:  "Ferrari",
		AllPodiumsLabel: "All teams scored a podium",
		StreetRaces:     []string{"monaco", "singapore", "azerbaijan", "las vegas", "sao paulo"},
	}
}

// Merge overlays the non-zero fields of override on p. Table entries are
// merged key by key.
func (p Priors) Merge(override Priors) Priors {
	out := Priors{
		TeamStrength:        mergeFloats(p.TeamStrength, override.TeamStrength),
		DriverTeam:          mergeStrings(p.DriverTeam, override.DriverTeam),
		DriverSkill:         mergeFloats(p.DriverSkill, override.DriverSkill),
		DefaultTeamStrength: p.DefaultTeamStrength,
		DefaultDriverSkill:  p.DefaultDriverSkill,
		SkillWeight:         p.SkillWeight,
	}
	if override.DefaultTeamStrength != 0 {
		out.DefaultTeamStrength = override.DefaultTeamStrength
	}
	if override.DefaultDriverSkill != 0 {
		out.DefaultDriverSkill = override.DefaultDriverSkill
	}
	if override.SkillWeight != 0 {
		out.SkillWeight = override.SkillWeight
	}
	return out
}

// Merge overlays the non-empty fields of override on r.
func (r SeasonRules) Merge(override SeasonRules) SeasonRules {
	if override.UnderdogTeam != "" {
		r.UnderdogTeam = override.UnderdogTeam
	}
	if len(override.UnderdogRivals) > 0 {
		r.UnderdogRivals = override.UnderdogRivals
	}
	if override.PodiumPairTeam != "" {
		r.PodiumPairTeam = override.PodiumPairTeam
	}
	if override.AllPodiumsLabel != "" {
		r.AllPodiumsLabel = override.AllPodiumsLabel
	}
	if len(override.StreetRaces) > 0 {
		r.StreetRaces = override.StreetRaces
	}
	return r
}

func mergeFloats(base, over map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func mergeStrings(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
