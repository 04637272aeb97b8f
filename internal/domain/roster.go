package domain

// Roster is the season's entrant list: driver and team names in display order.
type Roster struct {
	Drivers []string `yaml:"drivers" json:"drivers"`
	Teams   []string `yaml:"teams" json:"teams"`
}

// Values returns the roster or race list named by source. SourceNone and
// unrecognized sources yield nil.
func (r Roster) Values(source OptionsSource, races []string) []string {
	switch source {
	case SourceDrivers:
		return r.Drivers
	case SourceTeams:
		return r.Teams
	case SourceRaces:
		return races
	default:
		return nil
	}
}

// DedupeOptions returns values with empty strings and repeats removed,
// keeping the first occurrence order.
func DedupeOptions(values ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range values {
		for _, v := range list {
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
