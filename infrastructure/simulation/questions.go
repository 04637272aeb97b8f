package simulation

// Question ids with a bespoke derivation from the skill model. Any other
// question falls back to a generic draw for its type.
const (
	QDriversTop3         = "drivers_championship_top_3"
	QDriversLast         = "drivers_championship_last"
	QConstructorsTop3    = "constructors_championship_top_3"
	QConstructorsLast    = "constructors_championship_last"
	QAllTeamsScorePoints = "all_teams_score_points"
	QMostDriverOfTheDay  = "most_driver_of_the_day"
	QMostDNFsDriver      = "most_dnfs_driver"
	QDestructorsTeam     = "destructors_team"
	QDestructorsDriver   = "destructors_driver"
	QAllPodiumFinishers  = "all_podium_finishers"
	QUnderdogVsRivals    = "alpine_vs_cadillac_audi"
	QMostPointsNoPodium  = "most_points_no_podium"
	QRaceBan             = "race_ban"
	QLowestGridWin       = "lowest_grid_win_position"
	QRaceDNFs            = "select_three_races_dnfs"
	QClosestTeammates    = "closest_qualifying_teammates"
	QRacesBeforeTitle    = "races_before_title_decided"
	QFirstWinnerChampion = "mini_q1_first_race_winner_champion"
	QMercedesEnginesTop5 = "mini_q2_mercedes_engines_top5"
	QPodiumPair          = "mini_q3_ferrari_podium"
	QSprintChampionSame  = "mini_q4_sprint_champion_same"
	QTeamEngineSwitch    = "mini_q5_team_engine_switch_2027_2028"
)

// Grid bounds for lowest_grid_win_position.
const (
	minGrid = 1
	maxGrid = 22
)

// noTeammate scores a team that cannot field a qualifying pair.
const noTeammate = -999
