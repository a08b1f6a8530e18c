package stats

// Verdicts on how an exploiter fared in a mixed population.
const (
	VerdictDominates = "dominates"
	VerdictModerate  = "moderate"
	VerdictPoor      = "poor"
)

// MixedAnalysis places one exploiting strategy on the leaderboard of a
// population that mixes it with cooperators and retaliators.
type MixedAnalysis struct {
	Exploiter string  `json:"exploiter"`
	Rank      int     `json:"rank"`
	Total     int     `json:"total"`
	Verdict   string  `json:"verdict"`
	Leader    string  `json:"leader"`
	Gap       float64 `json:"gap_to_leader"`
	Ranking   []Entry `json:"ranking"`
}

// AnalyzeMixed ranks results and reports on the first name in exploiters
// present among them. It returns nil when none is present.
//
// The verdict is dominates for first place, moderate for a rank in the top
// half (rank <= total/2, integer division) and poor otherwise. Gap is the
// leader's mean minus the exploiter's, zero when the exploiter leads.
func AnalyzeMixed(results map[string]ScoreStats, exploiters []string) *MixedAnalysis {
	var name string
	for _, candidate := range exploiters {
		if _, ok := results[candidate]; ok {
			name = candidate
			break
		}
	}
	if name == "" {
		return nil
	}

	ranking := Rank(results)
	a := &MixedAnalysis{
		Exploiter: name,
		Total:     len(ranking),
		Leader:    ranking[0].Name,
		Ranking:   ranking,
	}
	for _, e := range ranking {
		if e.Name == name {
			a.Rank = e.Rank
			a.Gap = ranking[0].Stats.Mean - e.Stats.Mean
			break
		}
	}

	switch {
	case a.Rank == 1:
		a.Verdict = VerdictDominates
	case a.Rank <= a.Total/2:
		a.Verdict = VerdictModerate
	default:
		a.Verdict = VerdictPoor
	}
	return a
}
