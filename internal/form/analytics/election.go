package analytics

import "strings"

// Borda points by rank position: 1st through 5th, deeper ranks score
// nothing.
var bordaPoints = []int{5, 4, 3, 2, 1}

// ElectionResult carries all three tallying methods over one ranked
// field's ballots. The methods can disagree; all three are always
// reported side by side.
type ElectionResult struct {
	Ballots   int         `json:"ballots"`
	Plurality MethodTally `json:"plurality"`
	Instant   IRVTally    `json:"instant_runoff"`
	Borda     MethodTally `json:"borda"`
}

// MethodTally is a single-pass method's scores in candidate order plus
// its winner. Winner is "-" when no ballots exist.
type MethodTally struct {
	Scores []OptionCount `json:"scores"`
	Winner string        `json:"winner"`
}

// IRVTally records every instant-runoff round in sequence.
type IRVTally struct {
	Rounds []IRVRound `json:"rounds"`
	Winner string     `json:"winner"`
}

// IRVRound is one elimination round: first-preference counts among the
// still-active candidates, and who left at the end of the round. A
// round reached by strict majority eliminates nobody.
type IRVRound struct {
	Number     int           `json:"number"`
	Counts     []OptionCount `json:"counts"`
	Eliminated []string      `json:"eliminated,omitempty"`
}

// RunElection tallies the ballots under all three methods. Candidates
// are the field's declared options, trimmed, in declared order,
// followed by any write-ins mentioned on a ballot in first-seen order;
// that order also breaks plurality and Borda ties. The runoff only
// considers candidates somebody actually ranked.
func RunElection(options []string, ballots [][]string) ElectionResult {
	ballots = nonEmpty(ballots)
	candidates := candidateOrder(options, ballots)

	return ElectionResult{
		Ballots:   len(ballots),
		Plurality: plurality(ballots, candidates),
		Instant:   instantRunoff(ballots, mentioned(ballots)),
		Borda:     borda(ballots, candidates),
	}
}

// candidateOrder merges the declared options with ballot write-ins,
// deduplicated, declared options first.
func candidateOrder(options []string, ballots [][]string) []string {
	seen := make(map[string]bool, len(options))
	candidates := []string{}
	add := func(option string) {
		if option != "" && !seen[option] {
			seen[option] = true
			candidates = append(candidates, option)
		}
	}
	for _, option := range options {
		add(strings.TrimSpace(option))
	}
	for _, option := range mentioned(ballots) {
		add(option)
	}
	return candidates
}

func plurality(ballots [][]string, candidates []string) MethodTally {
	scores := make([]OptionCount, len(candidates))
	for i, candidate := range candidates {
		scores[i].Option = candidate
	}
	for _, ballot := range ballots {
		for i, candidate := range candidates {
			if ballot[0] == candidate {
				scores[i].Count++
				break
			}
		}
	}
	return MethodTally{Scores: scores, Winner: leader(ballots, scores)}
}

func borda(ballots [][]string, candidates []string) MethodTally {
	points := make(map[string]int, len(candidates))
	for _, ballot := range ballots {
		for rank, candidate := range ballot {
			if rank >= len(bordaPoints) {
				break
			}
			points[candidate] += bordaPoints[rank]
		}
	}

	scores := make([]OptionCount, len(candidates))
	for i, candidate := range candidates {
		scores[i] = OptionCount{Option: candidate, Count: points[candidate]}
	}
	return MethodTally{Scores: scores, Winner: leader(ballots, scores)}
}

func instantRunoff(ballots [][]string, candidates []string) IRVTally {
	active := append([]string(nil), candidates...)
	tally := IRVTally{Rounds: []IRVRound{}, Winner: "-"}

	for len(active) > 1 {
		counts := firstPreferences(ballots, active)
		total := 0
		for _, count := range counts {
			total += count.Count
		}

		round := IRVRound{Number: len(tally.Rounds) + 1, Counts: counts}

		// Strict majority ends the election without an elimination.
		top := leaderIndex(counts)
		if total > 0 && 2*counts[top].Count > total {
			tally.Rounds = append(tally.Rounds, round)
			tally.Winner = counts[top].Option
			return tally
		}

		// All candidates sharing the minimum leave together, even when
		// that empties the field.
		min := counts[0].Count
		for _, count := range counts[1:] {
			if count.Count < min {
				min = count.Count
			}
		}
		remaining := make([]string, 0, len(active))
		for _, count := range counts {
			if count.Count == min {
				round.Eliminated = append(round.Eliminated, count.Option)
			} else {
				remaining = append(remaining, count.Option)
			}
		}

		tally.Rounds = append(tally.Rounds, round)
		active = remaining
	}

	if len(active) == 1 {
		tally.Winner = active[0]
	}
	return tally
}

// firstPreferences counts, per active candidate, the ballots whose
// highest-ranked still-active entry is that candidate. Ballots with no
// active entry left are exhausted and count for nobody.
func firstPreferences(ballots [][]string, active []string) []OptionCount {
	counts := make([]OptionCount, len(active))
	index := make(map[string]int, len(active))
	for i, candidate := range active {
		counts[i].Option = candidate
		index[candidate] = i
	}

	for _, ballot := range ballots {
		for _, entry := range ballot {
			if i, ok := index[entry]; ok {
				counts[i].Count++
				break
			}
		}
	}
	return counts
}

// leader returns the option with the highest score, earliest entry
// winning ties, or "-" when no ballots were cast or no scores exist.
func leader(ballots [][]string, scores []OptionCount) string {
	if len(ballots) == 0 || len(scores) == 0 {
		return "-"
	}
	return scores[leaderIndex(scores)].Option
}

func leaderIndex(scores []OptionCount) int {
	best := 0
	for i, score := range scores {
		if score.Count > scores[best].Count {
			best = i
		}
	}
	return best
}

func nonEmpty(ballots [][]string) [][]string {
	kept := make([][]string, 0, len(ballots))
	for _, ballot := range ballots {
		if len(ballot) > 0 {
			kept = append(kept, ballot)
		}
	}
	return kept
}

// mentioned collects every option appearing on any ballot, in
// first-seen order.
func mentioned(ballots [][]string) []string {
	seen := make(map[string]bool)
	options := []string{}
	for _, ballot := range ballots {
		for _, entry := range ballot {
			if !seen[entry] {
				seen[entry] = true
				options = append(options, entry)
			}
		}
	}
	return options
}
