// Package tally holds the quorum and majority arithmetic for collegiate
// voting sessions. Everything here is a pure function over a roster and a
// set of vote records; the live progress display and the final resolution
// both go through ComputeStats so the numbers can never disagree.
package tally

import (
	"errors"
	"sort"

	"codema-service/internal/models"
)

var ErrUnknownRule = errors.New("unknown majority rule")

// Stats are the live statistics over one session's roster and ledger.
type Stats struct {
	TotalEligible    int            `json:"total_eligible"`
	TotalPresent     int            `json:"total_present"`
	VotesByOption    map[string]int `json:"votes_by_option"`
	Abstentions      int            `json:"abstentions"`
	Impedimentos     int            `json:"impedimentos"`
	VotosComputados  int            `json:"votos_computados"`
	QuorumNecessario int            `json:"quorum_necessario"`
	QuorumAtingido   bool           `json:"quorum_atingido"`
}

// ComputeStats derives the session statistics from the frozen roster and
// the current vote set. Impeded voters count as present but not toward the
// deliberative quorum. Abstentions are votes for an option flagged as
// abstention; they count in votosComputados but never win.
func ComputeStats(roster []models.RosterEntry, options []models.BallotOption, votes []models.Vote) Stats {
	abstainIDs := make(map[string]bool)
	byOption := make(map[string]int, len(options))
	for _, opt := range options {
		byOption[opt.ID] = 0
		if opt.IsAbstention {
			abstainIDs[opt.ID] = true
		}
	}

	stats := Stats{
		TotalEligible: len(roster),
		VotesByOption: byOption,
	}

	for _, v := range votes {
		stats.TotalPresent++
		if v.Impedimento {
			stats.Impedimentos++
			continue
		}
		if v.OptionID == nil {
			continue
		}
		byOption[*v.OptionID]++
		if abstainIDs[*v.OptionID] {
			stats.Abstentions++
		}
	}

	stats.VotosComputados = stats.TotalPresent - stats.Impedimentos
	stats.QuorumNecessario = stats.TotalEligible/2 + 1
	stats.QuorumAtingido = stats.VotosComputados >= stats.QuorumNecessario
	return stats
}

// Outcome is the resolution of a closed session.
type Outcome struct {
	Approved        bool
	WinningOptionID *string
	Reason          models.ResultReason
	Percentages     map[string]float64
}

// Resolve applies the session's majority rule to the final statistics.
// A failed quorum forces rejection regardless of the vote split, and a tie
// for the lead declares no winner. Both are tagged distinctly from an
// ordinary rejection.
func Resolve(stats Stats, options []models.BallotOption, rule models.MajorityRule, percentualQualificada float64) (Outcome, error) {
	out := Outcome{
		Reason:      models.ResultRejeitada,
		Percentages: percentages(stats),
	}

	leader, leaderVotes, tied := leadingOption(stats, options)

	if !stats.QuorumAtingido {
		out.Reason = models.ResultSemQuorum
		return out, nil
	}
	if tied {
		out.Reason = models.ResultEmpate
		return out, nil
	}
	if leader == "" || leaderVotes == 0 {
		return out, nil
	}

	var approved bool
	switch rule {
	case models.MaioriaSimples:
		// leadingOption already established strict plurality
		approved = true
	case models.MaioriaAbsoluta:
		approved = float64(leaderVotes) > float64(stats.TotalEligible)/2
	case models.MaioriaQualificada:
		if stats.VotosComputados > 0 {
			pct := float64(leaderVotes) / float64(stats.VotosComputados) * 100
			approved = pct >= percentualQualificada
		}
	default:
		return Outcome{}, ErrUnknownRule
	}

	winner := leader
	out.WinningOptionID = &winner
	out.Approved = approved
	if approved {
		out.Reason = models.ResultAprovada
	}
	return out, nil
}

// leadingOption finds the non-abstention option with the most votes. It
// reports a tie when two or more such options share the lead.
func leadingOption(stats Stats, options []models.BallotOption) (id string, votes int, tied bool) {
	// iterate options in ballot order so the result is deterministic
	sorted := make([]models.BallotOption, len(options))
	copy(sorted, options)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	for _, opt := range sorted {
		if opt.IsAbstention {
			continue
		}
		n := stats.VotesByOption[opt.ID]
		switch {
		case n > votes:
			id, votes, tied = opt.ID, n, false
		case n == votes && n > 0:
			tied = true
		}
	}
	if votes == 0 {
		return "", 0, false
	}
	return id, votes, tied
}

// percentages reports each option's share of votosComputados.
func percentages(stats Stats) map[string]float64 {
	pct := make(map[string]float64, len(stats.VotesByOption))
	for id, n := range stats.VotesByOption {
		if stats.VotosComputados == 0 {
			pct[id] = 0
			continue
		}
		pct[id] = float64(n) / float64(stats.VotosComputados) * 100
	}
	return pct
}
