package participation

import "github.com/govtwool/govtwool-backend/domains/governance"

type voterKey struct {
	id        string
	voterType governance.VoterType
}

// BuildActionParticipation joins the three eligible populations of an action
// against its vote events. It does no I/O and its output depends only on its
// inputs, so the result can be cached by action id.
func BuildActionParticipation(
	actionID string,
	dreps []EligibleDRep,
	pools []EligiblePool,
	committee []EligibleCommitteeMember,
	votes []governance.VoteRecord,
) ActionVoterParticipation {
	latest := indexVotes(votes)

	drepRows := make([]DRepParticipant, 0, len(dreps))
	for _, d := range dreps {
		drepRows = append(drepRows, DRepParticipant{
			DRepID:     d.DRepID,
			GivenName:  d.GivenName,
			View:       d.View,
			Hex:        d.Hex,
			HasProfile: d.HasProfile,
			VoteFields: voteFields(latest, voterKey{d.DRepID, governance.VoterDRep}),
		})
	}

	poolRows := make([]StakePoolParticipant, 0, len(pools))
	for _, p := range pools {
		poolRows = append(poolRows, StakePoolParticipant{
			PoolID:      p.PoolID,
			Ticker:      p.Ticker,
			Name:        p.Name,
			Description: p.Description,
			Homepage:    p.Homepage,
			VoteFields:  voteFields(latest, voterKey{p.PoolID, governance.VoterSPO}),
		})
	}

	committeeRows := make([]CommitteeParticipant, 0, len(committee))
	for _, m := range committee {
		fields := voteFields(latest, voterKey{m.Identifier, governance.VoterCommittee})
		if !fields.HasVoted && m.HotKey != nil && *m.HotKey != m.Identifier {
			// committee ballots are signed with the hot credential
			fields = voteFields(latest, voterKey{*m.HotKey, governance.VoterCommittee})
		}
		committeeRows = append(committeeRows, CommitteeParticipant{
			Identifier:  m.Identifier,
			Role:        m.Role,
			HotKey:      m.HotKey,
			ColdKey:     m.ColdKey,
			ExpiryEpoch: m.ExpiryEpoch,
			VoteFields:  fields,
		})
	}

	return ActionVoterParticipation{
		ActionID:   actionID,
		DReps:      newGroup(drepRows, func(r DRepParticipant) bool { return r.HasVoted }),
		StakePools: newGroup(poolRows, func(r StakePoolParticipant) bool { return r.HasVoted }),
		Committee:  newGroup(committeeRows, func(r CommitteeParticipant) bool { return r.HasVoted }),
	}
}

// CalculateSummary derives the turnout numbers of a population of size total
// of which voted members cast a ballot.
func CalculateSummary(total, voted int) Summary {
	if voted > total {
		voted = total
	}
	if voted < 0 {
		voted = 0
	}
	s := Summary{
		TotalEligible: total,
		TotalVoted:    voted,
		TotalMissing:  total - voted,
	}
	if total > 0 {
		pct := float64(voted) / float64(total) * 100
		s.TurnoutPercentage = &pct
	}
	return s
}

func newGroup[T any](rows []T, voted func(T) bool) Group[T] {
	n := 0
	for _, r := range rows {
		if voted(r) {
			n++
		}
	}
	return Group[T]{
		Summary:      CalculateSummary(len(rows), n),
		Participants: rows,
	}
}

// indexVotes keeps one vote per voter: the latest by block time, then by
// certificate index. On a full tie the earlier event in the input wins.
func indexVotes(votes []governance.VoteRecord) map[voterKey]governance.VoteRecord {
	latest := make(map[voterKey]governance.VoteRecord, len(votes))
	for _, v := range votes {
		k := voterKey{v.VoterIdentifier, v.VoterType}
		prev, ok := latest[k]
		if !ok || supersedes(v, prev) {
			latest[k] = v
		}
	}
	return latest
}

// LatestVotes returns the vote that counts for each voter, in the order the
// voters first appear in votes.
func LatestVotes(votes []governance.VoteRecord) []governance.VoteRecord {
	latest := indexVotes(votes)
	out := make([]governance.VoteRecord, 0, len(latest))
	seen := make(map[voterKey]bool, len(latest))
	for _, v := range votes {
		k := voterKey{v.VoterIdentifier, v.VoterType}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, latest[k])
	}
	return out
}

func supersedes(next, prev governance.VoteRecord) bool {
	if c := compareOptional(next.BlockTime, prev.BlockTime); c != 0 {
		return c > 0
	}
	return compareOptional(next.CertIndex, prev.CertIndex) > 0
}

// compareOptional orders nil before any value.
func compareOptional[T uint32 | uint64](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func voteFields(latest map[voterKey]governance.VoteRecord, k voterKey) VoteFields {
	v, ok := latest[k]
	if !ok {
		return VoteFields{}
	}
	return VoteFields{
		HasVoted:    true,
		Vote:        v.Vote,
		VotingPower: v.VotingPower,
		TxHash:      v.TxHash,
		CertIndex:   v.CertIndex,
		BlockTime:   v.BlockTime,
	}
}
