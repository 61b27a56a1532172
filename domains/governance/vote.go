package governance

import "strings"

type VoteChoice string

const (
	VoteYes     VoteChoice = "yes"
	VoteNo      VoteChoice = "no"
	VoteAbstain VoteChoice = "abstain"
)

// ParseVoteChoice reads free-text vote values coming from the indexer.
// Unknown text yields nil instead of an error.
func ParseVoteChoice(value string) *VoteChoice {
	var v VoteChoice
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes":
		v = VoteYes
	case "no":
		v = VoteNo
	case "abstain", "abstention", "abstenstion":
		v = VoteAbstain
	default:
		return nil
	}
	return &v
}

type VoterType string

const (
	VoterDRep      VoterType = "drep"
	VoterSPO       VoterType = "spo"
	VoterCommittee VoterType = "cc"
)

// ParseVoterType maps indexer voter type names onto the three voter
// categories. The second result is false for unknown names.
func ParseVoterType(value string) (VoterType, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "drep", "drep_key_hash", "drep_script_hash":
		return VoterDRep, true
	case "spo", "pool", "staking_pool_key_hash":
		return VoterSPO, true
	case "cc", "committee", "constitutional_committee_hot_key_hash", "constitutional_committee_hot_script_hash":
		return VoterCommittee, true
	}
	return "", false
}
