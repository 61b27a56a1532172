package yacistore

import (
	"math/big"
	"slices"
	"strings"

	"github.com/govtwool/govtwool-backend/domains/governance"
)

type amountResult struct {
	Amount *string `gorm:"column:amount"`
}

// parseAmount reads a lovelace quantity as returned by either driver.
// PostgreSQL numerics may carry a ".0" scale; anything unparseable is zero.
func parseAmount(s *string) *big.Int {
	if s == nil {
		return new(big.Int)
	}
	v := strings.TrimSpace(*s)
	if dot := strings.IndexByte(v, '.'); dot >= 0 {
		v = v[:dot]
	}
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

type tally struct {
	yes, no, abstain big.Int
}

func (t *tally) add(choice *governance.VoteChoice, weight *big.Int) {
	if choice == nil {
		return
	}
	switch *choice {
	case governance.VoteYes:
		t.yes.Add(&t.yes, weight)
	case governance.VoteNo:
		t.no.Add(&t.no, weight)
	case governance.VoteAbstain:
		t.abstain.Add(&t.abstain, weight)
	}
}

func (t *tally) result() governance.VoteTally {
	return governance.VoteTally{Yes: t.yes.String(), No: t.no.String(), Abstain: t.abstain.String()}
}

// tallyVotes expects one vote per voter.
func tallyVotes(votes []governance.VoteRecord, totalDRepStake *string) governance.ActionVotingBreakdown {
	var drep, spo, cc tally
	one := big.NewInt(1)
	for _, v := range votes {
		switch v.VoterType {
		case governance.VoterDRep:
			drep.add(v.Vote, parseAmount(v.VotingPower))
		case governance.VoterSPO:
			spo.add(v.Vote, parseAmount(v.VotingPower))
		case governance.VoterCommittee:
			cc.add(v.Vote, one)
		}
	}
	return governance.ActionVotingBreakdown{
		DRepVotes:        drep.result(),
		SPOVotes:         spo.result(),
		CCVotes:          cc.result(),
		TotalVotingPower: parseAmount(totalDRepStake).String(),
	}
}

// sortDelegators orders by balance, largest first, then by address.
func sortDelegators(ds []governance.DRepDelegator) {
	slices.SortStableFunc(ds, func(a, b governance.DRepDelegator) int {
		if c := parseAmount(b.Amount).Cmp(parseAmount(a.Amount)); c != 0 {
			return c
		}
		return strings.Compare(a.StakeAddress, b.StakeAddress)
	})
}
