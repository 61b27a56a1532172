package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/govtwool/govtwool-backend/domains/governance"
	"github.com/govtwool/govtwool-backend/domains/participation"
	"github.com/govtwool/govtwool-backend/pkg/cip129"
	pkgError "github.com/govtwool/govtwool-backend/pkg/error"
	"github.com/govtwool/govtwool-backend/providers"
	"github.com/govtwool/govtwool-backend/validations"
)

// populationPageSize is the page size used to walk the full DRep and pool
// populations.
const populationPageSize = validations.MaxPageSize

// maxPopulationPages stops a walk over a store that keeps reporting more
// pages.
const maxPopulationPages = 10_000

type participationService struct {
	router *providers.CachedProviderRouter
}

func NewParticipationService(router *providers.CachedProviderRouter) participation.IParticipationUsecase {
	return &participationService{router: router}
}

// GetActionParticipation reports which eligible DReps, pools and committee
// members voted on an action. The report is cached per normalized action id.
func (s *participationService) GetActionParticipation(ctx context.Context, actionID string) (participation.ActionVoterParticipation, error) {
	if err := validations.ValidateIdentifier(ctx, "action_id", actionID); err != nil {
		return participation.ActionVoterParticipation{}, err
	}
	id := normalizeActionID(actionID)

	action, err := s.router.GetGovernanceAction(ctx, id)
	if err != nil {
		return participation.ActionVoterParticipation{}, err
	}
	if action == nil {
		return participation.ActionVoterParticipation{}, pkgError.NotFoundError(fmt.Sprintf("governance action %s not found", actionID))
	}

	return providers.Cached(ctx, s.router, providers.OpActionParticipation, providers.ClassOf(providers.OpActionParticipation), []any{action.ActionID},
		func(ctx context.Context) (participation.ActionVoterParticipation, error) {
			return s.build(ctx, *action)
		})
}

func (s *participationService) build(ctx context.Context, action governance.GovernanceAction) (participation.ActionVoterParticipation, error) {
	var (
		votes     []governance.VoteRecord
		dreps     []participation.EligibleDRep
		pools     []participation.EligiblePool
		committee []governance.CommitteeMember
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		votes, err = s.router.GetActionVoteRecords(gctx, action)
		return err
	})
	g.Go(func() error {
		var err error
		dreps, err = s.activeDReps(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pools, err = s.livePools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		committee, err = s.router.GetCommitteeMembers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return participation.ActionVoterParticipation{}, fmt.Errorf("failed to collect participation of %s: %w", action.ActionID, err)
	}

	report := participation.BuildActionParticipation(action.ActionID, dreps, pools, committee, votes)
	logrus.WithFields(logrus.Fields{
		"action":    action.ActionID,
		"votes":     len(votes),
		"dreps":     report.DReps.Summary.TotalVoted,
		"pools":     report.StakePools.Summary.TotalVoted,
		"committee": report.Committee.Summary.TotalVoted,
	}).Debug("[PARTICIPATION] report built")
	return report, nil
}

func (s *participationService) activeDReps(ctx context.Context) ([]participation.EligibleDRep, error) {
	var out []participation.EligibleDRep
	for page := 1; page <= maxPopulationPages; page++ {
		res, err := s.router.GetDRepsPage(ctx, governance.DRepsQuery{
			Page:   page,
			Count:  populationPageSize,
			Status: governance.DRepStatusActive,
		})
		if err != nil {
			return nil, err
		}
		for _, d := range res.DReps {
			out = append(out, eligibleDRep(d))
		}
		if !res.HasMore || len(res.DReps) == 0 {
			break
		}
	}
	return out, nil
}

func (s *participationService) livePools(ctx context.Context) ([]participation.EligiblePool, error) {
	var out []participation.EligiblePool
	for page := 1; page <= maxPopulationPages; page++ {
		res, err := s.router.GetStakePoolsPage(ctx, page, populationPageSize)
		if err != nil {
			return nil, err
		}
		for _, p := range res.Pools {
			out = append(out, participation.EligiblePool{
				PoolID:      p.PoolID,
				Ticker:      p.Ticker,
				Name:        p.Name,
				Description: p.Description,
				Homepage:    p.Homepage,
			})
		}
		if !res.HasMore || len(res.Pools) == 0 {
			break
		}
	}
	return out, nil
}

// eligibleDRep keys the DRep by its CIP-129 id, the form vote records use.
func eligibleDRep(d governance.DRep) participation.EligibleDRep {
	return participation.EligibleDRep{
		DRepID:     cip129.NormalizeDRepIDOrOriginal(d.DRepID),
		GivenName:  d.GivenName,
		View:       d.View,
		Hex:        d.Hex,
		HasProfile: d.HasProfile,
	}
}
