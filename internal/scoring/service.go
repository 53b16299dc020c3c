package scoring

import (
	"context"
	"log"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

// Result summarizes a scoring pass over a campaign.
type Result struct {
	Total    int `json:"total"`
	Scored   int `json:"scored"`
	Eligible int `json:"eligible"`
	Skipped  int `json:"skipped"`
}

// Service scores TESTED prospects and records their eligibility.
type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// Run scores all TESTED prospects of a campaign, or the explicitly listed
// ones. Explicitly listed SCORED prospects are re-scored; prospects in any
// other status, or without any run, are skipped and counted, not failed.
func (s *Service) Run(ctx context.Context, campaignID string, prospectIDs []string) (*Result, error) {
	var prospects []*domain.Prospect
	if len(prospectIDs) > 0 {
		for _, id := range prospectIDs {
			p, err := s.store.GetProspect(ctx, id)
			if err != nil {
				if err == repository.ErrNotFound {
					continue
				}
				return nil, err
			}
			prospects = append(prospects, p)
		}
	} else {
		var err error
		prospects, err = s.store.ListProspects(ctx, campaignID, domain.StatusTested)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{Total: len(prospects)}
	for _, p := range prospects {
		// TESTED prospects move to SCORED; already-SCORED ones are re-scored
		// in place after new runs. Anything else is left untouched.
		if p.Status != domain.StatusTested && p.Status != domain.StatusScored {
			log.Printf("[Scoring] prospect %s in status %s, skipped", p.ID, p.Status)
			result.Skipped++
			continue
		}

		runs, err := s.store.ListRuns(ctx, p.ID)
		if err != nil {
			return result, err
		}
		if len(runs) == 0 {
			log.Printf("[Scoring] prospect %s has no run, skipped", p.ID)
			result.Skipped++
			continue
		}

		emailOK, emailJustif := EmailOK(runs)
		score, scoreJustif, stable := ComputeScore(p, runs, emailOK)

		p.EligibilityFlag = emailOK
		p.IAVisibilityScore = &score
		p.ScoreJustification = emailJustif + "\n\n" + scoreJustif
		if len(stable) > MaxStableCompetitors {
			stable = stable[:MaxStableCompetitors]
		}
		p.CompetitorsCited = stable
		if p.Status == domain.StatusTested {
			if err := p.Transition(domain.StatusScored); err != nil {
				return result, err
			}
		}
		if err := s.store.UpdateProspect(ctx, p); err != nil {
			return result, err
		}

		result.Scored++
		if emailOK {
			result.Eligible++
		}
	}
	return result, nil
}
