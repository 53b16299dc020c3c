// Package assets gates outreach readiness: a prospect may only reach
// READY_TO_SEND once both outreach assets exist and eligibility is confirmed.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eurkai/prospecting/internal/domain"
	"github.com/eurkai/prospecting/internal/repository"
)

// ErrMissingVideoURL and ErrMissingScreenshotURL reject empty asset inputs.
var (
	ErrMissingVideoURL      = errors.New("video_url est obligatoire")
	ErrMissingScreenshotURL = errors.New("screenshot_url est obligatoire")
)

// GateError explains why the READY_TO_SEND gate refused a prospect.
type GateError struct {
	Reasons []string
}

func (e *GateError) Error() string {
	return "Gate READY_TO_SEND bloquée : " + strings.Join(e.Reasons, " | ")
}

// Service records assets and enforces the READY_TO_SEND gate.
type Service struct {
	store repository.Store
}

func NewService(store repository.Store) *Service {
	return &Service{store: store}
}

// SetAssets stores both asset URLs on the prospect and, when the prospect is
// SCORED, advances it to READY_ASSETS.
func (s *Service) SetAssets(ctx context.Context, prospectID, videoURL, screenshotURL string) (*domain.Prospect, error) {
	videoURL = strings.TrimSpace(videoURL)
	screenshotURL = strings.TrimSpace(screenshotURL)
	if videoURL == "" {
		return nil, ErrMissingVideoURL
	}
	if screenshotURL == "" {
		return nil, ErrMissingScreenshotURL
	}

	p, err := s.store.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	p.VideoURL = videoURL
	p.ScreenshotURL = screenshotURL
	if p.Status == domain.StatusScored {
		if err := p.Transition(domain.StatusReadyAssets); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateProspect(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkReadyToSend advances a prospect to READY_TO_SEND. The gate is strict:
// both assets, a positive eligibility flag and the READY_ASSETS status are
// required, and every unmet condition is reported.
func (s *Service) MarkReadyToSend(ctx context.Context, prospectID string) (*domain.Prospect, error) {
	p, err := s.store.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	var reasons []string
	if p.VideoURL == "" {
		reasons = append(reasons, "video_url manquante")
	}
	if p.ScreenshotURL == "" {
		reasons = append(reasons, "screenshot_url manquante")
	}
	if !p.EligibilityFlag {
		reasons = append(reasons, "prospect non éligible (EMAIL_OK = False)")
	}
	if p.Status != domain.StatusReadyAssets {
		reasons = append(reasons, fmt.Sprintf("statut actuel '%s' — attendu READY_ASSETS", p.Status))
	}
	if len(reasons) > 0 {
		return nil, &GateError{Reasons: reasons}
	}

	if err := p.Transition(domain.StatusReadyToSend); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProspect(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkSentManual records that the operator sent the outreach by hand.
func (s *Service) MarkSentManual(ctx context.Context, prospectID string) (*domain.Prospect, error) {
	p, err := s.store.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	if err := p.Transition(domain.StatusSentManual); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProspect(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
