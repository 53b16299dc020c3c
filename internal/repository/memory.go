package repository

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/eurkai/prospecting/internal/domain"
)

// MemoryStore keeps everything in maps, optionally snapshotted to a JSON
// file after each mutation. It is the default backend when no DATABASE_URL
// is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	campaigns map[string]*domain.Campaign
	prospects map[string]*domain.Prospect
	runs      map[string][]*domain.TestRun // keyed by prospect id, insertion order
	snapshot  string
}

type memorySnapshot struct {
	Campaigns []*domain.Campaign  `json:"campaigns"`
	Prospects []*domain.Prospect  `json:"prospects"`
	Runs      [][]*domain.TestRun `json:"runs"`
}

// NewMemoryStore creates an empty store. If snapshotPath is non-empty the
// store loads existing state from it and writes it back after each mutation.
func NewMemoryStore(snapshotPath string) *MemoryStore {
	s := &MemoryStore{
		campaigns: make(map[string]*domain.Campaign),
		prospects: make(map[string]*domain.Prospect),
		runs:      make(map[string][]*domain.TestRun),
		snapshot:  snapshotPath,
	}
	if snapshotPath != "" {
		if err := s.load(); err != nil && !os.IsNotExist(err) {
			log.Printf("[MemoryStore] snapshot load failed: %v", err)
		}
	}
	return s
}

func (s *MemoryStore) load() error {
	data, err := os.ReadFile(s.snapshot)
	if err != nil {
		return err
	}
	var snap memorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	for _, c := range snap.Campaigns {
		s.campaigns[c.ID] = c
	}
	for _, p := range snap.Prospects {
		s.prospects[p.ID] = p
	}
	for _, runs := range snap.Runs {
		if len(runs) > 0 {
			s.runs[runs[0].ProspectID] = runs
		}
	}
	return nil
}

// persist writes the snapshot. Callers hold at least a read lock.
func (s *MemoryStore) persist() {
	if s.snapshot == "" {
		return
	}
	snap := memorySnapshot{}
	for _, c := range s.campaigns {
		snap.Campaigns = append(snap.Campaigns, c)
	}
	for _, p := range s.prospects {
		snap.Prospects = append(snap.Prospects, p)
	}
	for _, runs := range s.runs {
		snap.Runs = append(snap.Runs, runs)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("[MemoryStore] snapshot marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(s.snapshot, data, 0o644); err != nil {
		log.Printf("[MemoryStore] snapshot write failed: %v", err)
	}
}

func (s *MemoryStore) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.campaigns[c.ID] = &cp
	s.persist()
	return nil
}

func (s *MemoryStore) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *MemoryStore) ListCampaigns(_ context.Context) ([]*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateCampaign(_ context.Context, c *domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	s.campaigns[c.ID] = &cp
	s.persist()
	return nil
}

func (s *MemoryStore) CreateProspect(_ context.Context, p *domain.Prospect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.prospects[p.ID] = &cp
	s.persist()
	return nil
}

func (s *MemoryStore) GetProspect(_ context.Context, id string) (*domain.Prospect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prospects[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetProspectByToken(_ context.Context, token string) (*domain.Prospect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.prospects {
		if p.LandingToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListProspects(_ context.Context, campaignID string, status domain.ProspectStatus) ([]*domain.Prospect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Prospect
	for _, p := range s.prospects {
		if p.CampaignID != campaignID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	// Score descending, unscored last, id as tiebreaker for stable output.
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].IAVisibilityScore, out[j].IAVisibilityScore
		switch {
		case si == nil && sj == nil:
			return out[i].ID < out[j].ID
		case si == nil:
			return false
		case sj == nil:
			return true
		case *si != *sj:
			return *si > *sj
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out, nil
}

func (s *MemoryStore) UpdateProspect(_ context.Context, p *domain.Prospect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prospects[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	cp.UpdatedAt = time.Now().UTC()
	p.UpdatedAt = cp.UpdatedAt
	s.prospects[p.ID] = &cp
	s.persist()
	return nil
}

func (s *MemoryStore) CountProspects(_ context.Context, campaignID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.prospects {
		if p.CampaignID == campaignID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateRun(_ context.Context, r *domain.TestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ProspectID] = append(s.runs[r.ProspectID], &cp)
	s.persist()
	return nil
}

func (s *MemoryStore) ListRuns(_ context.Context, prospectID string) ([]*domain.TestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := s.runs[prospectID]
	out := make([]*domain.TestRun, len(runs))
	for i, r := range runs {
		cp := *r
		out[i] = &cp
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}
