package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"aivisibility/internal/db"
	"aivisibility/internal/models"
)

// MemStore is an in-memory stand-in for *db.DB with the same error
// sentinels and ordering. It is safe for concurrent use.
type MemStore struct {
	mu          sync.Mutex
	now         time.Time
	users       []*models.User
	domains     []*models.Domain
	progress    map[uuid.UUID]*models.WizardProgress
	keywords    []*models.Keyword
	phrases     []*models.IntentPhrase
	results     []*models.AIQueryResult
	credentials []*models.Credential
}

func NewMemStore() *MemStore {
	return &MemStore{
		now:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		progress: make(map[uuid.UUID]*models.WizardProgress),
	}
}

// tick returns a strictly increasing timestamp so orderings are stable.
func (m *MemStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

// Users

func (m *MemStore) UpsertUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Sub == user.Sub {
			u.Email, u.Name, u.Picture = user.Email, user.Name, user.Picture
			u.UpdatedAt = m.tick()
			*user = *u
			return nil
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = m.tick()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users = append(m.users, &stored)
	return nil
}

func (m *MemStore) GetUserBySub(ctx context.Context, sub string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Sub == sub {
			copied := *u
			return &copied, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (m *MemStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, db.ErrUserNotFound
}

// Domains

func copyDomain(d *models.Domain) *models.Domain {
	copied := *d
	copied.Recommendations = append([]string{}, d.Recommendations...)
	return &copied
}

func (m *MemStore) CreateDomain(ctx context.Context, domain *models.Domain) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.domains {
		if d.UserID == domain.UserID && d.Host == domain.Host {
			*domain = *copyDomain(d)
			return false, nil
		}
	}
	if domain.Status == "" {
		domain.Status = models.DomainPending
	}
	domain.ID = uuid.New()
	domain.Recommendations = []string{}
	domain.CreatedAt = m.tick()
	domain.UpdatedAt = domain.CreatedAt
	m.domains = append(m.domains, copyDomain(domain))
	return true, nil
}

func (m *MemStore) findDomain(id uuid.UUID) *models.Domain {
	for _, d := range m.domains {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (m *MemStore) GetDomainByID(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d := m.findDomain(id); d != nil {
		return copyDomain(d), nil
	}
	return nil, db.ErrDomainNotFound
}

func (m *MemStore) ListDomainsForUser(ctx context.Context, userID uuid.UUID) ([]models.Domain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	domains := []models.Domain{}
	for i := len(m.domains) - 1; i >= 0; i-- {
		if m.domains[i].UserID == userID {
			domains = append(domains, *copyDomain(m.domains[i]))
		}
	}
	return domains, nil
}

func (m *MemStore) UpdateDomainStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !models.IsValidDomainStatus(status) {
		return fmt.Errorf("invalid domain status %q", status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.findDomain(id)
	if d == nil {
		return db.ErrDomainNotFound
	}
	d.Status = status
	d.UpdatedAt = m.tick()
	return nil
}

func (m *MemStore) SaveRecommendations(ctx context.Context, id uuid.UUID, recommendations []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.findDomain(id)
	if d == nil {
		return db.ErrDomainNotFound
	}
	d.Recommendations = append([]string{}, recommendations...)
	d.UpdatedAt = m.tick()
	return nil
}

// Wizard progress

func (m *MemStore) GetWizardProgress(ctx context.Context, domainID uuid.UUID) (*models.WizardProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.progress[domainID]
	if !ok {
		return nil, db.ErrProgressNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MemStore) SaveWizardProgress(ctx context.Context, domainID uuid.UUID, step int) (*models.WizardProgress, error) {
	if err := models.ValidateStep(step); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.progress[domainID]
	if !ok {
		p = &models.WizardProgress{DomainID: domainID}
		m.progress[domainID] = p
	}
	p.Step = step
	p.MaxStep = max(p.MaxStep, step)
	p.StepName = models.StepName(step)
	p.UpdatedAt = m.tick()
	copied := *p
	return &copied, nil
}

func (m *MemStore) CountDomainsByStep(ctx context.Context) (map[int]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int]int)
	for _, p := range m.progress {
		counts[p.Step]++
	}
	return counts, nil
}

// Keywords

func (m *MemStore) CreateKeyword(ctx context.Context, k *models.Keyword) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.keywords {
		if existing.DomainID == k.DomainID && strings.EqualFold(existing.Text, k.Text) {
			return db.ErrDuplicateKeyword
		}
	}
	if k.Source == "" {
		k.Source = models.KeywordCustom
	}
	k.ID = uuid.New()
	k.CreatedAt = m.tick()
	stored := *k
	m.keywords = append(m.keywords, &stored)
	return nil
}

func sortKeywords(keywords []models.Keyword, selectedFirst bool) {
	sort.SliceStable(keywords, func(i, j int) bool {
		a, b := keywords[i], keywords[j]
		if selectedFirst && a.Selected != b.Selected {
			return a.Selected
		}
		switch {
		case a.Volume != nil && b.Volume == nil:
			return true
		case a.Volume == nil && b.Volume != nil:
			return false
		case a.Volume != nil && b.Volume != nil && *a.Volume != *b.Volume:
			return *a.Volume > *b.Volume
		}
		return a.Text < b.Text
	})
}

func (m *MemStore) ListKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keywords := []models.Keyword{}
	for _, k := range m.keywords {
		if k.DomainID == domainID {
			keywords = append(keywords, *k)
		}
	}
	sortKeywords(keywords, true)
	return keywords, nil
}

func (m *MemStore) ListSelectedKeywords(ctx context.Context, domainID uuid.UUID) ([]models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keywords := []models.Keyword{}
	for _, k := range m.keywords {
		if k.DomainID == domainID && k.Selected {
			keywords = append(keywords, *k)
		}
	}
	sortKeywords(keywords, false)
	return keywords, nil
}

func (m *MemStore) DeleteKeyword(ctx context.Context, domainID, keywordID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, k := range m.keywords {
		if k.DomainID == domainID && k.ID == keywordID {
			m.keywords = append(m.keywords[:i], m.keywords[i+1:]...)
			return nil
		}
	}
	return db.ErrKeywordNotFound
}

func (m *MemStore) SetKeywordSelection(ctx context.Context, domainID uuid.UUID, keywordIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[uuid.UUID]bool, len(keywordIDs))
	for _, id := range keywordIDs {
		wanted[id] = true
	}
	found := 0
	for _, k := range m.keywords {
		if k.DomainID == domainID && wanted[k.ID] {
			found++
		}
	}
	if found != len(wanted) {
		return db.ErrKeywordNotFound
	}
	for _, k := range m.keywords {
		if k.DomainID == domainID {
			k.Selected = wanted[k.ID]
		}
	}
	return nil
}

// Intent phrases

func (m *MemStore) UpsertIntentPhrase(ctx context.Context, p *models.IntentPhrase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.phrases {
		if existing.DomainID == p.DomainID && existing.ExternalID == p.ExternalID {
			if p.KeywordID != nil {
				existing.KeywordID = p.KeywordID
			}
			if p.Keyword != "" {
				existing.Keyword = p.Keyword
			}
			existing.Text = p.Text
			if p.Intent != "" {
				existing.Intent = p.Intent
			}
			if p.RelevanceScore != nil {
				existing.RelevanceScore = p.RelevanceScore
			}
			existing.UpdatedAt = m.tick()
			p.ID, p.CreatedAt, p.UpdatedAt = existing.ID, existing.CreatedAt, existing.UpdatedAt
			return nil
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	m.phrases = append(m.phrases, &stored)
	return nil
}

func (m *MemStore) ListIntentPhrases(ctx context.Context, domainID uuid.UUID) ([]models.IntentPhrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phrases := []models.IntentPhrase{}
	for _, p := range m.phrases {
		if p.DomainID == domainID {
			phrases = append(phrases, *p)
		}
	}
	return phrases, nil
}

func (m *MemStore) GetIntentPhraseByExternalID(ctx context.Context, domainID uuid.UUID, externalID string) (*models.IntentPhrase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.phrases {
		if p.DomainID == domainID && p.ExternalID == externalID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, db.ErrPhraseNotFound
}

func (m *MemStore) DeleteIntentPhrases(ctx context.Context, domainID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	keptResults := m.results[:0]
	for _, r := range m.results {
		if r.DomainID != domainID {
			keptResults = append(keptResults, r)
		}
	}
	m.results = keptResults
	kept := m.phrases[:0]
	for _, p := range m.phrases {
		if p.DomainID != domainID {
			kept = append(kept, p)
		}
	}
	m.phrases = kept
	return nil
}

// AI query results

func (m *MemStore) InsertAIQueryResult(ctx context.Context, r *models.AIQueryResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Competitors == nil {
		r.Competitors = []string{}
	}
	r.ID = uuid.New()
	r.CreatedAt = m.tick()
	stored := *r
	stored.Competitors = append([]string{}, r.Competitors...)
	m.results = append(m.results, &stored)
	return nil
}

func (m *MemStore) ListAIQueryResults(ctx context.Context, domainID uuid.UUID) ([]models.AIQueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := []models.AIQueryResult{}
	for _, r := range m.results {
		if r.DomainID == domainID {
			results = append(results, *r)
		}
	}
	return results, nil
}

func (m *MemStore) DeleteAIQueryResults(ctx context.Context, domainID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.results[:0]
	for _, r := range m.results {
		if r.DomainID != domainID {
			kept = append(kept, r)
		}
	}
	m.results = kept
	return nil
}

func (m *MemStore) ListCompetitors(ctx context.Context, domainID uuid.UUID, host string, limit int) ([]models.CompetitorSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type agg struct {
		mentions  int
		providers map[string]bool
		phrases   map[string]bool
	}
	byDomain := make(map[string]*agg)
	for _, r := range m.results {
		if r.DomainID != domainID {
			continue
		}
		for _, c := range r.Competitors {
			c = strings.ToLower(c)
			if c == host || strings.HasSuffix(c, "."+host) {
				continue
			}
			a, ok := byDomain[c]
			if !ok {
				a = &agg{providers: map[string]bool{}, phrases: map[string]bool{}}
				byDomain[c] = a
			}
			a.mentions++
			a.providers[r.Provider] = true
			a.phrases[r.Phrase] = true
		}
	}

	competitors := []models.CompetitorSummary{}
	for name, a := range byDomain {
		competitors = append(competitors, models.CompetitorSummary{
			Domain:    name,
			Mentions:  a.mentions,
			Providers: len(a.providers),
			Phrases:   len(a.phrases),
		})
	}
	sort.Slice(competitors, func(i, j int) bool {
		if competitors[i].Mentions != competitors[j].Mentions {
			return competitors[i].Mentions > competitors[j].Mentions
		}
		return competitors[i].Domain < competitors[j].Domain
	})
	if len(competitors) > limit {
		competitors = competitors[:limit]
	}
	return competitors, nil
}

func (m *MemStore) ProviderStats(ctx context.Context, domainID uuid.UUID) ([]models.ProviderStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byKey := make(map[string]*models.ProviderStat)
	for _, r := range m.results {
		if r.DomainID != domainID {
			continue
		}
		key := r.Provider + "/" + r.Model
		s, ok := byKey[key]
		if !ok {
			s = &models.ProviderStat{Provider: r.Provider, Model: r.Model}
			byKey[key] = s
		}
		s.Total++
		switch r.Presence {
		case models.PresenceFeatured:
			s.Featured++
		case models.PresenceMentioned:
			s.Mentioned++
		case models.PresenceNotFound:
			s.NotFound++
		}
	}

	stats := []models.ProviderStat{}
	for _, s := range byKey {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Provider != stats[j].Provider {
			return stats[i].Provider < stats[j].Provider
		}
		return stats[i].Model < stats[j].Model
	})
	return stats, nil
}

// Credentials

func (m *MemStore) SaveCredential(ctx context.Context, c *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.Scopes == nil {
		c.Scopes = []string{}
	}
	for _, existing := range m.credentials {
		if existing.UserID == c.UserID && existing.Provider == c.Provider {
			existing.EncryptedRefreshToken = c.EncryptedRefreshToken
			existing.Scopes = c.Scopes
			existing.Status = models.CredentialActive
			existing.LastCheckedAt = nil
			existing.UpdatedAt = m.tick()
			*c = *existing
			return nil
		}
	}
	c.ID = uuid.New()
	c.Status = models.CredentialActive
	c.CreatedAt = m.tick()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	m.credentials = append(m.credentials, &stored)
	return nil
}

func (m *MemStore) GetCredential(ctx context.Context, userID uuid.UUID, provider string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.credentials {
		if c.UserID == userID && c.Provider == provider {
			copied := *c
			return &copied, nil
		}
	}
	return nil, db.ErrCredentialNotFound
}

func (m *MemStore) ListCredentialsForUser(ctx context.Context, userID uuid.UUID) ([]models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds := []models.Credential{}
	for _, c := range m.credentials {
		if c.UserID == userID {
			creds = append(creds, *c)
		}
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].Provider < creds[j].Provider })
	return creds, nil
}

func (m *MemStore) DeleteCredential(ctx context.Context, userID uuid.UUID, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.credentials {
		if c.UserID == userID && c.Provider == provider {
			m.credentials = append(m.credentials[:i], m.credentials[i+1:]...)
			return nil
		}
	}
	return db.ErrCredentialNotFound
}
