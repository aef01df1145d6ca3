package tips

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// Match is a tip returned by Search with its relevance score.
type Match struct {
	Tip   Tip     `json:"tip"`
	Score float64 `json:"score"`
}

// Repo stores tips with their embeddings.
type Repo interface {
	ListSlugs(ctx context.Context) ([]string, error)
	AddTip(ctx context.Context, tip Tip, embedding []float32) error
	SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]Match, error)
}

// Service picks and searches calming tips.
type Service struct {
	embedder Embedder
	repo     Repo
	catalog  []Tip
	topK     int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService returns a tip service. embedder and repo may be nil, in which
// case Search matches keywords over the in-memory catalog.
func NewService(embedder Embedder, repo Repo, topK int, rng *rand.Rand) *Service {
	if topK <= 0 {
		topK = 3
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		embedder: embedder,
		repo:     repo,
		catalog:  Catalog(),
		topK:     topK,
		rng:      rng,
	}
}

// Random returns a uniformly chosen general-purpose tip.
func (s *Service) Random() Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return baseCatalog[s.rng.Intn(len(baseCatalog))]
}

// Search returns up to k tips relevant to query. A non-positive k uses the
// configured default.
func (s *Service) Search(ctx context.Context, query string, k int) ([]Match, error) {
	query = strings.TrimSpace(query)
	if k <= 0 {
		k = s.topK
	}
	if query == "" {
		return nil, nil
	}

	if s.embedder == nil || s.repo == nil {
		return s.keywordSearch(query, k), nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed tip query: %w", err)
	}
	matches, err := s.repo.SearchSimilar(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search tips: %w", err)
	}
	if len(matches) == 0 {
		slog.Debug("no stored tips matched, using keyword search", "query", query)
		return s.keywordSearch(query, k), nil
	}
	return matches, nil
}

// Seed embeds and stores catalog tips that are not stored yet. It returns
// the number of tips added.
func (s *Service) Seed(ctx context.Context) (int, error) {
	if s.embedder == nil || s.repo == nil {
		return 0, fmt.Errorf("tip seeding requires an embedder and a repository")
	}

	existing, err := s.repo.ListSlugs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list stored tips: %w", err)
	}
	stored := make(map[string]bool, len(existing))
	for _, slug := range existing {
		stored[slug] = true
	}

	added := 0
	for _, tip := range s.catalog {
		if stored[tip.Slug] {
			continue
		}
		vec, err := s.embedder.EmbedTip(ctx, tip)
		if err != nil {
			return added, fmt.Errorf("failed to embed tip %s: %w", tip.Slug, err)
		}
		if err := s.repo.AddTip(ctx, tip, vec); err != nil {
			return added, fmt.Errorf("failed to store tip %s: %w", tip.Slug, err)
		}
		added++
	}
	slog.Info("tips seeded", "added", added, "existing", len(existing))
	return added, nil
}

// keywordSearch scores tips by how many query words appear in their text or tags.
func (s *Service) keywordSearch(query string, k int) []Match {
	words := strings.Fields(strings.ToLower(query))
	var matches []Match
	for _, tip := range s.catalog {
		haystack := strings.ToLower(tip.Text() + " " + strings.Join(tip.Tags, " "))
		hits := 0
		for _, w := range words {
			if strings.Contains(haystack, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, Match{Tip: tip, Score: float64(hits) / float64(len(words))})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}
