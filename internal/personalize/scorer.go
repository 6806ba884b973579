package personalize

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"

	"github.com/DeafMist/ai-news-dashboard/internal/models"
)

// Weights are the scoring policy constants.
type Weights struct {
	Base        int
	TopicBonus  int
	SourceBonus int
	Max         int
}

// DefaultWeights is the policy the dashboard ships with.
var DefaultWeights = Weights{Base: 1, TopicBonus: 2, SourceBonus: 3, Max: 5}

// Validate checks that the weights describe a non-empty score range.
func (w Weights) Validate() error {
	if w.TopicBonus < 0 || w.SourceBonus < 0 {
		return fmt.Errorf("score bonuses cannot be negative")
	}
	if w.Max < w.Base {
		return fmt.Errorf("max score %d is below base score %d", w.Max, w.Base)
	}
	return nil
}

const (
	justificationNone    = "No preferred topics or sources matched."
	justificationInvalid = "Invalid post data"
)

// Scorer ranks posts against a user's preferred topics and sources.
type Scorer struct {
	weights Weights
	log     *slog.Logger
}

// New builds a Scorer. A nil logger discards invalid-post warnings.
func New(w Weights, logger *slog.Logger) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scorer{weights: w, log: logger}, nil
}

// Weights returns the policy the scorer was built with.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns one PersonalizedPost per input post, ordered by descending
// relevance. Posts with equal scores keep their input order. Each result
// points at the corresponding element of posts.
func (s *Scorer) Score(posts []models.Post, preferredTopics, preferredSources []string) []models.PersonalizedPost {
	out := make([]models.PersonalizedPost, 0, len(posts))
	for i := range posts {
		out = append(out, s.scoreOne(&posts[i], preferredTopics, preferredSources))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	return out
}

func (s *Scorer) scoreOne(post *models.Post, topics, sources []string) models.PersonalizedPost {
	if err := post.Validate(); err != nil {
		key, _ := post.Key()
		s.log.Warn("scoring invalid post", slog.String("key", key), slog.Any("err", err))
		return models.PersonalizedPost{Post: post, RelevanceScore: s.weights.Base, Justification: justificationInvalid}
	}

	var (
		firstTopic string
		topicMatch bool
	)
	for _, tag := range post.Tags {
		if slices.Contains(topics, tag) {
			firstTopic, topicMatch = tag, true
			break
		}
	}
	sourceMatch := slices.Contains(sources, post.Source)

	score := s.weights.Base
	if topicMatch {
		score += s.weights.TopicBonus
	}
	if sourceMatch {
		score += s.weights.SourceBonus
	}
	score = min(score, s.weights.Max)

	justification := justificationNone
	switch {
	case topicMatch && sourceMatch:
		justification = fmt.Sprintf("Matches preferred topic '%s' and source '%s'.", firstTopic, post.Source)
	case topicMatch:
		justification = fmt.Sprintf("Matches preferred topic '%s'.", firstTopic)
	case sourceMatch:
		justification = fmt.Sprintf("Matches preferred source '%s'.", post.Source)
	}

	return models.PersonalizedPost{Post: post, RelevanceScore: score, Justification: justification}
}
