// Package catalog reads quiz items from YAML catalog files and loads them
// into a catalog repository.
//
// A catalog file looks like:
//
//	items:
//	  - id: 1
//	    media_ref: CQACAgIAAxkBAAIBY2Zk
//	    right_answer: Bohemian Rhapsody
//	    wrong_answers: [Hotel California, Stairway to Heaven, Imagine]
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"melodybot/internal/domain"
	"melodybot/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type file struct {
	Items []fileItem `yaml:"items"`
}

type fileItem struct {
	ID           uint64   `yaml:"id"`
	MediaRef     string   `yaml:"media_ref"`
	RightAnswer  string   `yaml:"right_answer"`
	WrongAnswers []string `yaml:"wrong_answers"`
}

// Parse decodes and validates every item of a catalog file. Unknown keys,
// duplicate ids and invalid items reject the whole file.
func Parse(r io.Reader) ([]*domain.QuizItem, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var f file
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	items := make([]*domain.QuizItem, 0, len(f.Items))
	seen := make(map[uint64]bool, len(f.Items))
	for n, raw := range f.Items {
		if seen[raw.ID] {
			return nil, fmt.Errorf("item #%d: duplicate id %d", n+1, raw.ID)
		}
		seen[raw.ID] = true

		if len(raw.WrongAnswers) != domain.WrongAnswersCount {
			return nil, fmt.Errorf("item #%d (id %d): %w: want %d wrong answers, got %d",
				n+1, raw.ID, domain.ErrInvalidItem, domain.WrongAnswersCount, len(raw.WrongAnswers))
		}

		item := &domain.QuizItem{
			ID:          raw.ID,
			MediaRef:    raw.MediaRef,
			RightAnswer: raw.RightAnswer,
		}
		copy(item.WrongAnswers[:], raw.WrongAnswers)

		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item #%d: %w", n+1, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// Import stores items in order and returns how many were stored before
// the first failure
func Import(ctx context.Context, repo repository.CatalogRepository, items []*domain.QuizItem, logger *zap.Logger) (int, error) {
	for n, item := range items {
		if err := repo.PutItem(ctx, item); err != nil {
			return n, fmt.Errorf("import item %d: %w", item.ID, err)
		}
		logger.Debug("Item imported", zap.Uint64("item_id", item.ID))
	}

	logger.Info("Catalog imported", zap.Int("items", len(items)))
	return len(items), nil
}
