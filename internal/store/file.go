package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmcaldera/quizwire/internal/models"
)

// FilePersister stores the question bank as a single JSON file, rewritten
// wholesale on every save. A missing file on load means an empty bank.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister writing to path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) Load(_ context.Context) ([]models.Question, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", p.path, err)
	}

	var questions []models.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.path, err)
	}
	return questions, nil
}

func (p *FilePersister) Save(_ context.Context, questions []models.Question) error {
	if questions == nil {
		questions = []models.Question{}
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p.path, err)
	}
	return nil
}
