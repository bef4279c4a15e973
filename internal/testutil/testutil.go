package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jmcaldera/quizwire/internal/logger"
	"github.com/jmcaldera/quizwire/internal/models"
	"github.com/jmcaldera/quizwire/internal/store"
)

// NewBank creates a question bank backed by a flat file in a temp dir.
func NewBank(t *testing.T) *store.Bank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	return store.NewBank(logger.New(), store.NewFilePersister(path))
}

// SeedQuestions adds n simple questions to the bank. Question i has correct
// answer index i % 3.
func SeedQuestions(t *testing.T, bank *store.Bank, n int) []models.Question {
	t.Helper()
	questions := make([]models.Question, n)
	for i := 0; i < n; i++ {
		q, err := bank.Add(context.Background(),
			fmt.Sprintf("Question %d?", i+1),
			[]string{"alpha", "beta", "gamma"},
			i%3,
			"general",
			"")
		if err != nil {
			t.Fatalf("seeding question %d failed: %v", i+1, err)
		}
		questions[i] = q
	}
	return questions
}
