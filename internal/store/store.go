package store

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jmcaldera/quizwire/internal/errors"
	"github.com/jmcaldera/quizwire/internal/logger"
	"github.com/jmcaldera/quizwire/internal/models"
)

// OptionCount is the fixed number of options every question carries.
const OptionCount = 3

// Persister is the load/save collaborator behind the in-memory bank.
// Save rewrites the whole collection on every mutation.
type Persister interface {
	Load(ctx context.Context) ([]models.Question, error)
	Save(ctx context.Context, questions []models.Question) error
}

// Bank is the in-memory ordered question collection. It is owned by the
// engine loop: all mutations happen on a single goroutine, so the bank
// carries no locks. Persistence failures are logged and never propagate;
// the in-memory copy stays authoritative for the process lifetime.
type Bank struct {
	log       logger.Logger
	persister Persister
	questions []models.Question
}

// NewBank creates an empty bank backed by the given persister.
func NewBank(log logger.Logger, persister Persister) *Bank {
	return &Bank{
		log:       log,
		persister: persister,
	}
}

// Load seeds the bank from the persister. A load failure leaves the bank
// empty and is reported to the caller so startup can log it.
func (b *Bank) Load(ctx context.Context) error {
	questions, err := b.persister.Load(ctx)
	if err != nil {
		return err
	}
	b.questions = questions
	return nil
}

// Add validates the fields, assigns a fresh id, appends the question and
// persists the updated bank.
func (b *Bank) Add(ctx context.Context, text string, options []string, correctIndex int, category, imageURL string) (models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Question{}, errors.Validation("question text is required")
	}

	if len(options) != OptionCount {
		return models.Question{}, errors.Validationf("exactly %d options are required", OptionCount)
	}

	trimmed := make([]string, OptionCount)
	for i, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return models.Question{}, errors.Validation("options cannot be empty")
		}
		trimmed[i] = opt
	}

	if correctIndex < 0 || correctIndex >= OptionCount {
		return models.Question{}, errors.Validationf("correct answer index must be between 0 and %d", OptionCount-1)
	}

	question := models.Question{
		ID:           uuid.NewString(),
		Text:         text,
		Options:      trimmed,
		CorrectIndex: correctIndex,
		Category:     strings.TrimSpace(category),
		ImageURL:     imageURL,
	}

	b.questions = append(b.questions, question)
	b.save(ctx)

	return question, nil
}

// Remove deletes a question by id, reporting whether it existed.
func (b *Bank) Remove(ctx context.Context, id string) bool {
	for i, q := range b.questions {
		if q.ID == id {
			b.questions = append(b.questions[:i], b.questions[i+1:]...)
			b.save(ctx)
			return true
		}
	}
	return false
}

// Get returns the question with the given id.
func (b *Bank) Get(id string) (models.Question, bool) {
	for _, q := range b.questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.Question{}, false
}

// List returns a copy of the bank in insertion order.
func (b *Bank) List() []models.Question {
	out := make([]models.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// IDs returns the question ids in insertion order.
func (b *Bank) IDs() []string {
	ids := make([]string, len(b.questions))
	for i, q := range b.questions {
		ids[i] = q.ID
	}
	return ids
}

// Count returns the number of questions in the bank.
func (b *Bank) Count() int {
	return len(b.questions)
}

func (b *Bank) save(ctx context.Context) {
	if err := b.persister.Save(ctx, b.questions); err != nil {
		b.log.Error("Failed to persist question bank", "error", err, "questions", len(b.questions))
	}
}
