package handlers

import (
	"net/http"

	"github.com/jmcaldera/quizwire/internal/models"
)

// GameService is the slice of the game engine the HTTP layer needs.
type GameService interface {
	AddQuestion(connID string, req models.AddQuestionRequest, imageURL string) (models.Question, error)
	Questions() []models.Question
	Stats() (phase models.Phase, players, questions int)
}

// WebsocketServer upgrades HTTP requests into game connections.
type WebsocketServer interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Game       GameService
	Hub        WebsocketServer
	Log        HTTPLogger
	UploadsDir string
	JoinURL    string
}

// New creates a new Handlers instance with all dependencies
func New(game GameService, hub WebsocketServer, log HTTPLogger, uploadsDir, joinURL string) *Handlers {
	return &Handlers{
		Game:       game,
		Hub:        hub,
		Log:        log,
		UploadsDir: uploadsDir,
		JoinURL:    joinURL,
	}
}
