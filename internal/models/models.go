package models

import "encoding/json"

// Role identifies what a connected participant is allowed to do.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleContestant Role = "contestant"
)

// Phase is the lifecycle state of the quiz session.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
	PhaseEnded  Phase = "ended"
)

// Question is a single trivia question with exactly three options.
// Immutable once created; removed only by deletion.
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctAnswer"`
	Category     string   `json:"category,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// QuestionView is the contestant-facing projection of a Question.
// The correct index is withheld until the answer ack.
type QuestionView struct {
	ID       string   `json:"id"`
	Text     string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

// View returns the sanitized projection of q.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:       q.ID,
		Text:     q.Text,
		Options:  q.Options,
		Category: q.Category,
		ImageURL: q.ImageURL,
	}
}

// AnswerRecord is an immutable snapshot of one answered question.
// Text is copied by value so later question deletion cannot rewrite history.
type AnswerRecord struct {
	QuestionID     string `json:"questionId"`
	QuestionText   string `json:"questionText"`
	SelectedOption string `json:"selectedOption"`
	CorrectOption  string `json:"correctOption"`
	IsCorrect      bool   `json:"isCorrect"`
	ResponseTime   int    `json:"responseTime"`
}

// Player is a connected participant, admin or contestant.
type Player struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Role             Role           `json:"role"`
	Connected        bool           `json:"connected"`
	Score            int            `json:"score"`
	HasAnswered      bool           `json:"hasAnswered"`
	HasFinished      bool           `json:"hasFinished"`
	LastResponseTime int            `json:"lastResponseTime"`
	Answers          []AnswerRecord `json:"answers"`
}

// IsAdmin reports whether the player holds the admin capability.
func (p *Player) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ClientMessage is the inbound wire envelope. Payload stays raw until the
// gateway knows the event type. A non-zero Seq requests an ack.
type ClientMessage struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage is the outbound wire envelope. Seq is set only on acks.
type ServerMessage struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound event types.
const (
	EvIdentifyAdmin          = "identify-as-admin"
	EvRegisterPlayer         = "register-player"
	EvAddQuestion            = "add-question"
	EvDeleteQuestion         = "delete-question"
	EvStartRound             = "start-round"
	EvSubmitAnswer           = "submit-answer"
	EvRequestNextQuestion    = "request-next-question"
	EvRequestQuestionsUpdate = "request-questions-update"
)

// Outbound event types.
const (
	EvAck              = "ack"
	EvAdminConfirmed   = "admin-confirmed"
	EvAdminError       = "admin-error"
	EvInitData         = "init-data"
	EvQuestionAdded    = "question-added"
	EvQuestionDeleted  = "question-deleted"
	EvRoundStarted     = "round-started"
	EvNewQuestion      = "new-question"
	EvTimeUpdate       = "time-update"
	EvScoreUpdate      = "score-update"
	EvRoundEnded       = "round-ended"
	EvPlayerListUpdate = "player-list-update"

	// Push variants of the ack payloads, used when the client did not
	// request an ack.
	EvRegistrationResult = "registration-result"
	EvAnswerResult       = "answer-result"
)

// RegisterPlayerRequest is the payload of a register-player event.
type RegisterPlayerRequest struct {
	Name string `json:"name"`
}

// AddQuestionRequest is the payload of an add-question event.
type AddQuestionRequest struct {
	Text         string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctAnswer"`
	Category     string   `json:"category,omitempty"`
}

// DeleteQuestionRequest is the payload of a delete-question event.
type DeleteQuestionRequest struct {
	QuestionID string `json:"questionId"`
}

// SubmitAnswerRequest is the payload of a submit-answer event.
type SubmitAnswerRequest struct {
	AnswerIndex int `json:"answerIndex"`
}

// Ack is the generic acknowledgement payload.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RegisterAck acknowledges a successful registration.
type RegisterAck struct {
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Player  *Player `json:"player,omitempty"`
}

// SubmitAnswerAck carries the scoring outcome back to the contestant.
type SubmitAnswerAck struct {
	Success            bool   `json:"success"`
	Error              string `json:"error,omitempty"`
	IsCorrect          bool   `json:"isCorrect"`
	ResponseTime       int    `json:"responseTime"`
	CorrectAnswerIndex int    `json:"correctAnswerIndex"`
}

// InitData is pushed to admins on connect and on request.
type InitData struct {
	Players   []Player   `json:"players"`
	Questions []Question `json:"questions"`
}

// NewQuestionPayload delivers the next question to one contestant.
type NewQuestionPayload struct {
	Question       QuestionView `json:"question"`
	Category       string       `json:"category"`
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
	TimeLeft       int          `json:"timeLeft"`
}

// RoundResult is the round-ended payload broadcast to everyone.
type RoundResult struct {
	Winner        *Player                   `json:"winner"`
	Players       []Player                  `json:"players"`
	Questions     []Question                `json:"questions"`
	PlayerAnswers map[string][]AnswerRecord `json:"playerAnswers"`
	TotalTimes    map[string]int            `json:"totalTimes"`
}
