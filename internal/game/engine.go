package game

import (
	"context"
	"math/rand"

	"github.com/jonboulle/clockwork"

	"github.com/jmcaldera/quizwire/internal/errors"
	"github.com/jmcaldera/quizwire/internal/logger"
	"github.com/jmcaldera/quizwire/internal/models"
	"github.com/jmcaldera/quizwire/internal/store"
)

// Notifier pushes outbound events to connected clients. Implementations
// must never block: the engine loop calls these inline.
type Notifier interface {
	SendTo(playerID, event string, payload any)
	SendToAdmins(event string, payload any)
	Broadcast(event string, payload any)
}

// Rules are the tunable game parameters.
type Rules struct {
	QuestionTime int  // seconds per question
	TimeBonus    int  // maximum speed bonus points
	MaxPlayers   int  // connected contestant cap
	SharedOrder  bool // lockstep mode: one shuffled order for everyone
}

// Engine owns all game state: the question bank, the player registry, each
// contestant's progress and the session phase. Every mutation, whether an
// inbound request or a countdown tick, runs as a command on a single
// goroutine, so no two mutations ever interleave and the state needs no locks.
type Engine struct {
	log    logger.Logger
	rules  Rules
	clock  clockwork.Clock
	bank   *store.Bank
	notify Notifier

	cmds   chan func()
	ctx    context.Context
	cancel context.CancelFunc

	phase    models.Phase
	registry *Registry
	progress map[string]*progress
}

// New creates an engine. Call Start before use.
func New(log logger.Logger, bank *store.Bank, notify Notifier, clock clockwork.Clock, rules Rules) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		log:      log,
		rules:    rules,
		clock:    clock,
		bank:     bank,
		notify:   notify,
		cmds:     make(chan func(), 64),
		ctx:      ctx,
		cancel:   cancel,
		phase:    models.PhaseIdle,
		registry: NewRegistry(rules.MaxPlayers),
		progress: make(map[string]*progress),
	}
}

// SetNotifier installs the outbound event sink. Must be called before
// Start when the notifier could not be passed to New, as with the
// websocket hub that itself needs the engine.
func (e *Engine) SetNotifier(notify Notifier) {
	e.notify = notify
}

// Start launches the engine loop.
func (e *Engine) Start() {
	go e.run()
}

// Stop cancels the loop and every outstanding countdown.
func (e *Engine) Stop() {
	e.cancel()
}

func (e *Engine) run() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case fn := <-e.cmds:
			fn()
		}
	}
}

// do runs fn on the engine loop and waits for it to complete, so callers
// get synchronous request/response semantics.
func (e *Engine) do(fn func()) {
	done := make(chan struct{})
	select {
	case e.cmds <- func() { fn(); close(done) }:
	case <-e.ctx.Done():
		return
	}
	select {
	case <-done:
	case <-e.ctx.Done():
	}
}

// IdentifyAdmin registers the connection as an admin and pushes the admin
// bootstrap data. Always succeeds; idempotent per connection.
func (e *Engine) IdentifyAdmin(connID string) models.Player {
	var admin models.Player
	e.do(func() {
		p := e.registry.RegisterAdmin(connID)
		admin = clonePlayer(p)
		e.log.Info("Admin registered", "id", connID)

		e.notify.SendTo(connID, models.EvAdminConfirmed, nil)
		e.sendInitData(connID)
		e.broadcastPlayerList()
	})
	return admin
}

// SendQuestionsUpdate re-sends the admin bootstrap data on request.
func (e *Engine) SendQuestionsUpdate(connID string) {
	e.do(func() {
		if p := e.registry.Get(connID); p == nil || !p.IsAdmin() {
			return
		}
		e.sendInitData(connID)
	})
}

// RegisterPlayer registers a contestant. Fails while a round is running,
// on short or colliding names, and when the roster is full.
func (e *Engine) RegisterPlayer(connID, name string) (models.Player, error) {
	var (
		player models.Player
		err    error
	)
	e.do(func() {
		if e.phase != models.PhaseIdle {
			err = errors.Conflict("the game has already started")
			return
		}

		p, regErr := e.registry.RegisterContestant(connID, name)
		if regErr != nil {
			err = regErr
			return
		}
		player = clonePlayer(p)
		e.log.Info("Player registered", "name", p.Name, "id", connID)
		e.broadcastPlayerList()
	})
	return player, err
}

// AddQuestion validates and stores a new question. A non-empty connID must
// belong to an admin; the HTTP upload path passes an empty connID.
func (e *Engine) AddQuestion(connID string, req models.AddQuestionRequest, imageURL string) (models.Question, error) {
	var (
		question models.Question
		err      error
	)
	e.do(func() {
		if connID != "" {
			if p := e.registry.Get(connID); p == nil || !p.IsAdmin() {
				err = errors.Unauthorized("admin privileges required")
				return
			}
		}

		question, err = e.bank.Add(e.ctx, req.Text, req.Options, req.CorrectIndex, req.Category, imageURL)
		if err != nil {
			return
		}
		e.log.Info("Question added", "id", question.ID, "text", question.Text)
		e.notify.SendToAdmins(models.EvQuestionAdded, question)
	})
	return question, err
}

// DeleteQuestion removes a question by id. Unknown ids are a silent no-op.
func (e *Engine) DeleteQuestion(connID, questionID string) error {
	var err error
	e.do(func() {
		if p := e.registry.Get(connID); p == nil || !p.IsAdmin() {
			err = errors.Unauthorized("admin privileges required")
			return
		}

		if removed := e.bank.Remove(e.ctx, questionID); !removed {
			e.log.Debug("Delete of unknown question", "id", questionID)
		} else {
			e.log.Info("Question deleted", "id", questionID)
		}
		e.notify.SendToAdmins(models.EvQuestionDeleted, nil)
	})
	return err
}

// StartRound begins a round: resets every connected contestant, deals each
// their own shuffled question order and starts their countdowns.
func (e *Engine) StartRound(connID string) error {
	var err error
	e.do(func() {
		if p := e.registry.Get(connID); p == nil || !p.IsAdmin() {
			err = errors.Unauthorized("admin privileges required")
			return
		}
		if e.phase == models.PhaseActive {
			err = errors.Conflict("a round is already running")
			return
		}
		if e.bank.Count() == 0 {
			err = errors.Conflict("no questions registered")
			return
		}

		contestants := e.registry.Contestants()
		if len(contestants) == 0 {
			err = errors.Conflict("no contestants connected")
			return
		}

		e.phase = models.PhaseActive
		ids := e.bank.IDs()

		// In lockstep mode everyone gets the same shuffled order; the
		// default deals an independent permutation per contestant as an
		// anti-collusion measure.
		var shared []string
		if e.rules.SharedOrder {
			shared = shuffledOrder(ids)
		}

		e.notify.Broadcast(models.EvRoundStarted, nil)

		for _, player := range contestants {
			player.Score = 0
			player.Answers = nil
			player.HasAnswered = false
			player.HasFinished = false
			player.LastResponseTime = 0

			order := shared
			if order == nil {
				order = shuffledOrder(ids)
			}

			p := &progress{
				playerID: player.ID,
				order:    order,
			}
			e.progress[player.ID] = p
			e.deal(player, p)
		}

		e.broadcastPlayerList()
		e.log.Info("Round started", "contestants", len(contestants), "questions", len(ids))
	})
	return err
}

// SubmitAnswer records a contestant's answer for their current question,
// cancels their countdown and returns the scoring outcome. The contestant
// stays on the answered question until they request the next one.
func (e *Engine) SubmitAnswer(connID string, answerIndex int) (models.SubmitAnswerAck, error) {
	var (
		ack models.SubmitAnswerAck
		err error
	)
	e.do(func() {
		player := e.registry.Get(connID)
		if player == nil {
			err = errors.NotFound("player not registered")
			return
		}
		if e.phase != models.PhaseActive {
			err = errors.Conflict("the game is not active")
			return
		}
		if player.IsAdmin() {
			err = errors.Conflict("admins cannot submit answers")
			return
		}
		if player.HasAnswered {
			err = errors.Conflict("question already answered")
			return
		}

		p, ok := e.progress[connID]
		if !ok {
			err = errors.Conflict("no question in progress")
			return
		}

		question, ok := e.bank.Get(p.order[p.index])
		if !ok {
			err = errors.NotFound("question no longer exists")
			return
		}
		if answerIndex < 0 || answerIndex >= len(question.Options) {
			err = errors.Validation("answer index out of range")
			return
		}

		// Cancel the countdown before touching any state, so a stale tick
		// cannot time out an already-answered question.
		p.stopCountdown()

		responseTime := e.rules.QuestionTime - p.timeLeft
		correct := answerIndex == question.CorrectIndex

		player.HasAnswered = true
		player.LastResponseTime = responseTime
		player.Answers = append(player.Answers, models.AnswerRecord{
			QuestionID:     question.ID,
			QuestionText:   question.Text,
			SelectedOption: question.Options[answerIndex],
			CorrectOption:  question.Options[question.CorrectIndex],
			IsCorrect:      correct,
			ResponseTime:   responseTime,
		})

		if points := Score(correct, responseTime, e.rules.QuestionTime, e.rules.TimeBonus); points > 0 {
			player.Score += points
			e.log.Info("Correct answer", "player", player.Name, "seconds", responseTime, "points", points)
		}

		e.notify.Broadcast(models.EvScoreUpdate, e.registry.Snapshot())

		ack = models.SubmitAnswerAck{
			Success:            true,
			IsCorrect:          correct,
			ResponseTime:       responseTime,
			CorrectAnswerIndex: question.CorrectIndex,
		}
	})
	return ack, err
}

// RequestNext advances the contestant to their next question. Advancement
// is client-driven after an answer; the server only self-advances on
// timeout.
func (e *Engine) RequestNext(connID string) {
	e.do(func() {
		if e.phase != models.PhaseActive {
			return
		}
		player := e.registry.Get(connID)
		p := e.progress[connID]
		if player == nil || player.IsAdmin() || p == nil {
			return
		}
		if !player.HasAnswered {
			return // current question is still open
		}
		e.advance(player, p)
	})
}

// Disconnect drops the connection's player, cancels any countdown and, if
// that player was the last unfinished contestant, ends the round.
func (e *Engine) Disconnect(connID string) {
	e.do(func() {
		if p, ok := e.progress[connID]; ok {
			p.stopCountdown()
			delete(e.progress, connID)
		}

		player := e.registry.Get(connID)
		if player == nil {
			return
		}
		e.log.Info("Player disconnected", "name", player.Name, "admin", player.IsAdmin())
		e.registry.Unregister(connID)
		e.broadcastPlayerList()

		if e.phase == models.PhaseActive {
			e.checkAllFinished()
		}
	})
}

// Questions returns the current question bank contents.
func (e *Engine) Questions() []models.Question {
	var questions []models.Question
	e.do(func() {
		questions = e.bank.List()
	})
	return questions
}

// Stats reports the current session state for the liveness endpoint.
func (e *Engine) Stats() (phase models.Phase, players, questions int) {
	e.do(func() {
		phase = e.phase
		players = e.registry.Count()
		questions = e.bank.Count()
	})
	return phase, players, questions
}

// --- loop-internal helpers (only ever called from the engine goroutine) ---

// advance moves a contestant past their current question.
func (e *Engine) advance(player *models.Player, p *progress) {
	p.stopCountdown()
	p.index++
	player.HasAnswered = false
	e.deal(player, p)
}

// deal delivers the contestant's current question and starts its countdown,
// skipping over any question deleted mid-round. When the order is exhausted
// the contestant is finished and the completion check runs. The countdown
// only ever starts for a question that was actually delivered, so a skip
// that finishes the player leaves no timer behind.
func (e *Engine) deal(player *models.Player, p *progress) {
	for ; p.index < len(p.order); p.index++ {
		question, ok := e.bank.Get(p.order[p.index])
		if !ok {
			continue
		}

		category := question.Category
		if category == "" {
			category = "default"
		}

		e.notify.SendTo(player.ID, models.EvNewQuestion, models.NewQuestionPayload{
			Question:       question.View(),
			Category:       category,
			QuestionNumber: p.index + 1,
			TotalQuestions: len(p.order),
			TimeLeft:       e.rules.QuestionTime,
		})
		e.startCountdown(p)
		return
	}

	player.HasFinished = true
	delete(e.progress, player.ID)
	e.log.Info("Player finished", "name", player.Name, "score", player.Score)
	e.checkAllFinished()
}

// checkAllFinished ends the round the moment no unfinished contestant
// remains. Guarded by the phase so it fires exactly once.
func (e *Engine) checkAllFinished() {
	if e.phase != models.PhaseActive {
		return
	}
	for _, player := range e.registry.Contestants() {
		if !player.HasFinished {
			return
		}
	}
	e.endRound()
}

// endRound computes the final ranking and broadcasts the results.
func (e *Engine) endRound() {
	e.phase = models.PhaseEnded

	for _, p := range e.progress {
		p.stopCountdown()
	}
	e.progress = make(map[string]*progress)

	var contestants []models.Player
	for _, p := range e.registry.Contestants() {
		contestants = append(contestants, clonePlayer(p))
	}
	ranked := rankContestants(contestants)

	result := models.RoundResult{
		Players:       ranked,
		Questions:     e.bank.List(),
		PlayerAnswers: make(map[string][]models.AnswerRecord, len(ranked)),
		TotalTimes:    make(map[string]int, len(ranked)),
	}
	if len(ranked) > 0 {
		result.Winner = &ranked[0]
	}

	for _, player := range ranked {
		result.PlayerAnswers[player.ID] = player.Answers
		total := 0
		for _, answer := range player.Answers {
			total += answer.ResponseTime
		}
		result.TotalTimes[player.ID] = total
	}

	e.notify.Broadcast(models.EvRoundEnded, result)
	e.log.Info("Round ended", "contestants", len(ranked))
}

func (e *Engine) sendInitData(connID string) {
	e.notify.SendTo(connID, models.EvInitData, models.InitData{
		Players:   e.registry.Snapshot(),
		Questions: e.bank.List(),
	})
}

func (e *Engine) broadcastPlayerList() {
	e.notify.Broadcast(models.EvPlayerListUpdate, e.registry.Snapshot())
}

// shuffledOrder returns a fresh random permutation of ids.
func shuffledOrder(ids []string) []string {
	order := make([]string, len(ids))
	copy(order, ids)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
