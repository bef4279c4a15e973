package game

import (
	"context"
	"time"

	"github.com/jmcaldera/quizwire/internal/models"
)

// progress is a contestant's private cursor through their assigned question
// order plus the live countdown state. One instance exists per contestant
// while a round is active; it is created at round start and destroyed on
// finish, round end, or disconnect.
type progress struct {
	playerID string
	order    []string // permutation of all question ids
	index    int
	timeLeft int

	// generation guards against stale ticks: every countdown restart bumps
	// it, and ticks carrying an older generation are discarded by the loop.
	generation uint64
	cancel     context.CancelFunc
}

// stopCountdown cancels the outstanding countdown, if any, and invalidates
// ticks already in flight. Must run before any other effect on the player,
// so a stale timer can never fire against updated state.
func (p *progress) stopCountdown() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
}

// startCountdown resets the remaining time and launches a fresh ticker
// goroutine for this contestant. Ticks are funneled back into the engine
// loop; the goroutine itself never touches game state.
func (e *Engine) startCountdown(p *progress) {
	p.stopCountdown()
	p.timeLeft = e.rules.QuestionTime

	ctx, cancel := context.WithCancel(e.ctx)
	p.cancel = cancel

	go e.runCountdown(ctx, p.playerID, p.generation)
}

func (e *Engine) runCountdown(ctx context.Context, playerID string, generation uint64) {
	ticker := e.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			select {
			case <-ctx.Done():
				return
			case e.cmds <- func() { e.handleTick(playerID, generation) }:
			}
		}
	}
}

// handleTick runs on the engine loop once per countdown second.
func (e *Engine) handleTick(playerID string, generation uint64) {
	p, ok := e.progress[playerID]
	if !ok || p.generation != generation {
		return // stale timer
	}

	p.timeLeft--
	e.notify.SendTo(playerID, models.EvTimeUpdate, p.timeLeft)

	if p.timeLeft > 0 {
		return
	}

	player := e.registry.Get(playerID)
	if player == nil {
		return
	}

	// Time ran out: answered-by-timeout, no score, and the server advances
	// on its own (no client action required).
	p.stopCountdown()
	player.HasAnswered = true
	e.log.Debug("Question timed out", "player", player.Name, "question", p.index+1)
	e.advance(player, p)
}
