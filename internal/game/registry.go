package game

import (
	"sort"
	"strings"

	"github.com/jmcaldera/quizwire/internal/errors"
	"github.com/jmcaldera/quizwire/internal/models"
)

// MinNameLength is the minimum trimmed length of a contestant name.
const MinNameLength = 3

// Registry tracks connected participants. It is owned by the engine loop:
// all access happens on a single goroutine, so it carries no locks.
type Registry struct {
	max     int
	players map[string]*models.Player
	order   []string // connection ids in registration order
}

// NewRegistry creates a registry capped at max connected contestants.
func NewRegistry(max int) *Registry {
	return &Registry{
		max:     max,
		players: make(map[string]*models.Player),
	}
}

// RegisterAdmin adds (or refreshes) an admin for the given connection.
// Always succeeds and is idempotent per connection.
func (r *Registry) RegisterAdmin(connID string) *models.Player {
	if existing, ok := r.players[connID]; ok && existing.IsAdmin() {
		return existing
	}

	suffix := connID
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}

	admin := &models.Player{
		ID:        connID,
		Name:      "Admin-" + suffix,
		Role:      models.RoleAdmin,
		Connected: true,
	}
	r.put(admin)
	return admin
}

// RegisterContestant validates and adds a contestant for the connection.
// The phase gate (no joining once a round is active) lives in the engine.
func (r *Registry) RegisterContestant(connID, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinNameLength {
		return nil, errors.Validationf("name must be at least %d characters", MinNameLength)
	}

	for id, p := range r.players {
		if id == connID || !p.Connected || p.IsAdmin() {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return nil, errors.Conflict("name already in use")
		}
	}

	if r.ContestantCount() >= r.max {
		return nil, errors.Conflict("player limit reached")
	}

	contestant := &models.Player{
		ID:        connID,
		Name:      name,
		Role:      models.RoleContestant,
		Connected: true,
	}
	r.put(contestant)
	return contestant, nil
}

// Unregister removes the player for the connection, reporting whether one
// existed. Admins and contestants alike are dropped entirely.
func (r *Registry) Unregister(connID string) bool {
	if _, ok := r.players[connID]; !ok {
		return false
	}
	delete(r.players, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the player for a connection, or nil.
func (r *Registry) Get(connID string) *models.Player {
	return r.players[connID]
}

// Contestants returns the connected non-admin players in registration order.
func (r *Registry) Contestants() []*models.Player {
	var out []*models.Player
	for _, id := range r.order {
		if p := r.players[id]; p != nil && !p.IsAdmin() {
			out = append(out, p)
		}
	}
	return out
}

// ContestantCount returns the number of connected contestants.
func (r *Registry) ContestantCount() int {
	n := 0
	for _, p := range r.players {
		if !p.IsAdmin() && p.Connected {
			n++
		}
	}
	return n
}

// Count returns the total number of connected players, admins included.
func (r *Registry) Count() int {
	return len(r.players)
}

// Snapshot returns value copies of every connected player, suitable for
// handing to the gateway without sharing engine-owned memory.
func (r *Registry) Snapshot() []models.Player {
	out := make([]models.Player, 0, len(r.players))
	for _, id := range r.order {
		p := r.players[id]
		if p == nil {
			continue
		}
		out = append(out, clonePlayer(p))
	}
	return out
}

func (r *Registry) put(p *models.Player) {
	if _, ok := r.players[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.players[p.ID] = p
}

// clonePlayer copies a player including its answer history.
func clonePlayer(p *models.Player) models.Player {
	c := *p
	if p.Answers != nil {
		c.Answers = make([]models.AnswerRecord, len(p.Answers))
		copy(c.Answers, p.Answers)
	}
	return c
}

// rankContestants orders players by descending score, ties broken by
// ascending last response time (faster wins).
func rankContestants(players []models.Player) []models.Player {
	ranked := make([]models.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].LastResponseTime < ranked[j].LastResponseTime
	})
	return ranked
}
