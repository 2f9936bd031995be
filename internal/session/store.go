package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// Store manages calculator sessions in memory. It owns the leg id counter
// and the minimum-one-leg invariant; persistence is layered on top by the
// service through its cache.
type Store struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*models.Session
	defaultOdds string
	maxLegs     int
	logger      zerolog.Logger
}

// StoreConfig holds session store configuration
type StoreConfig struct {
	DefaultOdds string // e.g. "-110"
	MaxLegs     int
}

// NewStore creates a new session store
func NewStore(config StoreConfig, logger zerolog.Logger) *Store {
	return &Store{
		sessions:    make(map[uuid.UUID]*models.Session),
		defaultOdds: config.DefaultOdds,
		maxLegs:     config.MaxLegs,
		logger:      logger.With().Str("component", "session_store").Logger(),
	}
}

// Create starts a new session holding one default leg and the given stake.
func (s *Store) Create(stake decimal.Decimal) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := &models.Session{
		ID:        uuid.New(),
		Stake:     stake,
		Legs:      []models.Leg{{ID: 1, YourOdds: s.defaultOdds}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess

	s.logger.Debug().Str("session_id", sess.ID.String()).Msg("created session")
	return snapshot(sess)
}

// Get returns a copy of the session, or an error if it does not exist.
func (s *Store) Get(id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return snapshot(sess), nil
}

// Restore installs a previously persisted session, replacing any in-memory
// state under the same id.
func (s *Store) Restore(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = snapshot(sess)
}

// AddLeg appends a leg with the next monotonic id and default odds.
// Ids are never recycled within a session: the counter is max existing + 1.
func (s *Store) AddLeg(id uuid.UUID) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if s.maxLegs > 0 && len(sess.Legs) >= s.maxLegs {
		return nil, fmt.Errorf("session %s already has %d legs, limit is %d", id, len(sess.Legs), s.maxLegs)
	}

	nextID := 1
	for _, leg := range sess.Legs {
		if leg.ID >= nextID {
			nextID = leg.ID + 1
		}
	}

	sess.Legs = append(sess.Legs, models.Leg{ID: nextID, YourOdds: s.defaultOdds})
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// UpdateLeg mutates a leg in place by id.
func (s *Store) UpdateLeg(id uuid.UUID, leg models.Leg) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}

	for i := range sess.Legs {
		if sess.Legs[i].ID == leg.ID {
			sess.Legs[i] = leg
			sess.UpdatedAt = time.Now().UTC()
			return snapshot(sess), nil
		}
	}
	return nil, fmt.Errorf("leg %d not found in session %s", leg.ID, id)
}

// RemoveLeg deletes a leg by id. A leg collection never becomes empty:
// removing the last remaining leg is a no-op, not an error.
func (s *Store) RemoveLeg(id uuid.UUID, legID int) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if len(sess.Legs) <= 1 {
		return snapshot(sess), nil
	}

	for i := range sess.Legs {
		if sess.Legs[i].ID == legID {
			sess.Legs = append(sess.Legs[:i], sess.Legs[i+1:]...)
			sess.UpdatedAt = time.Now().UTC()
			break
		}
	}

	// Drop any preview exclusion pointing at the removed leg.
	excluded := sess.PreviewExcluded[:0]
	for _, eid := range sess.PreviewExcluded {
		if eid != legID {
			excluded = append(excluded, eid)
		}
	}
	sess.PreviewExcluded = excluded

	return snapshot(sess), nil
}

// SetStake replaces the session stake.
func (s *Store) SetStake(id uuid.UUID, stake decimal.Decimal) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	sess.Stake = stake
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// SetBookTotal replaces the book-quoted total odds string.
func (s *Store) SetBookTotal(id uuid.UUID, odds string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	sess.BookTotalOdds = odds
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// TogglePreview flips whether a leg is excluded from what-if evaluation.
func (s *Store) TogglePreview(id uuid.UUID, legID int) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}

	for i, eid := range sess.PreviewExcluded {
		if eid == legID {
			sess.PreviewExcluded = append(sess.PreviewExcluded[:i], sess.PreviewExcluded[i+1:]...)
			sess.UpdatedAt = time.Now().UTC()
			return snapshot(sess), nil
		}
	}
	sess.PreviewExcluded = append(sess.PreviewExcluded, legID)
	sess.UpdatedAt = time.Now().UTC()
	return snapshot(sess), nil
}

// ToRequest converts a session into an evaluation request, dropping
// preview-excluded legs.
func ToRequest(sess *models.Session) *models.EvaluationRequest {
	excluded := make(map[int]bool, len(sess.PreviewExcluded))
	for _, id := range sess.PreviewExcluded {
		excluded[id] = true
	}

	legs := make([]models.Leg, 0, len(sess.Legs))
	for _, leg := range sess.Legs {
		if !excluded[leg.ID] {
			legs = append(legs, leg)
		}
	}

	return &models.EvaluationRequest{
		RequestID:     sess.ID.String(),
		Stake:         sess.Stake.String(),
		Legs:          legs,
		BookTotalOdds: sess.BookTotalOdds,
	}
}

// snapshot copies a session so callers never share the store's slices.
func snapshot(sess *models.Session) *models.Session {
	cp := *sess
	cp.Legs = append([]models.Leg(nil), sess.Legs...)
	if sess.PreviewExcluded != nil {
		cp.PreviewExcluded = append([]int(nil), sess.PreviewExcluded...)
	}
	return &cp
}
