// Package store is the content-state store: the voice profile, drafts and
// personas of one user session, kept in memory and mirrored to a kv.Store.
//
// Public operations never fail. Load errors fall back to empty defaults per
// key and write errors are logged; the in-memory state stays authoritative
// for the rest of the session.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/ghostwriter/internal/kv"
	"github.com/debemdeboas/ghostwriter/internal/model"
)

// Collection names one persisted value. It doubles as its storage key.
type Collection string

const (
	CollectionVoiceProfile Collection = "voiceProfile"
	CollectionDrafts       Collection = "drafts"
	CollectionPersonas     Collection = "personas"
)

// Snapshot is a consistent copy of everything the store exposes.
type Snapshot struct {
	VoiceProfile  *string         `json:"voiceProfile"`
	Drafts        []model.Draft   `json:"drafts"`
	Personas      []model.Persona `json:"personas"`
	IsInitialized bool            `json:"isInitialized"`
}

type Store struct {
	mu sync.RWMutex
	kv kv.Store

	logger zerolog.Logger
	now    func() time.Time
	newID  func() string

	notifier func(Collection)

	initialized  bool
	voiceProfile *string
	drafts       []model.Draft
	personas     []model.Persona
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(backend kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:       backend,
		logger:   zerolog.Nop(),
		now:      time.Now,
		newID:    newID,
		drafts:   []model.Draft{},
		personas: []model.Persona{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SetChangeNotifier sets a function that is called after every mutation
// with the collection that changed. It runs outside the store lock.
func (s *Store) SetChangeNotifier(notifier func(Collection)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = notifier
}

func (s *Store) notify(c Collection) {
	s.mu.RLock()
	notifier := s.notifier
	s.mu.RUnlock()

	if notifier != nil {
		notifier(c)
	}
}

// Init loads the three collections. Each key is loaded on its own; a
// missing or corrupt value leaves that collection at its default. Calling
// Init on a ready store does nothing.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}

	if profile, err := s.loadVoiceProfile(); err != nil {
		s.logger.Error().Err(err).Str("key", string(CollectionVoiceProfile)).Msg("Error loading voice profile")
	} else {
		s.voiceProfile = profile
	}

	if drafts, err := s.loadDrafts(); err != nil {
		s.logger.Error().Err(err).Str("key", string(CollectionDrafts)).Msg("Error loading drafts")
	} else {
		s.drafts = drafts
	}

	if personas, err := s.loadPersonas(); err != nil {
		s.logger.Error().Err(err).Str("key", string(CollectionPersonas)).Msg("Error loading personas")
	} else {
		s.personas = personas
	}

	s.initialized = true
	s.logger.Info().
		Bool("voice_profile", s.voiceProfile != nil).
		Int("drafts", len(s.drafts)).
		Int("personas", len(s.personas)).
		Msg("Store initialized")
}

func (s *Store) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Store) read(key Collection) ([]byte, bool, error) {
	data, err := s.kv.Get(string(key))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading %s: %w", key, err)
	}
	return data, true, nil
}

func (s *Store) loadVoiceProfile() (*string, error) {
	data, ok, err := s.read(CollectionVoiceProfile)
	if err != nil || !ok {
		return nil, err
	}
	return DecodeVoiceProfile(data)
}

func (s *Store) loadDrafts() ([]model.Draft, error) {
	data, ok, err := s.read(CollectionDrafts)
	if err != nil || !ok {
		return []model.Draft{}, err
	}
	drafts, err := DecodeDrafts(data)
	if err != nil {
		return []model.Draft{}, err
	}
	if drafts == nil {
		drafts = []model.Draft{}
	}
	return drafts, nil
}

func (s *Store) loadPersonas() ([]model.Persona, error) {
	data, ok, err := s.read(CollectionPersonas)
	if err != nil || !ok {
		return []model.Persona{}, err
	}
	personas, err := DecodePersonas(data)
	if err != nil {
		return []model.Persona{}, err
	}
	if personas == nil {
		personas = []model.Persona{}
	}
	return personas, nil
}

func (s *Store) saveVoiceProfile() error {
	if s.voiceProfile == nil {
		return s.kv.Delete(string(CollectionVoiceProfile))
	}
	data, err := encode(*s.voiceProfile)
	if err != nil {
		return err
	}
	return s.kv.Set(string(CollectionVoiceProfile), data)
}

func (s *Store) saveDrafts() error {
	data, err := encode(s.drafts)
	if err != nil {
		return err
	}
	return s.kv.Set(string(CollectionDrafts), data)
}

func (s *Store) savePersonas() error {
	data, err := encode(s.personas)
	if err != nil {
		return err
	}
	return s.kv.Set(string(CollectionPersonas), data)
}

// persist runs save with the lock held and logs any failure.
func (s *Store) persist(c Collection, save func() error) {
	if err := save(); err != nil {
		s.logger.Error().Err(err).Str("key", string(c)).Msg("Error persisting state; keeping in-memory value")
		return
	}
	s.logger.Debug().Str("key", string(c)).Msg("State persisted")
}

// mutate applies fn under the write lock. When fn reports a change, the
// collection is persisted and the notifier fires. Before Init it does
// nothing, so an unloaded collection never overwrites the persisted one.
func (s *Store) mutate(c Collection, save func() error, fn func() bool) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		s.logger.Warn().Str("key", string(c)).Msg("Mutation before Init ignored")
		return
	}
	changed := fn()
	if changed {
		s.persist(c, save)
	}
	s.mu.Unlock()

	if changed {
		s.notify(c)
	}
}

func (s *Store) VoiceProfile() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneString(s.voiceProfile)
}

// SetVoiceProfile replaces the voice profile. nil or an empty string clears
// it and removes the persisted key.
func (s *Store) SetVoiceProfile(profile *string) {
	s.mutate(CollectionVoiceProfile, s.saveVoiceProfile, func() bool {
		if profile == nil || *profile == "" {
			s.voiceProfile = nil
		} else {
			s.voiceProfile = cloneString(profile)
		}
		return true
	})
}

// Drafts returns a copy of the drafts, newest first.
func (s *Store) Drafts() []model.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDrafts(s.drafts)
}

func (s *Store) Draft(id model.DraftID) (model.Draft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.draftIndex(id); i >= 0 {
		return s.drafts[i].Clone(), true
	}
	return model.Draft{}, false
}

func (s *Store) draftIndex(id model.DraftID) int {
	return slices.IndexFunc(s.drafts, func(d model.Draft) bool { return d.ID == id })
}

// AddDraft stores a new unscheduled draft and returns it.
func (s *Store) AddDraft(nd model.NewDraft) model.Draft {
	draft := model.Draft{
		ID:        model.DraftID(s.newID()),
		Topic:     nd.Topic,
		Format:    nd.Format,
		Content:   nd.Content,
		CreatedAt: s.now().UTC(),
	}

	s.mutate(CollectionDrafts, s.saveDrafts, func() bool {
		// Prepending keeps same-instant drafts newest first after the stable sort.
		s.drafts = append([]model.Draft{draft}, s.drafts...)
		sortDrafts(s.drafts)
		return true
	})

	s.logger.Info().Str("draft_id", string(draft.ID)).Str("format", draft.Format).Msg("Draft added")
	return draft.Clone()
}

// DeleteDraft removes the draft if present. Deleting an unknown id does
// nothing.
func (s *Store) DeleteDraft(id model.DraftID) {
	s.mutate(CollectionDrafts, s.saveDrafts, func() bool {
		i := s.draftIndex(id)
		if i < 0 {
			return false
		}
		s.drafts = slices.Delete(s.drafts, i, i+1)
		return true
	})
}

// ScheduleDraft places the draft on the calendar at when.
func (s *Store) ScheduleDraft(id model.DraftID, when time.Time) {
	s.mutate(CollectionDrafts, s.saveDrafts, func() bool {
		i := s.draftIndex(id)
		if i < 0 {
			return false
		}
		t := when.UTC()
		s.drafts[i].ScheduledDate = &t
		return true
	})
}

func (s *Store) UnscheduleDraft(id model.DraftID) {
	s.mutate(CollectionDrafts, s.saveDrafts, func() bool {
		i := s.draftIndex(id)
		if i < 0 {
			return false
		}
		s.drafts[i].ScheduledDate = nil
		return true
	})
}

// UpdateDraftContent replaces the body of a draft. The creation time and
// schedule are kept.
func (s *Store) UpdateDraftContent(id model.DraftID, content string) {
	s.mutate(CollectionDrafts, s.saveDrafts, func() bool {
		i := s.draftIndex(id)
		if i < 0 {
			return false
		}
		s.drafts[i].Content = content
		return true
	})
}

// ScheduledOn returns the drafts scheduled on the calendar day of day, as
// seen in loc. A nil loc uses day's location.
func (s *Store) ScheduledOn(day time.Time, loc *time.Location) []model.Draft {
	if loc == nil {
		loc = day.Location()
	}
	y, m, d := day.In(loc).Date()

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.Draft{}
	for _, draft := range s.drafts {
		if draft.ScheduledDate == nil {
			continue
		}
		sy, sm, sd := draft.ScheduledDate.In(loc).Date()
		if sy == y && sm == m && sd == d {
			result = append(result, draft.Clone())
		}
	}
	return result
}

func (s *Store) Unscheduled() []model.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []model.Draft{}
	for _, draft := range s.drafts {
		if draft.ScheduledDate == nil {
			result = append(result, draft)
		}
	}
	return result
}

// Personas returns a copy of the personas in insertion order.
func (s *Store) Personas() []model.Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.personas)
}

func (s *Store) Persona(id model.PersonaID) (model.Persona, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.personaIndex(id); i >= 0 {
		return s.personas[i], true
	}
	return model.Persona{}, false
}

func (s *Store) personaIndex(id model.PersonaID) int {
	return slices.IndexFunc(s.personas, func(p model.Persona) bool { return p.ID == id })
}

// AddPersona appends a new persona and returns it. Personas are never
// re-sorted.
func (s *Store) AddPersona(np model.NewPersona) model.Persona {
	persona := model.Persona{
		ID:          model.PersonaID(s.newID()),
		Name:        np.Name,
		Description: np.Description,
	}

	s.mutate(CollectionPersonas, s.savePersonas, func() bool {
		s.personas = append(s.personas, persona)
		return true
	})

	s.logger.Info().Str("persona_id", string(persona.ID)).Msg("Persona added")
	return persona
}

func (s *Store) DeletePersona(id model.PersonaID) {
	s.mutate(CollectionPersonas, s.savePersonas, func() bool {
		i := s.personaIndex(id)
		if i < 0 {
			return false
		}
		s.personas = slices.Delete(s.personas, i, i+1)
		return true
	})
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		VoiceProfile:  cloneString(s.voiceProfile),
		Drafts:        cloneDrafts(s.drafts),
		Personas:      slices.Clone(s.personas),
		IsInitialized: s.initialized,
	}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneDrafts(drafts []model.Draft) []model.Draft {
	out := make([]model.Draft, len(drafts))
	for i, d := range drafts {
		out[i] = d.Clone()
	}
	return out
}
