package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/ghostwriter/internal/kv"
	"github.com/debemdeboas/ghostwriter/internal/model"
)

// fakeClock hands out strictly increasing timestamps unless frozen.
type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	step   time.Duration
	frozen bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), step: time.Minute}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.t = c.t.Add(c.step)
	}
	return c.t
}

// failingKV fails every write with err.
type failingKV struct {
	kv.Store
	err error
}

func (f failingKV) Set(string, []byte) error { return f.err }
func (f failingKV) Delete(string) error      { return f.err }

// brokenKV fails reads for a single key.
type brokenKV struct {
	kv.Store
	key string
}

func (b brokenKV) Get(key string) ([]byte, error) {
	if key == b.key {
		return nil, errors.New("disk on fire")
	}
	return b.Store.Get(key)
}

func newTestStore(t *testing.T, backend kv.Store, opts ...Option) *Store {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithLogger(zerolog.Nop())}, opts...)
	s := New(backend, opts...)
	s.Init()
	return s
}

func ptr(s string) *string { return &s }

func TestInit(t *testing.T) {
	t.Run("Uninitialized until Init", func(t *testing.T) {
		s := New(kv.NewMemoryStore(0))
		if s.IsInitialized() {
			t.Error("Expected new store to be uninitialized")
		}
		if len(s.Drafts()) != 0 || len(s.Personas()) != 0 || s.VoiceProfile() != nil {
			t.Error("Expected empty defaults before Init")
		}

		s.Init()
		if !s.IsInitialized() {
			t.Error("Expected store to be initialized after Init")
		}
	})

	t.Run("Empty substrate loads empty collections", func(t *testing.T) {
		s := newTestStore(t, kv.NewMemoryStore(0))
		snap := s.Snapshot()

		want := Snapshot{Drafts: []model.Draft{}, Personas: []model.Persona{}, IsInitialized: true}
		if diff := cmp.Diff(want, snap); diff != "" {
			t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Init twice keeps state", func(t *testing.T) {
		backend := kv.NewMemoryStore(0)
		s := newTestStore(t, backend)
		s.AddDraft(model.NewDraft{Topic: "X"})

		// Someone else clobbers the substrate; the ready store must not reload.
		if err := backend.Set("drafts", []byte(`[]`)); err != nil {
			t.Fatal(err)
		}
		s.Init()
		if len(s.Drafts()) != 1 {
			t.Errorf("Expected 1 draft after second Init, got %d", len(s.Drafts()))
		}
	})
}

func TestMutationsBeforeInitAreIgnored(t *testing.T) {
	backend := kv.NewMemoryStore(0)
	persisted := `[{"id":"d1","topic":"Saved","format":"Tweet","content":"x","createdAt":"2024-01-01T10:00:00Z"}]`
	if err := backend.Set("drafts", []byte(persisted)); err != nil {
		t.Fatal(err)
	}
	if err := backend.Set("voiceProfile", []byte(`"Wry"`)); err != nil {
		t.Fatal(err)
	}

	s := New(backend, WithLogger(zerolog.Nop()))
	notified := 0
	s.SetChangeNotifier(func(Collection) { notified++ })

	s.AddDraft(model.NewDraft{Topic: "Early"})
	s.DeleteDraft("d1")
	s.SetVoiceProfile(nil)
	s.AddPersona(model.NewPersona{Name: "Early"})

	if got, _ := backend.Get("drafts"); string(got) != persisted {
		t.Errorf("Expected persisted drafts untouched, got %s", got)
	}
	if _, err := backend.Get("voiceProfile"); err != nil {
		t.Errorf("Expected persisted voice profile untouched, got %v", err)
	}
	if notified != 0 {
		t.Errorf("Expected no notifications before Init, got %d", notified)
	}

	s.Init()
	drafts := s.Drafts()
	if len(drafts) != 1 || drafts[0].ID != "d1" {
		t.Errorf("Expected the persisted draft after Init, got %+v", drafts)
	}
	if p := s.VoiceProfile(); p == nil || *p != "Wry" {
		t.Errorf("Expected persisted voice profile after Init, got %v", p)
	}
	if n := len(s.Personas()); n != 0 {
		t.Errorf("Expected no personas, got %d", n)
	}
}

func TestInitIsolatesCorruptKeys(t *testing.T) {
	seed := func(t *testing.T) *kv.MemoryStore {
		t.Helper()
		backend := kv.NewMemoryStore(0)
		s := newTestStore(t, backend)
		s.SetVoiceProfile(ptr("Short sentences. No adverbs."))
		s.AddDraft(model.NewDraft{Topic: "X", Format: "Tweet", Content: "hi"})
		s.AddPersona(model.NewPersona{Name: "CTO", Description: "Cares about cost and risk."})
		return backend
	}

	tests := []struct {
		name    string
		key     string
		value   string
		voice   bool
		drafts  int
		persons int
	}{
		{"corrupt drafts", "drafts", `{not json`, true, 0, 1},
		{"drafts of wrong shape", "drafts", `{"id":"1"}`, true, 0, 1},
		{"draft missing id", "drafts", `[{"topic":"X","createdAt":"2024-01-01T00:00:00Z"}]`, true, 0, 1},
		{"draft missing createdAt", "drafts", `[{"id":"1","topic":"X"}]`, true, 0, 1},
		{"corrupt personas", "personas", `[{"id":""}]`, true, 1, 0},
		{"corrupt voice profile", "voiceProfile", `42`, false, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := seed(t)
			if err := backend.Set(tt.key, []byte(tt.value)); err != nil {
				t.Fatal(err)
			}

			s := newTestStore(t, backend)
			if !s.IsInitialized() {
				t.Fatal("Expected store to reach ready state despite corrupt key")
			}
			if got := s.VoiceProfile() != nil; got != tt.voice {
				t.Errorf("Expected voice profile present=%v, got %v", tt.voice, got)
			}
			if got := len(s.Drafts()); got != tt.drafts {
				t.Errorf("Expected %d drafts, got %d", tt.drafts, got)
			}
			if got := len(s.Personas()); got != tt.persons {
				t.Errorf("Expected %d personas, got %d", tt.persons, got)
			}
		})
	}

	t.Run("read error on one key", func(t *testing.T) {
		backend := seed(t)
		s := newTestStore(t, brokenKV{Store: backend, key: "personas"})

		if len(s.Personas()) != 0 {
			t.Error("Expected personas to default to empty")
		}
		if len(s.Drafts()) != 1 || s.VoiceProfile() == nil {
			t.Error("Expected the other keys to load")
		}
	})
}

func TestDraftsSortedNewestFirst(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))

	for i := range 10 {
		s.AddDraft(model.NewDraft{Topic: fmt.Sprintf("topic %d", i), Format: "Tweet"})

		drafts := s.Drafts()
		if !slices.IsSortedFunc(drafts, func(a, b model.Draft) int { return -a.CreatedAt.Compare(b.CreatedAt) }) {
			t.Fatalf("Drafts not sorted newest first after %d adds", i+1)
		}
		if drafts[0].Topic != fmt.Sprintf("topic %d", i) {
			t.Errorf("Expected newest draft first, got %q", drafts[0].Topic)
		}
	}
}

func TestDraftsSameInstantNewestFirst(t *testing.T) {
	clock := newFakeClock()
	clock.frozen = true
	s := newTestStore(t, kv.NewMemoryStore(0), WithClock(clock.Now))

	a := s.AddDraft(model.NewDraft{Topic: "A"})
	b := s.AddDraft(model.NewDraft{Topic: "B"})

	drafts := s.Drafts()
	if drafts[0].ID != b.ID || drafts[1].ID != a.ID {
		t.Errorf("Expected [B, A], got [%s, %s]", drafts[0].Topic, drafts[1].Topic)
	}
}

func TestDeleteDraftIsIdempotent(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))
	keep := s.AddDraft(model.NewDraft{Topic: "keep"})
	gone := s.AddDraft(model.NewDraft{Topic: "gone"})

	s.DeleteDraft(gone.ID)
	s.DeleteDraft(gone.ID)
	s.DeleteDraft("never-existed")

	drafts := s.Drafts()
	if len(drafts) != 1 || drafts[0].ID != keep.ID {
		t.Errorf("Expected only %q to remain, got %v", keep.ID, drafts)
	}
}

func TestScheduleUnschedule(t *testing.T) {
	backend := kv.NewMemoryStore(0)
	s := newTestStore(t, backend)
	d := s.AddDraft(model.NewDraft{Topic: "X"})
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s.ScheduleDraft(d.ID, when)
	got, _ := s.Draft(d.ID)
	if got.ScheduledDate == nil || !got.ScheduledDate.Equal(when) {
		t.Fatalf("Expected scheduled date %v, got %v", when, got.ScheduledDate)
	}

	s.UnscheduleDraft(d.ID)
	got, _ = s.Draft(d.ID)
	if got.ScheduledDate != nil {
		t.Errorf("Expected scheduled date to be absent, got %v", *got.ScheduledDate)
	}

	raw, err := backend.Get("drafts")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "scheduledDate") {
		t.Errorf("Expected scheduledDate to be omitted from persisted draft, got %s", raw)
	}

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := s.Drafts()
		s.ScheduleDraft("missing", when)
		s.UnscheduleDraft("missing")
		if diff := cmp.Diff(before, s.Drafts()); diff != "" {
			t.Errorf("Drafts changed (-before +after):\n%s", diff)
		}
	})
}

func TestScenario(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))

	s.AddDraft(model.NewDraft{Topic: "X", Format: "Tweet", Content: "hi"})
	drafts := s.Drafts()
	if len(drafts) != 1 {
		t.Fatalf("Expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].IsScheduled() {
		t.Error("Expected new draft to be unscheduled")
	}

	id := drafts[0].ID
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.ScheduleDraft(id, when)
	if d, _ := s.Draft(id); d.ScheduledDate == nil || !d.ScheduledDate.Equal(when) {
		t.Errorf("Expected scheduled date %v, got %v", when, d.ScheduledDate)
	}

	s.UnscheduleDraft(id)
	if d, _ := s.Draft(id); d.IsScheduled() {
		t.Error("Expected draft to be unscheduled again")
	}

	s.DeleteDraft(id)
	if len(s.Drafts()) != 0 {
		t.Errorf("Expected no drafts, got %d", len(s.Drafts()))
	}
}

func TestRoundTrip(t *testing.T) {
	backend := kv.NewMemoryStore(0)
	s := newTestStore(t, backend)

	s.SetVoiceProfile(ptr("Warm, direct, a little dry."))
	first := s.AddDraft(model.NewDraft{Topic: "Go", Format: "Blog Post Outline", Content: "# Go"})
	s.AddDraft(model.NewDraft{Topic: "Rust", Format: "Tweet", Content: "crabs"})
	s.AddDraft(model.NewDraft{Topic: "Zig", Format: "LinkedIn Post", Content: "zig"})
	s.ScheduleDraft(first.ID, time.Date(2024, 2, 14, 15, 30, 0, 0, time.FixedZone("BRT", -3*3600)))
	s.AddPersona(model.NewPersona{Name: "A", Description: "first persona"})
	s.AddPersona(model.NewPersona{Name: "B", Description: "second persona"})

	reloaded := newTestStore(t, backend)
	if diff := cmp.Diff(s.Snapshot(), reloaded.Snapshot()); diff != "" {
		t.Errorf("Reloaded store differs (-saved +reloaded):\n%s", diff)
	}
}

func TestDecodeSortsOutOfOrderDrafts(t *testing.T) {
	backend := kv.NewMemoryStore(0)
	blob := `[
		{"id":"old","topic":"old","format":"","content":"","createdAt":"2023-01-01T00:00:00Z","scheduledDate":null},
		{"id":"new","topic":"new","format":"","content":"","createdAt":"2024-01-01T00:00:00Z"}
	]`
	if err := backend.Set("drafts", []byte(blob)); err != nil {
		t.Fatal(err)
	}

	s := newTestStore(t, backend)
	drafts := s.Drafts()
	if len(drafts) != 2 || drafts[0].ID != "new" {
		t.Fatalf("Expected [new, old], got %v", drafts)
	}
	if drafts[1].ScheduledDate != nil {
		t.Error("Expected null scheduledDate to decode as absent")
	}
}

func TestSetVoiceProfile(t *testing.T) {
	t.Run("nil removes the persisted key", func(t *testing.T) {
		backend := kv.NewMemoryStore(0)
		s := newTestStore(t, backend)

		s.SetVoiceProfile(ptr("Punchy."))
		s.SetVoiceProfile(nil)

		if _, err := backend.Get("voiceProfile"); !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("Expected key to be removed, got %v", err)
		}
		if got := newTestStore(t, backend).VoiceProfile(); got != nil {
			t.Errorf("Expected nil voice profile after reload, got %q", *got)
		}
	})

	t.Run("empty string clears", func(t *testing.T) {
		backend := kv.NewMemoryStore(0)
		s := newTestStore(t, backend)

		s.SetVoiceProfile(ptr("Punchy."))
		s.SetVoiceProfile(ptr(""))

		if s.VoiceProfile() != nil {
			t.Error("Expected empty voice profile to be treated as absent")
		}
		if _, err := backend.Get("voiceProfile"); !errors.Is(err, kv.ErrNotFound) {
			t.Errorf("Expected key to be removed, got %v", err)
		}
	})

	t.Run("caller cannot mutate stored value", func(t *testing.T) {
		s := newTestStore(t, kv.NewMemoryStore(0))
		profile := "Punchy."
		s.SetVoiceProfile(&profile)
		profile = "changed"

		got := s.VoiceProfile()
		*got = "also changed"
		if v := s.VoiceProfile(); v == nil || *v != "Punchy." {
			t.Errorf("Expected stored profile to be isolated, got %v", v)
		}
	})
}

func TestPersonasKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))

	a := s.AddPersona(model.NewPersona{Name: "A", Description: "persona A"})
	b := s.AddPersona(model.NewPersona{Name: "B", Description: "persona B"})
	c := s.AddPersona(model.NewPersona{Name: "C", Description: "persona C"})

	want := []model.Persona{a, b, c}
	if diff := cmp.Diff(want, s.Personas()); diff != "" {
		t.Errorf("Personas mismatch (-want +got):\n%s", diff)
	}

	s.DeletePersona(b.ID)
	s.DeletePersona(b.ID)
	if diff := cmp.Diff([]model.Persona{a, c}, s.Personas()); diff != "" {
		t.Errorf("Personas after delete mismatch (-want +got):\n%s", diff)
	}

	if p, ok := s.Persona(c.ID); !ok || p.Name != "C" {
		t.Errorf("Expected to find persona C, got %v %v", p, ok)
	}
	if _, ok := s.Persona(b.ID); ok {
		t.Error("Expected deleted persona to be gone")
	}
}

func TestUniqueIDs(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))
	seen := make(map[model.DraftID]bool)
	for range 500 {
		d := s.AddDraft(model.NewDraft{Topic: "same"})
		if seen[d.ID] {
			t.Fatalf("Duplicate id %q", d.ID)
		}
		seen[d.ID] = true
	}
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	t.Run("write errors", func(t *testing.T) {
		s := newTestStore(t, failingKV{Store: kv.NewMemoryStore(0), err: errors.New("unavailable")})

		s.SetVoiceProfile(ptr("Punchy."))
		d := s.AddDraft(model.NewDraft{Topic: "X"})
		s.ScheduleDraft(d.ID, time.Now())
		s.AddPersona(model.NewPersona{Name: "A", Description: "persona A"})

		if s.VoiceProfile() == nil || len(s.Drafts()) != 1 || len(s.Personas()) != 1 {
			t.Error("Expected in-memory state to survive write failures")
		}
		if got, _ := s.Draft(d.ID); !got.IsScheduled() {
			t.Error("Expected schedule to apply in memory")
		}
	})

	t.Run("quota exceeded", func(t *testing.T) {
		backend := kv.NewMemoryStore(256)
		s := newTestStore(t, backend)

		s.AddDraft(model.NewDraft{Topic: "small"})
		big := s.AddDraft(model.NewDraft{Topic: "big", Content: strings.Repeat("x", 1024)})

		if _, ok := s.Draft(big.ID); !ok {
			t.Fatal("Expected oversized draft to be kept in memory")
		}

		// The substrate still holds the last write that fit.
		reloaded := newTestStore(t, backend)
		if n := len(reloaded.Drafts()); n != 1 {
			t.Errorf("Expected 1 durably saved draft, got %d", n)
		}
	})
}

func TestUpdateDraftContent(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))
	d := s.AddDraft(model.NewDraft{Topic: "X", Content: "v1"})

	s.UpdateDraftContent(d.ID, "v2")
	s.UpdateDraftContent("missing", "v3")

	got, ok := s.Draft(d.ID)
	if !ok {
		t.Fatal("Expected draft to exist")
	}
	if got.Content != "v2" {
		t.Errorf("Expected content v2, got %q", got.Content)
	}
	if !got.CreatedAt.Equal(d.CreatedAt) {
		t.Errorf("Expected createdAt to be unchanged, got %v", got.CreatedAt)
	}
}

func TestCalendarViews(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))
	brt := time.FixedZone("BRT", -3*3600)

	late := s.AddDraft(model.NewDraft{Topic: "late"})
	morning := s.AddDraft(model.NewDraft{Topic: "morning"})
	loose := s.AddDraft(model.NewDraft{Topic: "loose"})

	// 23:30 BRT on the 1st is already the 2nd in UTC.
	s.ScheduleDraft(late.ID, time.Date(2024, 3, 1, 23, 30, 0, 0, brt))
	s.ScheduleDraft(morning.ID, time.Date(2024, 3, 1, 9, 0, 0, 0, brt))

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, brt)
	ids := func(drafts []model.Draft) []model.DraftID {
		out := make([]model.DraftID, 0, len(drafts))
		for _, d := range drafts {
			out = append(out, d.ID)
		}
		return out
	}

	if diff := cmp.Diff([]model.DraftID{morning.ID, late.ID}, ids(s.ScheduledOn(day, brt))); diff != "" {
		t.Errorf("ScheduledOn in BRT mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.DraftID{morning.ID}, ids(s.ScheduledOn(day, time.UTC))); diff != "" {
		t.Errorf("ScheduledOn in UTC mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.DraftID{loose.ID}, ids(s.Unscheduled())); diff != "" {
		t.Errorf("Unscheduled mismatch (-want +got):\n%s", diff)
	}
}

func TestChangeNotifier(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))

	var got []Collection
	s.SetChangeNotifier(func(c Collection) {
		// Reading from the notifier must not deadlock.
		_ = s.Snapshot()
		got = append(got, c)
	})

	d := s.AddDraft(model.NewDraft{Topic: "X"})
	s.DeleteDraft("missing")
	s.ScheduleDraft(d.ID, time.Now())
	p := s.AddPersona(model.NewPersona{Name: "A", Description: "persona A"})
	s.DeletePersona(p.ID)
	s.SetVoiceProfile(nil)

	want := []Collection{CollectionDrafts, CollectionDrafts, CollectionPersonas, CollectionPersonas, CollectionVoiceProfile}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))
	d := s.AddDraft(model.NewDraft{Topic: "X"})
	s.ScheduleDraft(d.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	drafts := s.Drafts()
	drafts[0].Topic = "mutated"
	*drafts[0].ScheduledDate = time.Time{}

	got, _ := s.Draft(d.ID)
	if got.Topic != "X" || got.ScheduledDate.IsZero() {
		t.Errorf("Expected store to be unaffected by caller mutation, got %+v", got)
	}
}

func TestConcurrentUse(t *testing.T) {
	s := newTestStore(t, kv.NewMemoryStore(0))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 25 {
				d := s.AddDraft(model.NewDraft{Topic: fmt.Sprintf("%d-%d", i, j)})
				s.ScheduleDraft(d.ID, time.Now())
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()

	if n := len(s.Drafts()); n != 200 {
		t.Errorf("Expected 200 drafts, got %d", n)
	}
}
