// Package state holds the observable application state: the habit,
// completion, and preference slices plus the derived analytics snapshot.
// Action methods mutate the slices optimistically, recompute analytics
// synchronously, notify slice subscribers, and hand the durable write to a
// background writer keyed by operation identity.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/habitkit/habitkit/internal/analytics"
	"github.com/habitkit/habitkit/internal/constants"
	apperr "github.com/habitkit/habitkit/internal/errors"
	"github.com/habitkit/habitkit/internal/models"
	"github.com/habitkit/habitkit/internal/storage"
	"github.com/habitkit/habitkit/internal/validation"
)

// Slice identifies one observable portion of the state. Subscribers are
// notified only when their slice changes value.
type Slice int

const (
	SliceHabits Slice = iota
	SliceCompletions
	SlicePreferences
	SliceView
	SliceAnalytics
)

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock overrides the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is an explicitly constructed state container. It is safe for
// concurrent use; all mutations serialize through an internal mutex, and
// durable writes serialize through a single background writer.
type Store struct {
	mu       sync.RWMutex
	provider storage.Provider
	writer   *writer
	now      func() time.Time

	habits      []models.Habit
	completions []models.Completion
	prefs       models.Preferences
	view        models.ViewState
	analytics   models.Analytics

	subs    map[Slice]map[int]func()
	nextSub int
}

// New creates a Store over the given provider. Call Load to hydrate it.
func New(provider storage.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		writer:   newWriter(),
		now:      time.Now,
		prefs:    models.DefaultPreferences(),
		subs:     make(map[Slice]map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.view = models.ViewState{
		SelectedDate: s.today(),
		ViewMode:     s.prefs.DefaultView,
	}
	return s
}

// Load hydrates the state slices from the durable store.
func (s *Store) Load() error {
	habits, err := s.provider.GetAllHabits()
	if err != nil {
		return err
	}
	completions, err := s.provider.GetAllCompletions()
	if err != nil {
		return err
	}

	prefs, err := s.provider.GetPreferences()
	if err != nil {
		prefs = models.DefaultPreferences()
	}
	view, err := s.provider.GetViewState()
	if err != nil {
		view = models.ViewState{SelectedDate: s.today(), ViewMode: prefs.DefaultView}
	}

	s.mu.Lock()
	s.habits = habits
	s.completions = completions
	s.prefs = prefs
	s.view = view
	s.recompute()
	s.mu.Unlock()

	return nil
}

// Reload drains pending writes and re-hydrates from durable truth. This is
// the reconcile path after a persistence failure: the optimistic value is
// retracted in favor of what actually committed.
func (s *Store) Reload() error {
	s.writer.flush()
	if err := s.Load(); err != nil {
		return err
	}
	s.notify(SliceHabits, SliceCompletions, SlicePreferences, SliceView, SliceAnalytics)
	return nil
}

// Flush blocks until every enqueued durable write has settled.
func (s *Store) Flush() {
	s.writer.flush()
}

// Close drains pending writes and releases the writer. The store must not
// be mutated afterwards.
func (s *Store) Close() {
	s.writer.close()
}

// Errors exposes asynchronous persistence failures. The optimistic value
// remains visible when an error arrives; callers reconcile via Reload.
func (s *Store) Errors() <-chan OpError {
	return s.writer.errs
}

// EntityStatus reports the persistence status of an entity's latest mutation.
func (s *Store) EntityStatus(id string) Status {
	return s.writer.entityStatus(id)
}

// Subscribe registers fn to run after the given slice changes value. The
// returned function cancels the subscription.
func (s *Store) Subscribe(slice Slice, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs[slice] == nil {
		s.subs[slice] = make(map[int]func())
	}
	id := s.nextSub
	s.nextSub++
	s.subs[slice][id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[slice], id)
	}
}

// notify runs outside the state lock so subscribers can read selectors.
func (s *Store) notify(slices ...Slice) {
	var fns []func()
	s.mu.RLock()
	for _, slice := range slices {
		for _, fn := range s.subs[slice] {
			fns = append(fns, fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// recompute refreshes the derived analytics snapshot and reports whether it
// changed value. Callers hold the lock.
func (s *Store) recompute() bool {
	old := s.analytics
	s.analytics = analytics.Compute(s.habits, s.completions, s.now(), s.prefs.WeeklyStartDay)
	return s.analytics != old
}

// notifyMutation fires the touched slices, adding the analytics slice only
// when the derived snapshot actually changed. A habit rename, for example,
// touches habits but leaves every analytics number as it was.
func (s *Store) notifyMutation(analyticsChanged bool, slices ...Slice) {
	if analyticsChanged {
		slices = append(slices, SliceAnalytics)
	}
	s.notify(slices...)
}

func (s *Store) today() string {
	return s.now().Format(constants.DateFormat)
}

// --- Selectors ---

// Habits returns a copy of the habit slice.
func (s *Store) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Habit(nil), s.habits...)
}

// ActiveHabits returns the non-archived habits.
func (s *Store) ActiveHabits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []models.Habit
	for _, h := range s.habits {
		if !h.Archived {
			active = append(active, h)
		}
	}
	return active
}

// Habit returns one habit by id.
func (s *Store) Habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

// HabitByName returns the first habit matching name exactly.
func (s *Store) HabitByName(name string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.Name == name {
			return h, true
		}
	}
	return models.Habit{}, false
}

// Completions returns a copy of the completion slice.
func (s *Store) Completions() []models.Completion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Completion(nil), s.completions...)
}

// CompletionsOn returns the completions recorded for one day.
func (s *Store) CompletionsOn(day string) []models.Completion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Completion
	for _, c := range s.completions {
		if c.Day == day {
			out = append(out, c)
		}
	}
	return out
}

// TodayCompletions returns the completions recorded for today.
func (s *Store) TodayCompletions() []models.Completion {
	return s.CompletionsOn(s.today())
}

// Analytics returns the current derived snapshot.
func (s *Store) Analytics() models.Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analytics
}

// Preferences returns the current preferences.
func (s *Store) Preferences() models.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// View returns the current view state.
func (s *Store) View() models.ViewState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// HabitStreak computes the current and longest streak for one habit.
func (s *Store) HabitStreak(habitID string) (current, longest int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analytics.HabitStreak(s.completions, habitID, s.now())
}

// --- Habit actions ---

// AddHabit validates and creates a habit from the draft's user-settable
// fields. ID, timestamps, and the archived flag are assigned here.
func (s *Store) AddHabit(draft models.Habit) (models.Habit, error) {
	now := s.now()
	habit := draft
	habit.ID = uuid.New().String()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	habit.Archived = false
	if habit.Tags == nil {
		habit.Tags = []string{}
	}

	if err := validation.Habit(habit); err != nil {
		return models.Habit{}, err
	}

	key := "add-habit-" + habit.ID
	if err := s.writer.reserve(key); err != nil {
		return models.Habit{}, err
	}

	s.mu.Lock()
	s.habits = append(s.habits, habit)
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, habit.ID, func() error {
		return s.provider.AddHabit(habit)
	})

	s.notifyMutation(analyticsChanged, SliceHabits)
	return habit, nil
}

// UpdateHabit applies a partial update to one habit.
func (s *Store) UpdateHabit(id string, update models.HabitUpdate) (models.Habit, error) {
	key := "update-habit-" + id
	if err := s.writer.reserve(key); err != nil {
		return models.Habit{}, err
	}

	s.mu.Lock()
	idx := s.habitIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		s.writer.release(key)
		return models.Habit{}, apperr.ErrNotFound
	}

	updated := update.Apply(s.habits[idx], s.now())
	if err := validation.Habit(updated); err != nil {
		s.mu.Unlock()
		s.writer.release(key)
		return models.Habit{}, err
	}

	s.habits[idx] = updated
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, id, func() error {
		return s.provider.UpdateHabit(updated)
	})

	s.notifyMutation(analyticsChanged, SliceHabits)
	return updated, nil
}

// DeleteHabit removes a habit and cascades to its completions; the durable
// side runs as one atomic transaction.
func (s *Store) DeleteHabit(id string) error {
	key := "delete-habit-" + id
	if err := s.writer.reserve(key); err != nil {
		return err
	}

	s.mu.Lock()
	idx := s.habitIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		s.writer.release(key)
		return apperr.ErrNotFound
	}

	s.habits = append(s.habits[:idx], s.habits[idx+1:]...)
	kept := s.completions[:0]
	for _, c := range s.completions {
		if c.HabitID != id {
			kept = append(kept, c)
		}
	}
	s.completions = kept
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, id, func() error {
		return s.provider.DeleteHabit(id)
	})

	s.notifyMutation(analyticsChanged, SliceHabits, SliceCompletions)
	return nil
}

// ToggleHabitArchived flips a habit's archived flag.
func (s *Store) ToggleHabitArchived(id string) (models.Habit, error) {
	s.mu.RLock()
	idx := s.habitIndex(id)
	var archived bool
	if idx >= 0 {
		archived = s.habits[idx].Archived
	}
	s.mu.RUnlock()
	if idx < 0 {
		return models.Habit{}, apperr.ErrNotFound
	}

	flipped := !archived
	return s.UpdateHabit(id, models.HabitUpdate{Archived: &flipped})
}

// BulkUpdateHabits applies several partial updates in one durable
// transaction. The optimistic state may briefly show all of them applied
// even if the transaction later fails.
func (s *Store) BulkUpdateHabits(updates map[string]models.HabitUpdate) error {
	key := "bulk-update-habits"
	if err := s.writer.reserve(key); err != nil {
		return err
	}

	now := s.now()

	s.mu.Lock()
	changed := make([]models.Habit, 0, len(updates))
	for id, update := range updates {
		idx := s.habitIndex(id)
		if idx < 0 {
			s.mu.Unlock()
			s.writer.release(key)
			return apperr.ErrNotFound
		}
		updated := update.Apply(s.habits[idx], now)
		if err := validation.Habit(updated); err != nil {
			s.mu.Unlock()
			s.writer.release(key)
			return err
		}
		s.habits[idx] = updated
		changed = append(changed, updated)
	}
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, "", func() error {
		return s.provider.BulkPutHabits(changed)
	})

	s.notifyMutation(analyticsChanged, SliceHabits)
	return nil
}

func (s *Store) habitIndex(id string) int {
	for i, h := range s.habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// --- Completion actions ---

// ToggleCompletion flips the completion for (habitID, day), creating a
// completed record when none exists. An empty day means the selected date.
// Applying it twice restores the original state and leaves exactly one
// record for the pair.
func (s *Store) ToggleCompletion(habitID, day string) (models.Completion, error) {
	return s.putCompletion(habitID, day, func(c *models.Completion, created bool) {
		if !created {
			c.Completed = !c.Completed
		}
	})
}

// SetCompletionValue records a quantitative value for (habitID, day); the
// completed flag follows value > 0.
func (s *Store) SetCompletionValue(habitID, day string, value float64) (models.Completion, error) {
	return s.putCompletion(habitID, day, func(c *models.Completion, created bool) {
		c.Value = &value
		c.Completed = value > 0
	})
}

// SetCompletionNotes attaches notes to the completion for (habitID, day).
func (s *Store) SetCompletionNotes(habitID, day, notes string) (models.Completion, error) {
	return s.putCompletion(habitID, day, func(c *models.Completion, created bool) {
		c.Notes = notes
	})
}

// putCompletion upserts the record for (habitID, day). A freshly created
// record starts out completed; mutate then shapes the final value. The
// operation key spans all mutations of one (habit, day) pair.
func (s *Store) putCompletion(habitID, day string, mutate func(c *models.Completion, created bool)) (models.Completion, error) {
	if day == "" {
		day = s.View().SelectedDate
	}
	if err := validation.Day(day); err != nil {
		return models.Completion{}, err
	}

	key := "put-completion-" + habitID + "-" + day
	if err := s.writer.reserve(key); err != nil {
		return models.Completion{}, err
	}

	s.mu.Lock()
	if s.habitIndex(habitID) < 0 {
		s.mu.Unlock()
		s.writer.release(key)
		return models.Completion{}, apperr.ErrNotFound
	}

	var completion models.Completion
	idx := s.completionIndex(habitID, day)
	create := idx < 0
	if create {
		completion = models.Completion{
			ID:        uuid.New().String(),
			HabitID:   habitID,
			Day:       day,
			Completed: true,
		}
	} else {
		completion = s.completions[idx]
	}
	mutate(&completion, create)
	completion.Timestamp = s.now()

	if err := validation.Completion(completion); err != nil {
		s.mu.Unlock()
		s.writer.release(key)
		return models.Completion{}, err
	}

	if create {
		s.completions = append(s.completions, completion)
	} else {
		s.completions[idx] = completion
	}
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	persisted := completion
	if create {
		s.writer.enqueue(key, completion.ID, func() error {
			return s.provider.AddCompletion(persisted)
		})
	} else {
		s.writer.enqueue(key, completion.ID, func() error {
			return s.provider.UpdateCompletion(persisted)
		})
	}

	s.notifyMutation(analyticsChanged, SliceCompletions)
	return completion, nil
}

// BulkToggleCompletions sets the completed flag for several habits on one
// day; the durable side is a single transaction.
func (s *Store) BulkToggleCompletions(habitIDs []string, day string, completed bool) error {
	if day == "" {
		day = s.View().SelectedDate
	}
	if err := validation.Day(day); err != nil {
		return err
	}

	key := "bulk-toggle-completions-" + day
	if err := s.writer.reserve(key); err != nil {
		return err
	}

	now := s.now()

	s.mu.Lock()
	changed := make([]models.Completion, 0, len(habitIDs))
	for _, habitID := range habitIDs {
		if s.habitIndex(habitID) < 0 {
			s.mu.Unlock()
			s.writer.release(key)
			return apperr.ErrNotFound
		}
		if idx := s.completionIndex(habitID, day); idx >= 0 {
			s.completions[idx].Completed = completed
			s.completions[idx].Timestamp = now
			changed = append(changed, s.completions[idx])
		} else {
			completion := models.Completion{
				ID:        uuid.New().String(),
				HabitID:   habitID,
				Day:       day,
				Completed: completed,
				Timestamp: now,
			}
			s.completions = append(s.completions, completion)
			changed = append(changed, completion)
		}
	}
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, "", func() error {
		return s.provider.BulkPutCompletions(changed)
	})

	s.notifyMutation(analyticsChanged, SliceCompletions)
	return nil
}

func (s *Store) completionIndex(habitID, day string) int {
	for i, c := range s.completions {
		if c.HabitID == habitID && c.Day == day {
			return i
		}
	}
	return -1
}

// --- Preference and view actions ---

// UpdatePreferences applies a partial preferences update.
func (s *Store) UpdatePreferences(update models.PreferencesUpdate) (models.Preferences, error) {
	key := "save-preferences"
	if err := s.writer.reserve(key); err != nil {
		return models.Preferences{}, err
	}

	s.mu.Lock()
	updated := update.Apply(s.prefs)
	if updated == s.prefs {
		s.mu.Unlock()
		s.writer.release(key)
		return updated, nil
	}
	if err := validation.Preferences(updated); err != nil {
		s.mu.Unlock()
		s.writer.release(key)
		return models.Preferences{}, err
	}
	s.prefs = updated
	// Week-start preference feeds the weekly goal window.
	analyticsChanged := s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, "", func() error {
		return s.provider.SavePreferences(updated)
	})

	s.notifyMutation(analyticsChanged, SlicePreferences)
	return updated, nil
}

// SetTheme sets the color theme preference.
func (s *Store) SetTheme(theme string) error {
	_, err := s.UpdatePreferences(models.PreferencesUpdate{Theme: &theme})
	return err
}

// SetWeeklyStartDay sets the first day of the week.
func (s *Store) SetWeeklyStartDay(day string) error {
	_, err := s.UpdatePreferences(models.PreferencesUpdate{WeeklyStartDay: &day})
	return err
}

// ToggleNotifications flips the notifications-enabled flag.
func (s *Store) ToggleNotifications() error {
	notifications := s.Preferences().Notifications
	notifications.Enabled = !notifications.Enabled
	_, err := s.UpdatePreferences(models.PreferencesUpdate{Notifications: &notifications})
	return err
}

// SetSelectedDate moves the selected calendar day.
func (s *Store) SetSelectedDate(day string) error {
	if err := validation.Day(day); err != nil {
		return err
	}
	return s.setView(func(v *models.ViewState) { v.SelectedDate = day })
}

// SetViewMode switches between daily, weekly, and monthly views.
func (s *Store) SetViewMode(mode string) error {
	if mode != models.ViewDaily && mode != models.ViewWeekly && mode != models.ViewMonthly {
		return &apperr.ValidationError{Fields: map[string]string{"viewMode": "view must be daily, weekly, or monthly"}}
	}
	return s.setView(func(v *models.ViewState) { v.ViewMode = mode })
}

func (s *Store) setView(mutate func(*models.ViewState)) error {
	key := "save-view"
	if err := s.writer.reserve(key); err != nil {
		return err
	}

	s.mu.Lock()
	before := s.view
	mutate(&s.view)
	view := s.view
	s.mu.Unlock()

	if view == before {
		s.writer.release(key)
		return nil
	}

	s.writer.enqueue(key, "", func() error {
		return s.provider.SaveViewState(view)
	})

	s.notify(SliceView)
	return nil
}

// --- Whole-store actions ---

// Reset restores every slice to its default empty value and clears the
// durable collections. Not reversible.
func (s *Store) Reset() error {
	key := "reset-store"
	if err := s.writer.reserve(key); err != nil {
		return err
	}

	prefs := models.DefaultPreferences()

	s.mu.Lock()
	s.habits = nil
	s.completions = nil
	s.prefs = prefs
	s.view = models.ViewState{SelectedDate: s.today(), ViewMode: prefs.DefaultView}
	view := s.view
	s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, "", func() error {
		if err := s.provider.ClearAll(); err != nil {
			return err
		}
		if err := s.provider.SavePreferences(prefs); err != nil {
			return err
		}
		return s.provider.SaveViewState(view)
	})

	s.notify(SliceHabits, SliceCompletions, SlicePreferences, SliceView, SliceAnalytics)
	return nil
}

// ImportData wholesale-replaces the collections with the document's
// contents. The caller validates the document shape beforehand; the store
// does not revalidate individual records.
func (s *Store) ImportData(doc models.ExportDoc) error {
	key := "import-data"
	if err := s.writer.reserve(key); err != nil {
		return err
	}

	s.mu.Lock()
	s.habits = append([]models.Habit(nil), doc.Habits...)
	s.completions = append([]models.Completion(nil), doc.Completions...)
	if len(doc.Preferences) > 0 {
		s.prefs = doc.Preferences[0]
	}
	s.recompute()
	s.mu.Unlock()

	s.writer.enqueue(key, "", func() error {
		return s.provider.ImportData(doc)
	})

	s.notify(SliceHabits, SliceCompletions, SlicePreferences, SliceAnalytics)
	return nil
}
