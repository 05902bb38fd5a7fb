package deck

import (
	"log"
	"sort"
	"sync"
	"time"
)

// DefaultNumNests matches the standard 3x3 deck layout.
const DefaultNumNests = 9

// EventKind classifies a state change reported to listeners.
type EventKind string

const (
	EventLabwareSet         EventKind = "labware_set"
	EventOperationStarted   EventKind = "operation_started"
	EventOperationCompleted EventKind = "operation_completed"
	EventProgressUpdated    EventKind = "progress_updated"
	EventVolumeUpdated      EventKind = "volume_updated"
	EventTipsUpdated        EventKind = "tips_updated"
	EventDeckReset          EventKind = "deck_reset"
	EventErrorLogged        EventKind = "error_logged"
)

// Event describes one successful mutation. Nest is nil for deck-level events.
type Event struct {
	Kind    EventKind    `json:"kind"`
	NestID  int          `json:"nest_id,omitempty"`
	Nest    *NestSummary `json:"nest,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Listener receives events synchronously after each successful mutation. The
// lock is released before listeners run, so they may safely call back into the
// DeckState.
type Listener interface {
	HandleDeckEvent(Event)
}

// DeckState is the single authority for deck state. Every exported method is
// one atomic critical section; nothing mutable ever escapes the lock, only
// copies do. Internal helpers are the lock-free *Locked variants, so the call
// graph never re-acquires the mutex.
type DeckState struct {
	mu        sync.Mutex
	numNests  int
	nests     map[int]*Nest
	listeners []Listener

	globalOperationCount int
	errorCount           int
	lastError            string
	initializationTime   time.Time
}

// New creates a deck with nests numbered 1..numNests, all empty and idle.
// A non-positive count falls back to DefaultNumNests.
func New(numNests int) *DeckState {
	if numNests <= 0 {
		numNests = DefaultNumNests
	}
	d := &DeckState{
		numNests:           numNests,
		nests:              make(map[int]*Nest, numNests),
		initializationTime: time.Now(),
	}
	for i := 1; i <= numNests; i++ {
		d.nests[i] = newNest(i)
	}
	log.Printf("deck state initialized with %d nests", numNests)
	return d
}

// AddListener registers a listener for mutation events.
func (d *DeckState) AddListener(l Listener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

// notifyLocked snapshots the listener list; the returned func must be called
// after the lock is released so listeners never run inside the critical section.
func (d *DeckState) notifyLocked(ev Event) func() {
	if len(d.listeners) == 0 {
		return func() {}
	}
	ls := make([]Listener, len(d.listeners))
	copy(ls, d.listeners)
	return func() {
		for _, l := range ls {
			l.HandleDeckEvent(ev)
		}
	}
}

// NumNests reports the fixed deck size.
func (d *DeckState) NumNests() int {
	return d.numNests
}

func (d *DeckState) nestLocked(nestID int) *Nest {
	if nestID < 1 || nestID > d.numNests {
		log.Printf("invalid nest ID: %d", nestID)
		return nil
	}
	return d.nests[nestID]
}

// GetNest returns a deep copy of one nest, or nil for an out-of-range ID.
// Invalid IDs are logged, never fatal.
func (d *DeckState) GetNest(nestID int) *NestView {
	d.mu.Lock()
	defer d.mu.Unlock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		return nil
	}
	return nest.view()
}

// SetLabwareAtNest parses the labware label (unrecognized labels degrade to
// LabwareUnknown with a logged warning) and places it at the nest. Returns
// false only for an invalid nest ID.
func (d *DeckState) SetLabwareAtNest(nestID int, labwareType, labwareName string) bool {
	d.mu.Lock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		d.mu.Unlock()
		return false
	}
	lt, ok := ParseLabwareType(labwareType)
	if !ok {
		log.Printf("Warning: unknown labware type %q, using %s", labwareType, LabwareUnknown)
	}
	nest.setLabware(lt, labwareName)
	s := nest.summary()
	notify := d.notifyLocked(Event{Kind: EventLabwareSet, NestID: nestID, Nest: &s})
	d.mu.Unlock()
	notify()
	return true
}

// StartOperationAtNest parses the operation label and starts it. Unknown
// labels are rejected without touching the global counter. There is no guard
// against a nest that is already busy: a new start overwrites the old
// operation.
func (d *DeckState) StartOperationAtNest(nestID int, operation string, details map[string]any) bool {
	d.mu.Lock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		d.mu.Unlock()
		return false
	}
	status, ok := ParseOperationStatus(operation)
	if !ok {
		log.Printf("unknown operation: %q", operation)
		d.mu.Unlock()
		return false
	}
	nest.startOperation(status, details)
	d.globalOperationCount++
	s := nest.summary()
	notify := d.notifyLocked(Event{Kind: EventOperationStarted, NestID: nestID, Nest: &s})
	d.mu.Unlock()
	notify()
	return true
}

// CompleteOperationAtNest returns the nest's operation to idle. Completing an
// already-idle nest is a harmless no-op that still reports success.
func (d *DeckState) CompleteOperationAtNest(nestID int) bool {
	d.mu.Lock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		d.mu.Unlock()
		return false
	}
	nest.completeOperation()
	s := nest.summary()
	notify := d.notifyLocked(Event{Kind: EventOperationCompleted, NestID: nestID, Nest: &s})
	d.mu.Unlock()
	notify()
	return true
}

// UpdateProgressAtNest clamps progress into [0,100] without changing status.
func (d *DeckState) UpdateProgressAtNest(nestID int, progress float64) bool {
	d.mu.Lock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		d.mu.Unlock()
		return false
	}
	nest.Operation.updateProgress(progress)
	s := nest.summary()
	notify := d.notifyLocked(Event{Kind: EventProgressUpdated, NestID: nestID, Nest: &s})
	d.mu.Unlock()
	notify()
	return true
}

// UpdateVolumeAtNest applies aspirated/dispensed deltas. Both may be nonzero
// in one call and neither is validated for sign; the caller owns that.
func (d *DeckState) UpdateVolumeAtNest(nestID int, aspirated, dispensed float64) bool {
	d.mu.Lock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		d.mu.Unlock()
		return false
	}
	nest.updateVolume(aspirated, dispensed)
	s := nest.summary()
	notify := d.notifyLocked(Event{Kind: EventVolumeUpdated, NestID: nestID, Nest: &s})
	d.mu.Unlock()
	notify()
	return true
}

// UpdateTipsAtNest records a tips-on or tips-off at the nest.
func (d *DeckState) UpdateTipsAtNest(nestID int, tipsOn bool, tipType string) bool {
	d.mu.Lock()
	nest := d.nestLocked(nestID)
	if nest == nil {
		d.mu.Unlock()
		return false
	}
	nest.updateTips(tipsOn, tipType, 0)
	s := nest.summary()
	notify := d.notifyLocked(Event{Kind: EventTipsUpdated, NestID: nestID, Nest: &s})
	d.mu.Unlock()
	notify()
	return true
}

func (d *DeckState) activeOperationsLocked() []ActiveOperation {
	ops := make([]ActiveOperation, 0)
	for _, id := range d.sortedNestIDs() {
		nest := d.nests[id]
		if nest.Operation.Status == StatusIdle {
			continue
		}
		details := make(map[string]any, len(nest.Operation.Details))
		for k, v := range nest.Operation.Details {
			details[k] = v
		}
		ops = append(ops, ActiveOperation{
			NestID:    nest.ID,
			Operation: nest.Operation.Status,
			Details:   details,
			Progress:  nest.Operation.Progress,
			StartTime: timePtr(nest.Operation.StartTime),
		})
	}
	return ops
}

func (d *DeckState) nestsWithLabwareLocked() []LabwareNest {
	out := make([]LabwareNest, 0)
	for _, id := range d.sortedNestIDs() {
		nest := d.nests[id]
		if nest.LabwareType == LabwareEmpty {
			continue
		}
		out = append(out, LabwareNest{NestID: nest.ID, LabwareType: nest.LabwareType, LabwareName: nest.LabwareName})
	}
	return out
}

func (d *DeckState) nestsWithTipsLocked() []int {
	out := make([]int, 0)
	for _, id := range d.sortedNestIDs() {
		if d.nests[id].Tips.TipsLoaded {
			out = append(out, id)
		}
	}
	return out
}

func (d *DeckState) sortedNestIDs() []int {
	ids := make([]int, 0, len(d.nests))
	for id := range d.nests {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GetActiveOperations lists every nest with a non-idle status, ascending by
// nest ID.
func (d *DeckState) GetActiveOperations() []ActiveOperation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeOperationsLocked()
}

// GetNestsWithLabware lists every occupied nest, ascending by nest ID.
func (d *DeckState) GetNestsWithLabware() []LabwareNest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nestsWithLabwareLocked()
}

// GetNestsWithTips lists the IDs of nests with tips loaded.
func (d *DeckState) GetNestsWithTips() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nestsWithTipsLocked()
}

// FindEmptyNests lists the IDs of nests with no labware.
func (d *DeckState) FindEmptyNests() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]int, 0)
	for _, id := range d.sortedNestIDs() {
		if d.nests[id].LabwareType == LabwareEmpty {
			out = append(out, id)
		}
	}
	return out
}

// FindNestsByLabwareType lists the IDs of nests holding the given labware
// type. A label that does not parse yields an empty list, not an error.
func (d *DeckState) FindNestsByLabwareType(labwareType string) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	lt, ok := ParseLabwareType(labwareType)
	if !ok {
		log.Printf("unknown labware type: %q", labwareType)
		return []int{}
	}
	out := make([]int, 0)
	for _, id := range d.sortedNestIDs() {
		if d.nests[id].LabwareType == lt {
			out = append(out, id)
		}
	}
	return out
}

func (d *DeckState) summaryLocked() DeckSummary {
	nests := make(map[int]NestSummary, len(d.nests))
	for id, nest := range d.nests {
		nests[id] = nest.summary()
	}
	return DeckSummary{
		DeckInfo: DeckInfo{
			NumNests:             d.numNests,
			InitializationTime:   d.initializationTime,
			GlobalOperationCount: d.globalOperationCount,
			ErrorCount:           d.errorCount,
			LastError:            d.lastError,
		},
		ActiveOperations: len(d.activeOperationsLocked()),
		NestsWithLabware: len(d.nestsWithLabwareLocked()),
		NestsWithTips:    len(d.nestsWithTipsLocked()),
		Nests:            nests,
	}
}

// GetDeckSummary builds the aggregate snapshot in one critical section, so the
// counts and the per-nest lines can never tear against concurrent mutations.
func (d *DeckState) GetDeckSummary() DeckSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.summaryLocked()
}

// ResetAllNests returns every nest to its empty baseline and zeroes the deck
// counters. The initialization time is preserved.
func (d *DeckState) ResetAllNests() {
	d.mu.Lock()
	for _, nest := range d.nests {
		nest.reset()
	}
	d.globalOperationCount = 0
	d.errorCount = 0
	d.lastError = ""
	notify := d.notifyLocked(Event{Kind: EventDeckReset})
	d.mu.Unlock()
	notify()
	log.Println("all nests reset to empty state")
}

// LogError records a caller-reported failure. With a valid nest ID the nest is
// pinned to StatusError and the message stashed in its operation details; it
// stays in that state until explicitly completed or reset. A nest ID of zero
// records a deck-level error only. This is bookkeeping: the deck never decides
// failure itself.
func (d *DeckState) LogError(message string, nestID int) {
	d.mu.Lock()
	d.errorCount++
	d.lastError = message
	var nest *NestSummary
	if nestID != 0 {
		if n := d.nestLocked(nestID); n != nil {
			n.Operation.Status = StatusError
			n.Operation.Details["error"] = message
			s := n.summary()
			nest = &s
		}
	}
	notify := d.notifyLocked(Event{Kind: EventErrorLogged, NestID: nestID, Nest: nest, Message: message})
	d.mu.Unlock()
	notify()
	if nestID != 0 {
		log.Printf("deck error: %s (nest %d)", message, nestID)
	} else {
		log.Printf("deck error: %s", message)
	}
}

// ExportState wraps the current summary with a timestamp and version tag.
// It is a pure snapshot; persistence is a collaborator concern.
func (d *DeckState) ExportState() ExportedState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ExportedState{
		DeckState: d.summaryLocked(),
		Timestamp: time.Now(),
		Version:   ExportVersion,
	}
}
