package driver

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"bravo-deck-backend/internal/deck"
)

// Driver command failures. These mirror what the vendor SDK reports; the
// simulator raises them for the same preconditions.
var (
	ErrNotConnected  = errors.New("device not connected")
	ErrInvalidVolume = errors.New("volume must be positive")
	ErrInvalidNest   = errors.New("invalid nest")
)

// Simulator stands in for the hardware binding. Every command follows the
// driver contract against the deck state: start the operation, apply its
// effects, complete it, and report failures through LogError. Commands
// complete immediately since no physical motion happens.
type Simulator struct {
	mu        sync.Mutex
	connected bool
	profile   string
	state     *deck.DeckState
}

// NewSimulator creates a simulated driver bound to the given deck state.
func NewSimulator(state *deck.DeckState, profile string) *Simulator {
	return &Simulator{state: state, profile: profile}
}

// Connect establishes the simulated device connection.
func (s *Simulator) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	log.Printf("simulator connected (profile %q)", s.profile)
	return nil
}

// Disconnect drops the simulated device connection.
func (s *Simulator) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	log.Println("simulator disconnected")
}

// IsConnected reports whether the device is connected.
func (s *Simulator) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Simulator) ready() error {
	if !s.IsConnected() {
		s.state.LogError("command rejected: device not connected", 0)
		return ErrNotConnected
	}
	return nil
}

func (s *Simulator) checkVolume(command string, nestID int, volume float64) error {
	if volume <= 0 {
		s.state.LogError(fmt.Sprintf("%s rejected: volume must be positive, got %g", command, volume), nestID)
		return ErrInvalidVolume
	}
	return nil
}

// runOperation drives one command through the deck lifecycle.
func (s *Simulator) runOperation(nestID int, operation string, details map[string]any, effect func()) error {
	if !s.state.StartOperationAtNest(nestID, operation, details) {
		return fmt.Errorf("%w: %d", ErrInvalidNest, nestID)
	}
	if effect != nil {
		effect()
	}
	s.state.CompleteOperationAtNest(nestID)
	return nil
}

// Aspirate draws volume at the given nest.
func (s *Simulator) Aspirate(nestID int, volume float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.checkVolume("aspirate", nestID, volume); err != nil {
		return err
	}
	return s.runOperation(nestID, "aspirating", map[string]any{"volume": volume}, func() {
		s.state.UpdateVolumeAtNest(nestID, volume, 0)
	})
}

// Dispense expels volume at the given nest.
func (s *Simulator) Dispense(nestID int, volume float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.checkVolume("dispense", nestID, volume); err != nil {
		return err
	}
	return s.runOperation(nestID, "dispensing", map[string]any{"volume": volume}, func() {
		s.state.UpdateVolumeAtNest(nestID, 0, volume)
	})
}

// Mix cycles liquid in place; no net volume moves.
func (s *Simulator) Mix(nestID int, volume float64, cycles int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.checkVolume("mix", nestID, volume); err != nil {
		return err
	}
	if cycles <= 0 {
		cycles = 1
	}
	return s.runOperation(nestID, "mixing", map[string]any{"volume": volume, "cycles": cycles}, nil)
}

// Wash runs aspirate/dispense cycles at a wash station. Totals accumulate
// per cycle while the net pipette volume stays flat.
func (s *Simulator) Wash(nestID int, volume float64, cycles int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.checkVolume("wash", nestID, volume); err != nil {
		return err
	}
	if cycles <= 0 {
		cycles = 1
	}
	return s.runOperation(nestID, "washing", map[string]any{"volume": volume, "cycles": cycles}, func() {
		for i := 0; i < cycles; i++ {
			s.state.UpdateVolumeAtNest(nestID, volume, volume)
		}
	})
}

// Pump primes or drains a reservoir line.
func (s *Simulator) Pump(nestID int, volume float64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.checkVolume("pump", nestID, volume); err != nil {
		return err
	}
	return s.runOperation(nestID, "pumping", map[string]any{"volume": volume}, nil)
}

// TipsOn presses tips onto the head from the rack at the given nest.
func (s *Simulator) TipsOn(nestID int, tipType string) error {
	if err := s.ready(); err != nil {
		return err
	}
	details := map[string]any{"action": "tips_on"}
	if tipType != "" {
		details["tip_type"] = tipType
	}
	return s.runOperation(nestID, "picking", details, func() {
		s.state.UpdateTipsAtNest(nestID, true, tipType)
	})
}

// TipsOff ejects tips back at the given nest.
func (s *Simulator) TipsOff(nestID int) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.runOperation(nestID, "placing", map[string]any{"action": "tips_off"}, func() {
		s.state.UpdateTipsAtNest(nestID, false, "")
	})
}

// MoveToLocation positions the head over the given nest.
func (s *Simulator) MoveToLocation(nestID int) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.runOperation(nestID, "moving", nil, nil)
}

// PickAndPlace moves the labware at startNest to endNest using the gripper.
// The destination keeps the labware's type and name; the source is emptied.
func (s *Simulator) PickAndPlace(startNest, endNest int) error {
	if err := s.ready(); err != nil {
		return err
	}
	source := s.state.GetNest(startNest)
	if source == nil {
		return fmt.Errorf("%w: %d", ErrInvalidNest, startNest)
	}
	if s.state.GetNest(endNest) == nil {
		return fmt.Errorf("%w: %d", ErrInvalidNest, endNest)
	}
	if source.LabwareType == deck.LabwareEmpty {
		s.state.LogError(fmt.Sprintf("pick_and_place rejected: nest %d is empty", startNest), startNest)
		return fmt.Errorf("%w: nest %d holds no labware", ErrInvalidNest, startNest)
	}

	details := map[string]any{"from": startNest, "to": endNest}
	if err := s.runOperation(startNest, "picking", details, nil); err != nil {
		return err
	}
	return s.runOperation(endNest, "placing", details, func() {
		s.state.SetLabwareAtNest(endNest, string(source.LabwareType), source.LabwareName)
		s.state.SetLabwareAtNest(startNest, string(deck.LabwareEmpty), "")
	})
}
