package depot

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Access is a system's declared intent for one component.
type Access uint8

const (
	ReadOnly Access = iota
	ReadWrite
)

func (a Access) String() string {
	if a == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

type Requirement struct {
	Key    TypeKey
	Access Access
}

func Read(c Component) Requirement {
	return Requirement{Key: c.Key(), Access: ReadOnly}
}

func Write(c Component) Requirement {
	return Requirement{Key: c.Key(), Access: ReadWrite}
}

// Requirements lists the components a system needs, in the order its view is
// built. Filter, when set, further restricts the matched archetypes.
type Requirements struct {
	Components []Requirement
	Filter     QueryNode
}

func (r Requirements) Keys() []TypeKey {
	keys := make([]TypeKey, len(r.Components))
	for i, c := range r.Components {
		keys[i] = c.Key
	}
	return keys
}

// Writes reports whether key is declared read-write.
func (r Requirements) Writes(key TypeKey) bool {
	for _, c := range r.Components {
		if c.Key == key && c.Access == ReadWrite {
			return true
		}
	}
	return false
}

type BindState uint8

const (
	Unbound BindState = iota
	Bound
)

type systemEntry struct {
	system System
	state  BindState
	reqs   Requirements
	keys   []TypeKey
}

// SystemDriver runs registered systems in registration order, one query and one
// Process call per system per tick.
type SystemDriver struct {
	storage Storage
	systems []*systemEntry
	frame   uint64
}

func newSystemDriver(storage Storage) *SystemDriver {
	return &SystemDriver{
		storage: storage,
		systems: make([]*systemEntry, 0, 16),
	}
}

func (d *SystemDriver) Register(s System) {
	d.systems = append(d.systems, &systemEntry{system: s})
}

func (d *SystemDriver) Len() int {
	return len(d.systems)
}

// State reports the bind state of a registered system, and false when s was never
// registered.
func (d *SystemDriver) State(s System) (BindState, bool) {
	for _, entry := range d.systems {
		if entry.system == s {
			return entry.state, true
		}
	}
	return Unbound, false
}

// Frame counts completed ticks.
func (d *SystemDriver) Frame() uint64 {
	return d.frame
}

func (d *SystemDriver) bind(entry *systemEntry) error {
	reqs := entry.system.DeclareRequirements()
	for _, c := range reqs.Components {
		if !d.storage.Registered(c.Key) {
			return ComponentNotFoundError{Key: c.Key}
		}
	}
	entry.reqs = reqs
	entry.keys = reqs.Keys()
	entry.state = Bound
	Config.logger.Debug("system bound",
		zap.String("system", fmt.Sprintf("%T", entry.system)),
		zap.Int("components", len(entry.keys)),
	)
	return nil
}

// Tick builds each system's view and processes it. The storage is locked while a
// system runs, so entity creation requested from Process is deferred until the
// system returns. A storage locked by the caller stays locked and its queue is
// left for the caller's Unlock. The first error stops the tick.
func (d *SystemDriver) Tick(dt time.Duration) error {
	for i, entry := range d.systems {
		if entry.state == Unbound {
			if err := d.bind(entry); err != nil {
				return fmt.Errorf("bind system %d (%T): %w", i, entry.system, err)
			}
		}
		if err := d.run(entry, dt); err != nil {
			Config.logger.Error("system failed",
				zap.Int("index", i),
				zap.String("system", fmt.Sprintf("%T", entry.system)),
				zap.Uint64("frame", d.frame),
				zap.Error(err),
			)
			return fmt.Errorf("system %d (%T): %w", i, entry.system, err)
		}
	}
	d.frame++
	return nil
}

func (d *SystemDriver) run(entry *systemEntry, dt time.Duration) error {
	view, err := d.storage.BuildFilteredView(entry.reqs.Filter, entry.keys...)
	if err != nil {
		return fmt.Errorf("build view: %w", err)
	}
	entry.system.Bind(view)
	// A caller that locked before Tick keeps the lock and its queue.
	owned := !d.storage.Locked()
	if owned {
		d.storage.Lock()
	}
	processErr := entry.system.Process(dt)
	entry.system.Bind(nil)
	var unlockErr error
	if owned {
		unlockErr = d.storage.Unlock()
	}
	if processErr != nil {
		return processErr
	}
	return unlockErr
}

// UnbindAll returns every system to Unbound; the next tick declares their
// requirements again.
func (d *SystemDriver) UnbindAll() {
	for _, entry := range d.systems {
		entry.state = Unbound
		entry.reqs = Requirements{}
		entry.keys = nil
	}
	Config.logger.Debug("systems unbound", zap.Int("count", len(d.systems)))
}
