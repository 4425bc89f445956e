package main

import (
	"fmt"
	"iter"
	"time"

	"github.com/TheBitDrifter/depot"
	"github.com/TheBitDrifter/depot/manifest"
	"go.uber.org/zap"
)

// movement integrates position by velocity over raw manifest-declared columns.
type movement struct {
	position *manifest.Component
	velocity *manifest.Component
	x, y     manifest.FieldLayout
	dx, dy   manifest.FieldLayout
	view     *depot.QueryView
	moved    int
}

func newMovement(m *manifest.Manifest) (*movement, error) {
	position, ok := m.Component("position")
	if !ok {
		return nil, fmt.Errorf("manifest declares no position component")
	}
	velocity, ok := m.Component("velocity")
	if !ok {
		return nil, fmt.Errorf("manifest declares no velocity component")
	}
	s := &movement{position: position, velocity: velocity}
	for _, f := range []struct {
		comp  *manifest.Component
		name  string
		field *manifest.FieldLayout
	}{
		{position, "x", &s.x},
		{position, "y", &s.y},
		{velocity, "dx", &s.dx},
		{velocity, "dy", &s.dy},
	} {
		layout, ok := f.comp.Field(f.name)
		if !ok {
			return nil, fmt.Errorf("component %s has no field %s", f.comp.Key(), f.name)
		}
		*f.field = layout
	}
	return s, nil
}

func (s *movement) DeclareRequirements() depot.Requirements {
	return depot.Requirements{Components: []depot.Requirement{
		depot.Write(s.position),
		depot.Read(s.velocity),
	}}
}

func (s *movement) Bind(view *depot.QueryView) {
	s.view = view
}

func (s *movement) Process(dt time.Duration) error {
	positions, err := s.view.Column(s.position.Key())
	if err != nil {
		return err
	}
	velocities, err := s.view.Column(s.velocity.Key())
	if err != nil {
		return err
	}

	// Both columns are cut from the same chunks, so their segments pair up.
	nextVel, stop := iter.Pull2(velocities.Segments())
	defer stop()

	step := dt.Seconds()
	posSize, velSize := s.position.Size(), s.velocity.Size()
	s.moved = 0
	for _, pos := range positions.Segments() {
		_, vel, ok := nextVel()
		if !ok {
			return fmt.Errorf("velocity column ended before position column")
		}
		for i := range len(pos) / posSize {
			p := pos[i*posSize : (i+1)*posSize]
			v := vel[i*velSize : (i+1)*velSize]
			s.x.Put(p, s.x.Get(p)+s.dx.Get(v)*step)
			s.y.Put(p, s.y.Get(p)+s.dy.Get(v)*step)
		}
		s.moved += len(pos) / posSize
	}
	return nil
}

// reporter logs the centroid of every positioned entity every few frames.
type reporter struct {
	log    *zap.Logger
	move   *movement
	every  int
	frames int
	view   *depot.QueryView
}

func newReporter(log *zap.Logger, move *movement, every int) *reporter {
	return &reporter{log: log, move: move, every: every}
}

func (r *reporter) DeclareRequirements() depot.Requirements {
	return depot.Requirements{Components: []depot.Requirement{depot.Read(r.move.position)}}
}

func (r *reporter) Bind(view *depot.QueryView) {
	r.view = view
}

func (r *reporter) Process(time.Duration) error {
	r.frames++
	if r.every <= 0 || r.frames%r.every != 0 {
		return nil
	}
	col, err := r.view.Column(r.move.position.Key())
	if err != nil {
		return err
	}
	var sumX, sumY float64
	cursor := depot.Factory.NewCursor(r.view)
	for cursor.Next() {
		p, err := col.Index(cursor.Index())
		if err != nil {
			return err
		}
		sumX += r.move.x.Get(p)
		sumY += r.move.y.Get(p)
	}
	n := max(col.Len(), 1)
	r.log.Info("frame report",
		zap.Int("frame", r.frames),
		zap.Int("positioned", col.Len()),
		zap.Int("moved", r.move.moved),
		zap.Float64("centroid_x", sumX/float64(n)),
		zap.Float64("centroid_y", sumY/float64(n)),
	)
	return nil
}
