package bench

import (
	"testing"

	"github.com/TheBitDrifter/depot"
)

// go test -bench=. ./bench -benchmem -cpuprofile=depot.prof

const (
	nPos    = 9000
	nPosVel = 1000
)

type Position struct {
	X float64
	Y float64
}

type Velocity struct {
	X float64
	Y float64
}

func newBenchStorage(b *testing.B) (depot.Storage, depot.AccessibleComponent[Position], depot.AccessibleComponent[Velocity]) {
	b.Helper()
	storage, err := depot.Factory.NewStorage(depot.Options{ArenaSize: 8 << 20, ChunkCapacity: 1024})
	if err != nil {
		b.Fatal(err)
	}
	position := depot.FactoryNewComponent[Position]()
	velocity := depot.FactoryNewComponent[Velocity]()

	posVel, _ := storage.NewOrExistingArchetype(position, velocity)
	posOnly, _ := storage.NewOrExistingArchetype(position)
	if _, err := storage.NewEntities(nPosVel, posVel); err != nil {
		b.Fatal(err)
	}
	if _, err := storage.NewEntities(nPos, posOnly); err != nil {
		b.Fatal(err)
	}
	return storage, position, velocity
}

func BenchmarkIterDepotCursor(b *testing.B) {
	b.StopTimer()
	storage, position, velocity := newBenchStorage(b)
	view, _ := storage.BuildQueryView(position.Key(), velocity.Key())
	cursor := depot.Factory.NewCursor(view)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for cursor.Next() {
			pos := position.GetFromCursor(cursor)
			vel := velocity.GetFromCursor(cursor)

			pos.X += vel.X
			pos.Y += vel.Y
		}
	}
}

func BenchmarkIterDepotSegments(b *testing.B) {
	b.StopTimer()
	storage, position, velocity := newBenchStorage(b)
	view, _ := storage.BuildQueryView(position.Key(), velocity.Key())
	positions, _ := position.Array(view)
	velocities, _ := velocity.Array(view)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		for start, pos := range positions.Segments() {
			for j := range pos {
				vel := velocities.Get(start + j)
				pos[j].X += vel.X
				pos[j].Y += vel.Y
			}
		}
	}
}

func BenchmarkBuildQueryView(b *testing.B) {
	b.StopTimer()
	storage, position, velocity := newBenchStorage(b)
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		if _, err := storage.BuildQueryView(position.Key(), velocity.Key()); err != nil {
			b.Fatal(err)
		}
	}
}
