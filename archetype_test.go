package depot

import (
	"errors"
	"testing"
)

func TestTypeKeyOrder(t *testing.T) {
	tests := []struct {
		a, b TypeKey
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"zz", "aaa", -1}, // shorter first
		{"abc", "abc", 0},
		{"", "a", -1},
		{TypeKey([]byte{0xff}), TypeKey([]byte{0x00, 0x00}), -1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := tt.a.Less(tt.b); got != (tt.want < 0) {
			t.Errorf("%q.Less(%q) = %v", tt.a, tt.b, got)
		}
	}
	if got := Concat("ab", "c", "def"); got != "abcdef" {
		t.Errorf("Concat() = %q, want abcdef", got)
	}
	if got := Concat("c", "ab"); got != "cab" {
		t.Errorf("Concat() must keep argument order, got %q", got)
	}
	if !NewTypeKey([]byte("x")).Equal("x") {
		t.Errorf("NewTypeKey equality failed")
	}
}

func TestTypeKeyOf(t *testing.T) {
	pos := TypeKeyOf[Position]()
	if pos == TypeKeyOf[Velocity]() {
		t.Errorf("distinct types share key %q", pos)
	}
	if pos != TypeKeyOf[Position]() {
		t.Errorf("TypeKeyOf is not stable")
	}
	if TypeKeyOf[[3]float32]() != "[3]float32" {
		t.Errorf("unnamed type key = %q", TypeKeyOf[[3]float32]())
	}

	// Function-local types with the same name stay distinct
	first, second := localPointKey(), otherLocalPointKey()
	if first == second {
		t.Errorf("local types share key %q", first)
	}
	if first != localPointKey() || second != otherLocalPointKey() {
		t.Errorf("local type keys are not stable")
	}
}

func localPointKey() TypeKey {
	type point struct{ X int32 }
	return TypeKeyOf[point]()
}

func otherLocalPointKey() TypeKey {
	type point struct{ Y float32 }
	return TypeKeyOf[point]()
}

type registration struct {
	key  TypeKey
	size int
}

func permutations(items []registration) [][]registration {
	if len(items) <= 1 {
		return [][]registration{append([]registration(nil), items...)}
	}
	var result [][]registration
	for i := range items {
		rest := make([]registration, 0, len(items)-1)
		rest = append(rest, items[:i]...)
		rest = append(rest, items[i+1:]...)
		for _, p := range permutations(rest) {
			result = append(result, append([]registration{items[i]}, p...))
		}
	}
	return result
}

func TestArchetypeCanonicalOrder(t *testing.T) {
	regs := []registration{
		{"Velocity", 12},
		{"Pos", 12},
		{"Health", 8},
		{"Tag", 1},
	}

	var reference *Archetype
	for _, perm := range permutations(regs) {
		a := Factory.NewArchetype()
		for _, r := range perm {
			if err := a.Register(r.key, r.size, nil); err != nil {
				t.Fatalf("Register(%q) error = %v", r.key, err)
			}
		}
		if reference == nil {
			reference = a
			continue
		}
		if a.Key() != reference.Key() {
			t.Errorf("Key() = %q, want %q", a.Key(), reference.Key())
		}
		if a.TotalSize() != reference.TotalSize() {
			t.Errorf("TotalSize() = %d, want %d", a.TotalSize(), reference.TotalSize())
		}
		for _, r := range regs {
			off, _ := a.Offset(r.key)
			refOff, _ := reference.Offset(r.key)
			if off != refOff {
				t.Errorf("Offset(%q) = %d, want %d", r.key, off, refOff)
			}
			size, _ := a.Size(r.key)
			if size != r.size {
				t.Errorf("Size(%q) = %d, want %d", r.key, size, r.size)
			}
		}
	}

	// Ascending key order: Pos, Tag, Health, Velocity
	want := []TypeKey{"Pos", "Tag", "Health", "Velocity"}
	got := reference.Components()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Components() = %v, want %v", got, want)
		}
	}
	if reference.Key() != "PosTagHealthVelocity" {
		t.Errorf("Key() = %q", reference.Key())
	}
	offsets := map[TypeKey]int{"Pos": 0, "Tag": 12, "Health": 13, "Velocity": 21}
	for key, want := range offsets {
		if got, _ := reference.Offset(key); got != want {
			t.Errorf("Offset(%q) = %d, want %d", key, got, want)
		}
	}
	if reference.TotalSize() != 33 {
		t.Errorf("TotalSize() = %d, want 33", reference.TotalSize())
	}
}

func TestArchetypeRegisterErrors(t *testing.T) {
	a := Factory.NewArchetype()
	if err := a.Register("A", 4, nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	var dup DuplicateComponentError
	if err := a.Register("A", 4, nil); !errors.As(err, &dup) {
		t.Errorf("duplicate Register() error = %v, want DuplicateComponentError", err)
	}
	var invalid InvalidComponentError
	if err := a.Register("B", 0, nil); !errors.As(err, &invalid) {
		t.Errorf("zero size Register() error = %v, want InvalidComponentError", err)
	}
	if err := a.Register("B", 4, []byte{1}); !errors.As(err, &invalid) {
		t.Errorf("short default Register() error = %v, want InvalidComponentError", err)
	}

	var notFound ComponentNotFoundError
	if _, err := a.Offset("missing"); !errors.As(err, &notFound) {
		t.Errorf("Offset(missing) error = %v, want ComponentNotFoundError", err)
	}
	if _, err := a.Size("missing"); !errors.As(err, &notFound) {
		t.Errorf("Size(missing) error = %v, want ComponentNotFoundError", err)
	}

	a.Freeze()
	a.Freeze()
	var frozen LayoutFrozenError
	if err := a.Register("C", 4, nil); !errors.As(err, &frozen) {
		t.Errorf("Register() after Freeze error = %v, want LayoutFrozenError", err)
	}
}

func TestArchetypeFrozenByFirstEntity(t *testing.T) {
	storage := newTestStorage(t, 8)
	a := Factory.NewArchetype()
	if err := a.Register("A", 4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if a.Frozen() {
		t.Fatalf("archetype frozen before any entity")
	}
	e, err := storage.NewEntity(a)
	if err != nil {
		t.Fatalf("NewEntity() error = %v", err)
	}
	if !a.Frozen() {
		t.Errorf("archetype not frozen after first entity")
	}
	var frozen LayoutFrozenError
	if err := a.Register("B", 4, nil); !errors.As(err, &frozen) {
		t.Errorf("Register() error = %v, want LayoutFrozenError", err)
	}
	got, _ := storage.Component(e, "A")
	if string(got) != "\x01\x02\x03\x04" {
		t.Errorf("default bytes = %v", got)
	}
	// Default returns a copy
	def, _ := a.Default("A")
	def[0] = 9
	again, _ := a.Default("A")
	if again[0] != 1 {
		t.Errorf("Default() exposed internal bytes")
	}
}
