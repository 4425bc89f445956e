package depot

// arena is one pre-reserved byte slab. Chunks are carved from it at a cursor that
// only moves forward; nothing is ever returned.
type arena struct {
	buf    []byte
	cursor int
}

func newArena(size int) *arena {
	return &arena{buf: make([]byte, size)}
}

func (ar *arena) carve(n int) ([]byte, error) {
	if n > ar.available() {
		return nil, CapacityExhaustedError{
			Resource:  "arena",
			Requested: n,
			Available: ar.available(),
		}
	}
	start := ar.cursor
	ar.cursor += n
	return ar.buf[start:ar.cursor:ar.cursor], nil
}

func (ar *arena) available() int {
	return len(ar.buf) - ar.cursor
}

func (ar *arena) size() int {
	return len(ar.buf)
}
