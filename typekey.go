package depot

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
)

// TypeKey identifies a component type. Keys are ordered by length first and then
// byte-wise, so a shorter key always sorts before a longer one.
type TypeKey string

// NewTypeKey copies b into a new key.
func NewTypeKey(b []byte) TypeKey {
	return TypeKey(b)
}

// typeKeys remembers which type owns each derived key. Function-local types share
// a package path and name, so a later type whose name is taken gets a "#n" suffix.
var typeKeys = struct {
	sync.Mutex
	byType map[reflect.Type]TypeKey
	owner  map[TypeKey]reflect.Type
}{
	byType: make(map[reflect.Type]TypeKey),
	owner:  make(map[TypeKey]reflect.Type),
}

// TypeKeyOf derives a key from T's package path and name. The key is stable for
// the life of the process and never shared by two distinct types.
func TypeKeyOf[T any]() TypeKey {
	typ := reflect.TypeFor[T]()

	typeKeys.Lock()
	defer typeKeys.Unlock()
	if key, ok := typeKeys.byType[typ]; ok {
		return key
	}
	base := TypeKey(typ.String())
	if typ.PkgPath() != "" {
		base = TypeKey(typ.PkgPath() + "." + typ.Name())
	}
	key := base
	for n := 2; ; n++ {
		if _, taken := typeKeys.owner[key]; !taken {
			break
		}
		key = TypeKey(fmt.Sprintf("%s#%d", base, n))
	}
	typeKeys.byType[typ] = key
	typeKeys.owner[key] = typ
	return key
}

// Compare returns -1, 0 or +1.
func Compare(a, b TypeKey) int {
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return bytes.Compare([]byte(a), []byte(b))
}

func (k TypeKey) Equal(other TypeKey) bool {
	return k == other
}

func (k TypeKey) Less(other TypeKey) bool {
	return Compare(k, other) < 0
}

// Bytes returns a copy of the key's bytes.
func (k TypeKey) Bytes() []byte {
	return []byte(k)
}

func (k TypeKey) String() string {
	return string(k)
}

// Concat joins keys in the order given. It does not sort; an Archetype sorts its
// members before building its composite key.
func Concat(keys ...TypeKey) TypeKey {
	n := 0
	for _, k := range keys {
		n += len(k)
	}
	buf := make([]byte, 0, n)
	for _, k := range keys {
		buf = append(buf, k...)
	}
	return TypeKey(buf)
}
