package depot

import (
	"fmt"
	"reflect"
)

// ValidatePlainData reports whether values of typ can be stored as raw bytes: fixed
// size, non-zero, and free of pointers or other references.
func ValidatePlainData(typ reflect.Type) error {
	if typ == nil {
		return fmt.Errorf("nil type")
	}
	if typ.Size() == 0 {
		return fmt.Errorf("%s is zero-sized", typ)
	}
	return checkPlainKind(typ)
}

func checkPlainKind(typ reflect.Type) error {
	switch typ.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return nil
	case reflect.Array:
		return checkPlainKind(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			f := typ.Field(i)
			if err := checkPlainKind(f.Type); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%s holds a reference (%s)", typ, typ.Kind())
}
