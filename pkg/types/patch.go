package types

// Field is an optional patch value. The zero Field leaves the target
// unchanged; a Field with Set true overwrites it with Value, including the
// zero value (which is how optional entity fields are cleared).
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a Field that overwrites the target with v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Apply writes the field value to dst when the field is set.
func (f Field[T]) Apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}
