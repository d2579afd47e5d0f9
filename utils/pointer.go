package utils

// RefPointer returns a pointer to the given value.
func RefPointer[T any](v T) *T {
	return &v
}

// DerefPointer returns the value behind the pointer, or the zero value of T
// for a nil pointer.
func DerefPointer[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}
