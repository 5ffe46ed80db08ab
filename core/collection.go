package core

// Collection is an ordered, persisted set of records of one entity type.
// Every mutating method is applied atomically and mirrored to durable storage before it returns.
type Collection[T any] interface {
	All() []T
	Find(match func(T) bool) (T, bool)
	Filter(match func(T) bool) []T
	// Count counts the matching rows; a nil match counts them all.
	Count(match func(T) bool) int

	Append(rows ...T)
	Prepend(rows ...T)
	// Update applies fn to every matching row and returns the number of rows updated.
	Update(match func(T) bool, fn func(*T)) int
	// Delete removes every matching row and returns the number of rows removed.
	Delete(match func(T) bool) int
	// Mutate replaces the rows with the result of fn, which sees the current rows.
	// Checks that must hold at write time (eg. uniqueness) belong inside fn.
	Mutate(fn func(rows []T) []T)
}
