package fsops

// Deleter abstracts recursive filesystem removal
// Enables mocking in tests to prove which stage of a delete failed
type Deleter interface {
	RemoveAll(path string) error
}
