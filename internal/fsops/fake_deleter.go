package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls without touching the filesystem, and can be
// primed with an error to simulate removal failures
type FakeDeleter struct {
	Calls []string
	Err   error
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	return f.Err
}
