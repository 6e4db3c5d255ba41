package btrfs

import "os/exec"

// VolumeRemover abstracts the privileged subvolume removal so deletion
// logic can be tested without a real btrfs filesystem
type VolumeRemover interface {
	// Delete removes the subvolume at path and returns the tool's
	// combined output alongside any failure.
	Delete(path string) (output string, err error)
}

// ExecRemover runs the real btrfs binary
type ExecRemover struct {
	Bin string // btrfs executable, defaults to "btrfs"
}

func (e ExecRemover) Delete(path string) (string, error) {
	bin := e.Bin
	if bin == "" {
		bin = "btrfs"
	}

	out, err := exec.Command(bin, "subvolume", "delete", path).CombinedOutput()
	return string(out), err
}

// FakeRemover implements VolumeRemover for testing
// Records all delete calls and can be primed with a failure
type FakeRemover struct {
	Calls  []string
	Output string
	Err    error
}

func (f *FakeRemover) Delete(path string) (string, error) {
	f.Calls = append(f.Calls, path)
	return f.Output, f.Err
}
