package deleter

import (
	"fmt"
	"path/filepath"

	"snapsweep/internal/btrfs"
	"snapsweep/internal/fsops"
	"snapsweep/internal/logging"
)

// Stage identifies how far a two-stage snapshot removal got
type Stage int

const (
	// StageVolume is the privileged btrfs subvolume removal.
	StageVolume Stage = iota
	// StageDirectory is the recursive removal of the outer snapshot dir.
	StageDirectory
	// StageDone means both stages completed.
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageVolume:
		return "volume"
	case StageDirectory:
		return "directory"
	case StageDone:
		return "done"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Outcome reports the stage a deletion reached and the error that stopped
// it there. A successful delete carries StageDone and a nil error.
type Outcome struct {
	Stage Stage
	Err   error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Deleter removes a single snapshot: first the btrfs subvolume inside it,
// then the outer directory tree. If the subvolume removal fails the outer
// directory is left untouched. No rollback is attempted when the second
// stage fails after the first succeeded; that partial state is surfaced
// only through the outcome and the logs.
type Deleter struct {
	volumes btrfs.VolumeRemover
	fs      fsops.Deleter
	log     logging.Logger
}

func New(volumes btrfs.VolumeRemover, fs fsops.Deleter, log logging.Logger) *Deleter {
	if log == nil {
		log = logging.Nop()
	}
	return &Deleter{volumes: volumes, fs: fs, log: log}
}

// Delete removes the snapshot at path. The path must be absolute; a
// relative path is a programming fault, not a recoverable condition.
func (d *Deleter) Delete(path string) Outcome {
	if !filepath.IsAbs(path) {
		panic(fmt.Sprintf("deleter: snapshot path must be absolute, got %q", path))
	}

	subvolume := filepath.Join(path, "subvolume")
	out, err := d.volumes.Delete(subvolume)
	if err != nil {
		d.log.Error("failed to delete subvolume", "path", subvolume)
		logging.External(d.log, out, "")
		return Outcome{Stage: StageVolume, Err: err}
	}
	logging.External(d.log, out, "")

	if err := d.fs.RemoveAll(path); err != nil {
		d.log.Warn("failed to delete outer snapshot directory", "path", path)
		d.log.Debug("removal error", "error", err)
		return Outcome{Stage: StageDirectory, Err: err}
	}

	return Outcome{Stage: StageDone}
}
