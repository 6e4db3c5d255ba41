package snapper

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	"snapsweep/internal/logging"
)

// snap-sync tags the most recent completed backup with this description.
const latestMarker = "latest incremental backup"

// Lister abstracts the snapper list invocation so the parsing logic can be
// unit-tested against canned output
type Lister interface {
	List(configName string) (stdout, stderr string, err error)
}

// ExecLister runs the real snapper binary
type ExecLister struct {
	Bin string // snapper executable, defaults to "snapper"
}

func (e ExecLister) List(configName string) (string, string, error) {
	bin := e.Bin
	if bin == "" {
		bin = "snapper"
	}

	cmd := exec.Command(bin, "-c", configName, "list", "--columns", "number,description")
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// Resolver determines which snapshot number is marked as the most recent
// successful backup
type Resolver struct {
	lister Lister
	log    logging.Logger
}

func NewResolver(lister Lister, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Nop()
	}
	return &Resolver{lister: lister, log: log}
}

// Latest returns the number of the latest snap-sync snapshot, or ok=false
// when no snapshot carries the marker. A non-zero snapper exit is fatal;
// the returned error means the whole run must stop.
func (r *Resolver) Latest(configName string) (num int, ok bool, err error) {
	stdout, stderr, err := r.lister.List(configName)
	if err != nil {
		if strings.Contains(stderr, "No permissions") {
			r.log.Error("insufficient permissions to read snapper config, try running as root", "config", configName)
		} else {
			r.log.Error("failed to get snapshot list from snapper", "config", configName)
		}
		logging.External(r.log, stdout, stderr)
		return 0, false, err
	}

	num, ok = latestNumber(stdout)
	return num, ok, nil
}

// latestNumber scans the listing bottom-up and takes the first line whose
// description contains the marker. If that line's leading token is not an
// integer the marker counts as absent; earlier matches are not consulted.
func latestNumber(stdout string) (int, bool) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.Contains(lines[i], latestMarker) {
			continue
		}

		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			return 0, false
		}
		num, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, false
		}
		return num, true
	}

	return 0, false
}
