package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"snapsweep/internal/logging"
)

// Snapshot is one mirrored backup unit: a numbered directory under the
// snapshot root, holding the btrfs subvolume received from the source host.
type Snapshot struct {
	Number int
	Path   string
}

var ErrNotFound = errors.New("snapshot root not found")

// Locate resolves the directory holding mirrored snapshots for a snapper
// config. The path must exist and be a directory, anything else is fatal
// to the whole run.
func Locate(remoteRoot, configName string) (string, error) {
	path, err := filepath.Abs(filepath.Join(remoteRoot, configName))
	if err != nil {
		return "", fmt.Errorf("resolve snapshot path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("stat snapshot path %s: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNotFound, path)
	}

	return path, nil
}

// Enumerate scans the immediate children of root and returns every valid
// snapshot. Children that are not directories or whose names are not
// non-negative base-10 integers are skipped at debug level. The returned
// order carries no guarantee.
func Enumerate(root string, log logging.Logger) ([]Snapshot, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot root: %w", err)
	}

	var snapshots []Snapshot
	for _, ent := range entries {
		child := filepath.Join(root, ent.Name())

		if !ent.IsDir() {
			log.Debug("ignoring non-directory snapshot candidate", "path", child)
			continue
		}

		num, err := strconv.Atoi(ent.Name())
		if err != nil || num < 0 {
			log.Debug("ignoring non-numerical snapshot candidate", "path", child)
			continue
		}

		snapshots = append(snapshots, Snapshot{Number: num, Path: child})
	}

	return snapshots, nil
}

// SortByNumber orders snapshots ascending by number. This is the sole
// ordering used for oldest-first deletion eligibility.
func SortByNumber(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].Number < snapshots[j].Number
	})
}
