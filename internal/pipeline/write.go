package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// output is one file a run produces.
type output struct {
	name string // for errors: "playlist", "stats"
	path string
	data []byte
}

// partialPath is where data for path is staged before the rename.
func partialPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".partial")
}

// writeFiles stages every output beside its target and only then renames
// them into place. If any output cannot be staged, all staged files are
// removed and no target is touched.
func writeFiles(outs ...output) error {
	staged := make([]string, 0, len(outs))
	cleanup := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}
	for _, o := range outs {
		tmp := partialPath(o.path)
		if err := os.WriteFile(tmp, o.data, 0o644); err != nil {
			_ = os.Remove(tmp)
			cleanup()
			return fmt.Errorf("write %s: %w", o.name, err)
		}
		staged = append(staged, tmp)
	}
	for i, o := range outs {
		if err := os.Rename(staged[i], o.path); err != nil {
			staged = staged[i:]
			cleanup()
			return fmt.Errorf("write %s: %w", o.name, err)
		}
	}
	return nil
}
