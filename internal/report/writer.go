// Package report writes rank tables as flat text.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

// FileName is the report file created inside the output directory
const FileName = "page_ranks.txt"

// Write emits one "<id>.html <rank>" line per entry, ordered by ID
func Write(w io.Writer, ranks map[string]float64) error {
	ids := make([]string, 0, len(ranks))
	for id := range ranks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	bw := bufio.NewWriter(w)
	for _, id := range ids {
		if _, err := fmt.Fprintf(bw, "%s.html %s\n", id, strconv.FormatFloat(ranks[id], 'g', -1, 64)); err != nil {
			return fmt.Errorf("write rank for %s: %w", id, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes the report to <dir>/page_ranks.txt and returns its path.
// Failures are logged and otherwise ignored.
func WriteFile(dir string, ranks map[string]float64) string {
	path := filepath.Join(dir, FileName)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		logrus.Warnf("Failed to create report dir %s: %v", dir, err)
		return path
	}

	file, err := os.Create(path)
	if err != nil {
		logrus.Warnf("Failed to create rank report %s: %v", path, err)
		return path
	}
	defer file.Close()

	if err := Write(file, ranks); err != nil {
		logrus.Warnf("Failed to write rank report %s: %v", path, err)
	}
	return path
}
