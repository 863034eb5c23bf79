package probe

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/spf13/afero"
)

// readLine returns the trimmed first line of a node.
func readLine(fs afero.Fs, path string) (string, error) {
	errFactory := errors.New()

	if path == "" {
		return "", errFactory.New(ErrNotConfigured)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errFactory.Wrap(ErrNodeUnreadable, err)
	}

	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errFactory.WithData(ErrNodeMalformed, path)
	}

	return line, nil
}

func readInt(fs afero.Fs, path string) (int64, error) {
	line, err := readLine(fs, path)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, errors.New().Wrap(ErrNodeMalformed, err)
	}
	return v, nil
}

func divide(raw int64, divider int) float64 {
	if divider <= 0 {
		divider = 1
	}
	return float64(raw) / float64(divider)
}
