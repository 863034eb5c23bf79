package sessionlog

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"github.com/spf13/afero"
)

var fileNamePattern = regexp.MustCompile(`^(.+)_GameBar_log_(\d{8}_\d{6})\.csv$`)

// Entry describes a session log found on disk.
type Entry struct {
	Path    string
	Package string
	Started time.Time
	Size    int64
}

// List returns the session logs in dir, newest first. A missing directory
// yields no entries.
func List(fs afero.Fs, dir string) ([]Entry, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New().Wrap(ErrListFailed, err)
	}

	var entries []Entry
	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		m := fileNamePattern.FindStringSubmatch(info.Name())
		if m == nil {
			continue
		}

		started, err := time.ParseInLocation(fileStampLayout, m[2], time.Local)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{
			Path:    filepath.Join(dir, info.Name()),
			Package: m[1],
			Started: started,
			Size:    info.Size(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Started.Equal(entries[j].Started) {
			return entries[i].Package < entries[j].Package
		}
		return entries[i].Started.After(entries[j].Started)
	})

	return entries, nil
}
