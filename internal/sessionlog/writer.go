package sessionlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/gamebar/internal/errors"
	"codeberg.org/mutker/gamebar/internal/logger"
	"codeberg.org/mutker/gamebar/internal/session"
	"github.com/spf13/afero"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644

	// NotAvailable is written for values that could not be read.
	NotAvailable = "N/A"

	fileInfix       = "_GameBar_log_"
	fileStampLayout = "20060102_150405"
	fileExt         = ".csv"
)

type Config struct {
	Dir           string
	Package       string
	MaxRows       int
	FlushInterval time.Duration
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Dir == "" {
		return errFactory.New(ErrInvalidDir)
	}
	if c.MaxRows < 2 {
		return errFactory.WithData(ErrInvalidConfig, struct {
			Field string
			Value int
		}{
			Field: "max_rows",
			Value: c.MaxRows,
		})
	}
	return nil
}

// FileName returns the log file name for a session of pkg started at t.
func FileName(pkg string, t time.Time) string {
	return sanitizePackage(pkg) + fileInfix + t.Format(fileStampLayout) + fileExt
}

func sanitizePackage(pkg string) string {
	pkg = strings.TrimSpace(pkg)
	if pkg == "" {
		return "unknown"
	}
	return strings.NewReplacer("/", "_", "\\", "_", ",", "_", " ", "_").Replace(pkg)
}

// Writer appends rows to one session log. Rows are buffered and written in
// batches by a background flusher and on Close.
type Writer struct {
	fs     afero.Fs
	logger logger.Logger
	cfg    Config
	path   string

	mu      sync.Mutex
	buffer  []Row
	written int
	dropped int
	closed  bool

	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

// NewWriter creates the log file for a session started at now and writes the
// column header.
func NewWriter(fs afero.Fs, cfg Config, log logger.Logger, now time.Time) (*Writer, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := fs.MkdirAll(cfg.Dir, defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrCreateFailed, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.Dir,
			Error: err.Error(),
		})
	}

	path := filepath.Join(cfg.Dir, FileName(cfg.Package, now))
	header := strings.Join(session.Header, session.Delimiter) + "\n"
	if err := afero.WriteFile(fs, path, []byte(header), defaultFilePerm); err != nil {
		return nil, errFactory.WithData(ErrCreateFailed, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "write_header",
			Path:  path,
			Error: err.Error(),
		})
	}

	log.Info().
		Str("path", path).
		Int("max_rows", cfg.MaxRows).
		Dur("flush_interval", cfg.FlushInterval).
		Msg("Session log created")

	w := &Writer{
		fs:            fs,
		logger:        log,
		cfg:           cfg,
		path:          path,
		buffer:        make([]Row, 0, cfg.MaxRows),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}

	if cfg.FlushInterval > 0 {
		w.flushTicker = time.NewTicker(cfg.FlushInterval)
		go w.flusher()
	} else {
		close(w.flushDoneChan)
	}

	return w, nil
}

// Path is the file the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// Append buffers row. Without a flush interval the row is written at once.
func (w *Writer) Append(row Row) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New().New(ErrClosed)
	}

	if len(w.buffer) >= w.cfg.MaxRows {
		if err := w.flush(); err != nil {
			w.dropOldestHalf()
		}
	}

	w.buffer = append(w.buffer, row)

	if w.flushTicker == nil {
		return w.flush()
	}

	return nil
}

// Flush writes buffered rows now.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.flush()
}

// Written returns the number of rows persisted so far.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.written
}

// Dropped returns the number of rows discarded to bound memory.
func (w *Writer) Dropped() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.dropped
}

// Close stops the flusher and writes what is left. Calling Close twice is a
// no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.shutdownChan)
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}
	<-w.flushDoneChan

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.flush(); err != nil {
		return errors.New().WithData(ErrCloseFailed, struct {
			Phase   string
			Pending int
			Error   string
		}{
			Phase:   "final_flush",
			Pending: len(w.buffer),
			Error:   err.Error(),
		})
	}

	w.logger.Info().
		Str("path", w.path).
		Int("rows", w.written).
		Int("dropped", w.dropped).
		Msg("Session log closed")

	return nil
}

func (w *Writer) flusher() {
	defer close(w.flushDoneChan)

	for {
		select {
		case <-w.flushTicker.C:
			w.mu.Lock()
			w.flush()
			w.mu.Unlock()
		case <-w.shutdownChan:
			return
		}
	}
}

// flush must be called with w.mu held. On failure the buffer is kept so the
// rows are retried on the next flush.
func (w *Writer) flush() error {
	if len(w.buffer) == 0 {
		return nil
	}

	var b strings.Builder
	for _, row := range w.buffer {
		b.WriteString(strings.Join(row.Fields(), session.Delimiter))
		b.WriteByte('\n')
	}

	f, err := w.fs.OpenFile(w.path, os.O_WRONLY|os.O_APPEND, defaultFilePerm)
	if err != nil {
		w.logger.Error().Err(err).Str("path", w.path).Msg("Failed to open session log")
		return errors.New().Wrap(ErrWriteFailed, err)
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		w.logger.Error().Err(err).Str("path", w.path).Msg("Failed to write session log")
		return errors.New().Wrap(ErrWriteFailed, err)
	}

	if err := f.Close(); err != nil {
		w.logger.Error().Err(err).Str("path", w.path).Msg("Failed to close session log")
		return errors.New().Wrap(ErrWriteFailed, err)
	}

	w.logger.Debug().Int("rows", len(w.buffer)).Msg("Flushed session rows")
	w.written += len(w.buffer)
	w.buffer = w.buffer[:0]

	return nil
}

func (w *Writer) dropOldestHalf() {
	n := len(w.buffer) / 2
	w.buffer = append(w.buffer[:0], w.buffer[n:]...)
	w.dropped += n

	w.logger.Warn().
		Int("dropped", n).
		Int("max_rows", w.cfg.MaxRows).
		Msg("Session log buffer full, discarding oldest rows")
}
