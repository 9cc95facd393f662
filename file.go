// FILE: lixenwraith/logtree/file.go
package logtree

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/logtree/formatter"
	"github.com/lixenwraith/logtree/internal/completion"
	"github.com/lixenwraith/logtree/sanitizer"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

// ErrClosed is returned by operations on a closed transport.
var ErrClosed = fmtErrorf("transport closed")

// RotationFile describes an archive produced by rotation.
type RotationFile struct {
	Path        string // archive path, always the ".1" slot
	RotationDir string
	Size        int64 // bytes accounted to the file when it was archived
}

// RotationArchive describes an archive found or deleted by a retention pass.
type RotationArchive struct {
	Path      string
	Index     int
	Timestamp time.Time
}

// FileStats is a snapshot of the transport counters.
type FileStats struct {
	Records     uint64 // records appended
	Bytes       uint64 // encoded bytes appended
	Rotations   uint64
	Cleaned     uint64 // archives deleted by retention
	Dropped     uint64 // records rejected by the renderer or after close
	Errors      uint64 // filesystem failures swallowed during writes and rotation
	CurrentSize int64  // bytes accounted to the active file
}

// FileOption customizes a FileTransport beyond its FileConfig.
type FileOption func(*FileTransport)

// WithFs replaces the filesystem, e.g. with afero.NewMemMapFs() in tests.
func WithFs(fs afero.Fs) FileOption {
	return func(t *FileTransport) {
		t.fs = fs
	}
}

// WithClock replaces the clock used by the archive age limiter.
func WithClock(now func() time.Time) FileOption {
	return func(t *FileTransport) {
		t.now = now
	}
}

// FileTransport appends records to a file, rotating it into numbered archives
// once it grows past the configured size. Writes are serialized: the goroutine
// that finds the transport idle drains every record queued behind it.
type FileTransport struct {
	*Base

	fs   afero.Fs
	now  func() time.Time
	path string
	cfg  atomic.Pointer[FileConfig]

	mu          sync.Mutex
	idle        *sync.Cond
	writing     bool
	queue       []Record
	closed      bool
	notifying   bool // the drain is running rotated or cleaned listeners
	closeOnIdle bool // Close was called from such a listener

	// Owned by the draining goroutine
	file      afero.File
	encoder   *encoding.Encoder
	formatter *formatter.Formatter
	fmtCfg    *FileConfig

	currentSize atomic.Int64
	records     atomic.Uint64
	bytes       atomic.Uint64
	rotations   atomic.Uint64
	cleaned     atomic.Uint64
	dropped     atomic.Uint64
	errors      atomic.Uint64

	rotatedEvt emitter[RotationFile]
	cleanedEvt emitter[RotationArchive]
}

// NewFileTransport opens (or creates) the configured log file and returns an
// unattached transport. A nil cfg uses DefaultFileConfig.
func NewFileTransport(cfg *FileConfig, opts ...FileOption) (*FileTransport, error) {
	if cfg == nil {
		cfg = DefaultFileConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	t := &FileTransport{
		fs:  afero.NewOsFs(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.idle = sync.NewCond(&t.mu)
	t.rotatedEvt.name = "rotated"
	t.cleanedEvt.name = "cleaned"
	t.rotatedEvt.report = t.reportErrors
	t.cleanedEvt.report = t.reportErrors

	path, err := filepath.Abs(cfg.FileName)
	if err != nil {
		return nil, fmtErrorf("failed to resolve log file path %s: %w", cfg.FileName, err)
	}
	t.path = path

	if t.encoder, err = newEncoder(cfg.Encoding); err != nil {
		return nil, err
	}

	if t.file, err = t.openFile(); err != nil {
		return nil, err
	}
	t.readFileSize()

	t.cfg.Store(cfg)
	t.Base = NewBase(cfg.level(), t)
	t.Base.attached.report = t.reportErrors
	t.Base.detached.report = t.reportErrors
	return t, nil
}

func (t *FileTransport) reportErrors() bool {
	return t.cfg.Load().InternalErrorsToStderr
}

// FileName returns the absolute path of the active log file
func (t *FileTransport) FileName() string {
	return t.path
}

// Config returns a copy of the active configuration
func (t *FileTransport) Config() *FileConfig {
	return t.cfg.Load().Clone()
}

// RotationDir returns the directory archives are moved into
func (t *FileTransport) RotationDir() string {
	return t.rotationDir(t.cfg.Load())
}

func (t *FileTransport) rotationDir(cfg *FileConfig) string {
	if cfg.RotationDir == "" {
		return filepath.Dir(t.path)
	}
	if dir, err := filepath.Abs(cfg.RotationDir); err == nil {
		return dir
	}
	return cfg.RotationDir
}

// Reconfigure swaps the runtime settings: level, format, prefix options and
// rotation limits. The file name and encoding are fixed for the transport's life.
func (t *FileTransport) Reconfigure(cfg *FileConfig) error {
	if cfg == nil {
		return fmtErrorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	current := t.cfg.Load()
	if path, err := filepath.Abs(cfg.FileName); err != nil || path != t.path {
		return fmtErrorf("file_name cannot change at runtime (have %s, got %s)", t.path, cfg.FileName)
	}
	if !strings.EqualFold(cfg.Encoding, current.Encoding) {
		return fmtErrorf("encoding cannot change at runtime (have %s, got %s)", current.Encoding, cfg.Encoding)
	}

	t.cfg.Store(cfg.Clone())
	t.SetLevel(cfg.level())
	return nil
}

// OnLoggerOutput queues the record for writing
func (t *FileTransport) OnLoggerOutput(rec Record) {
	t.write([]Record{rec})
}

// write appends the batch, or queues it when another goroutine is draining.
func (t *FileTransport) write(batch []Record) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.dropped.Add(uint64(len(batch)))
		return
	}
	if t.writing {
		t.queue = append(t.queue, batch...)
		t.mu.Unlock()
		return
	}
	t.writing = true
	t.mu.Unlock()

	for {
		for _, rec := range batch {
			t.writeRecord(rec)
		}

		t.mu.Lock()
		if len(t.queue) == 0 {
			t.writing = false
			if t.closeOnIdle {
				t.closeOnIdle = false
				if err := t.closeFile(); err != nil {
					t.errors.Add(1)
					internalLog(t.reportErrors(), "%v", err)
				}
			}
			t.idle.Broadcast()
			t.mu.Unlock()
			return
		}
		batch = t.queue
		t.queue = nil
		t.mu.Unlock()
	}
}

// writeRecord renders and appends one record, rotating when the threshold is reached.
func (t *FileTransport) writeRecord(rec Record) {
	cfg := t.cfg.Load()
	defer func() {
		if r := recover(); r != nil {
			t.dropped.Add(1)
			internalLog(cfg.InternalErrorsToStderr, "panic while rendering record: %v", r)
		}
	}()

	line, err := t.formatterFor(cfg).Format(rec.entry())
	if err != nil {
		t.dropped.Add(1)
		internalLog(cfg.InternalErrorsToStderr, "dropped record: %v", err)
		return
	}

	content := line
	if t.encoder != nil {
		if content, err = t.encoder.Bytes(line); err != nil {
			t.dropped.Add(1)
			internalLog(cfg.InternalErrorsToStderr, "failed to encode record as %s: %v", cfg.Encoding, err)
			return
		}
	}

	size := t.currentSize.Add(int64(len(content)))
	t.records.Add(1)
	t.bytes.Add(uint64(len(content)))

	if cfg.rotationEnabled() && size >= cfg.MaxFileSize {
		res, err := t.rotate(content, cfg).Wait(context.Background())
		if err == nil {
			err = res.err
		}
		if err != nil {
			t.errors.Add(1)
			internalLog(cfg.InternalErrorsToStderr, "rotation of %s incomplete: %v", t.path, err)
		}
		t.notify(res)
		return
	}

	t.appendContent(content, cfg)
}

func (t *FileTransport) appendContent(content []byte, cfg *FileConfig) {
	if t.file == nil {
		file, err := t.openFile()
		if err != nil {
			t.errors.Add(1)
			internalLog(cfg.InternalErrorsToStderr, "failed to reopen log file: %v", err)
			return
		}
		t.file = file
	}
	if _, err := t.file.Write(content); err != nil {
		t.errors.Add(1)
		internalLog(cfg.InternalErrorsToStderr, "failed to write to log file: %v", err)
	}
}

// formatterFor rebuilds the formatter when the configuration was swapped
func (t *FileTransport) formatterFor(cfg *FileConfig) *formatter.Formatter {
	if t.formatter == nil || t.fmtCfg != cfg {
		san := sanitizer.New().Policy(sanitizer.PolicyPreset(cfg.Sanitization))
		t.formatter = formatter.New(cfg.formatterOptions(), nil, san)
		t.fmtCfg = cfg
	}
	return t.formatter
}

// openFile creates the log file's directory if needed and opens it for appending
func (t *FileTransport) openFile() (afero.File, error) {
	if err := t.fs.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return nil, fmtErrorf("failed to create log directory %s: %w", filepath.Dir(t.path), err)
	}
	file, err := t.fs.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open log file %s: %w", t.path, err)
	}
	return file, nil
}

// readFileSize seeds the size counter from the file on disk, zero when unreadable
func (t *FileTransport) readFileSize() {
	if fi, err := t.fs.Stat(t.path); err == nil {
		t.currentSize.Store(fi.Size())
		return
	}
	t.currentSize.Store(0)
}

// rotation is the outcome of one rotation. err is set when the active file
// could not be archived or reopened; deleted may be non-empty regardless.
type rotation struct {
	file     RotationFile
	archived bool
	deleted  []RotationArchive
	err      error
}

// rotate finalizes the active file with final as its last chunk and archives it.
// The returned source settles once a fresh file is open, and is rejected only
// when the rotation goroutine panics.
func (t *FileTransport) rotate(final []byte, cfg *FileConfig) *completion.Source[rotation] {
	src := completion.New[rotation]()
	file := t.file
	t.file = nil

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = src.Reject(fmtErrorf("rotation panicked: %v", r))
			}
		}()
		_ = src.Resolve(t.finishRotation(file, final, cfg))
	}()

	return src
}

// notify raises cleaned and then rotated events on the draining goroutine.
// Sync and Close called from these listeners do not wait for the drain.
func (t *FileTransport) notify(res rotation) {
	if len(res.deleted) == 0 && !res.archived {
		return
	}
	t.mu.Lock()
	t.notifying = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.notifying = false
		t.mu.Unlock()
	}()

	for _, a := range res.deleted {
		t.cleanedEvt.emit(a)
	}
	if res.archived {
		t.rotatedEvt.emit(res.file)
	}
}

func (t *FileTransport) finishRotation(file afero.File, final []byte, cfg *FileConfig) rotation {
	var errs error
	if file != nil {
		if _, err := file.Write(final); err != nil {
			errs = combineErrors(errs, fmtErrorf("failed to write final chunk: %w", err))
		}
		if err := file.Sync(); err != nil {
			errs = combineErrors(errs, fmtErrorf("failed to sync log file: %w", err))
		}
		if err := file.Close(); err != nil {
			errs = combineErrors(errs, fmtErrorf("failed to close log file: %w", err))
		}
	} else {
		t.appendContent(final, cfg)
		if t.file != nil {
			_ = t.file.Close()
			t.file = nil
		}
	}

	rotationDir := t.rotationDir(cfg)
	base := filepath.Base(t.path)
	archive := archivePath(rotationDir, base, 1)
	info := RotationFile{Path: archive, RotationDir: rotationDir}

	unlock := lockDir(rotationDir)
	if err := t.fs.MkdirAll(rotationDir, 0755); err != nil {
		errs = combineErrors(errs, fmtErrorf("failed to create rotation directory %s: %w", rotationDir, err))
	}
	deleted, err := cleanRotationDir(t.fs, rotationDir, base, cfg.retention(), t.now())
	if err != nil {
		errs = combineErrors(errs, err)
	}
	renameErr := t.fs.Rename(t.path, archive)
	unlock()

	t.cleaned.Add(uint64(len(deleted)))

	if renameErr == nil {
		t.rotations.Add(1)
		info.Size = t.currentSize.Load()
	} else {
		errs = combineErrors(errs, fmtErrorf("failed to archive %s: %w", t.path, renameErr))
	}

	newFile, openErr := t.openFile()
	if openErr != nil {
		errs = combineErrors(errs, openErr)
	}
	t.file = newFile

	if renameErr == nil {
		t.currentSize.Store(0)
	} else {
		// Still appending to the same file
		t.readFileSize()
	}

	res := rotation{file: info, archived: renameErr == nil, deleted: deleted}
	if renameErr != nil || openErr != nil {
		res.err = errs
		return res
	}
	if errs != nil {
		// Cleanup failures do not fail the rotation
		internalLog(cfg.InternalErrorsToStderr, "rotation cleanup: %v", errs)
	}
	return res
}

// Sync waits for in-flight writes and flushes the active file to disk.
// While rotation listeners run it syncs without waiting for the drain.
func (t *FileTransport) Sync() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.writing && !t.notifying {
		t.idle.Wait()
	}
	if t.closed {
		return ErrClosed
	}
	if t.file == nil {
		return nil
	}
	if err := t.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file: %w", err)
	}
	return nil
}

// Close detaches the transport, waits for queued records to be written and
// closes the file. Records arriving afterwards are dropped. Called from a
// rotation listener, Close returns at once and the file is closed when the
// drain finishes.
func (t *FileTransport) Close() error {
	t.Base.Close()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.writing && t.notifying {
		t.closeOnIdle = true
		return nil
	}
	for t.writing {
		t.idle.Wait()
	}
	return t.closeFile()
}

// closeFile syncs and closes the active file; t.mu is held and no write is in flight
func (t *FileTransport) closeFile() error {
	if t.file == nil {
		return nil
	}
	var err error
	if errSync := t.file.Sync(); errSync != nil {
		err = fmtErrorf("failed to sync log file: %w", errSync)
	}
	if errClose := t.file.Close(); errClose != nil {
		err = combineErrors(err, fmtErrorf("failed to close log file: %w", errClose))
	}
	t.file = nil
	return err
}

// Stats returns a snapshot of the transport counters
func (t *FileTransport) Stats() FileStats {
	return FileStats{
		Records:     t.records.Load(),
		Bytes:       t.bytes.Load(),
		Rotations:   t.rotations.Load(),
		Cleaned:     t.cleaned.Load(),
		Dropped:     t.dropped.Load(),
		Errors:      t.errors.Load(),
		CurrentSize: t.currentSize.Load(),
	}
}

// OnRotated registers fn to run after each archived rotation
func (t *FileTransport) OnRotated(fn func(RotationFile)) ListenerID {
	return t.rotatedEvt.on(fn)
}

// OnCleaned registers fn to run for each archive deleted by retention
func (t *FileTransport) OnCleaned(fn func(RotationArchive)) ListenerID {
	return t.cleanedEvt.on(fn)
}

// RemoveListener unregisters any listener registered on the transport
func (t *FileTransport) RemoveListener(id ListenerID) bool {
	return t.rotatedEvt.off(id) || t.cleanedEvt.off(id) || t.Base.RemoveListener(id)
}

// newEncoder returns nil for UTF-8, which needs no transcoding
func newEncoder(name string) (*encoding.Encoder, error) {
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf-8":
		return nil, nil
	case EncodingUTF16LE:
		return xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewEncoder(), nil
	case EncodingUTF16BE:
		return xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewEncoder(), nil
	case EncodingLatin1, "iso-8859-1":
		return encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()), nil
	}
	return nil, fmtErrorf("unsupported encoding: '%s' (use utf8, utf16le, utf16be or latin1)", name)
}
