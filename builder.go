// FILE: lixenwraith/logtree/builder.go
package logtree

import (
	"time"

	"github.com/spf13/afero"
)

// Builder provides a fluent API for building file transports.
// It wraps a FileConfig and accumulates the first error for Build.
type Builder struct {
	cfg    *FileConfig
	opts   []FileOption
	attach []*Logger
	err    error
}

// NewBuilder creates a new file transport builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultFileConfig(),
	}
}

// Build opens the transport and attaches it to the nodes given to AttachTo.
func (b *Builder) Build() (*FileTransport, error) {
	if b.err != nil {
		return nil, b.err
	}

	t, err := NewFileTransport(b.cfg, b.opts...)
	if err != nil {
		return nil, err
	}
	for _, l := range b.attach {
		t.Attach(l)
	}
	return t, nil
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() *FileConfig {
	return b.cfg.Clone()
}

// Level sets the transport level.
func (b *Builder) Level(level Level) *Builder {
	if !level.Valid() {
		b.setErr(fmtErrorf("invalid level: %d", level))
		return b
	}
	b.cfg.Level = level.String()
	return b
}

// LevelString sets the transport level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if _, err := ParseLevel(level); err != nil {
		b.setErr(err)
		return b
	}
	b.cfg.Level = level
	return b
}

// FileName sets the active log file path.
func (b *Builder) FileName(name string) *Builder {
	b.cfg.FileName = name
	return b
}

// Encoding sets the file encoding.
func (b *Builder) Encoding(enc string) *Builder {
	b.cfg.Encoding = enc
	return b
}

// EOL sets the line terminator, "lf" or "crlf".
func (b *Builder) EOL(eol string) *Builder {
	b.cfg.EOL = eol
	return b
}

// Format sets the output format.
func (b *Builder) Format(format string) *Builder {
	b.cfg.Format = format
	return b
}

// Sanitization sets the sanitizer policy for string arguments.
func (b *Builder) Sanitization(policy string) *Builder {
	b.cfg.Sanitization = policy
	return b
}

// DisableRotation turns rotation off entirely.
func (b *Builder) DisableRotation() *Builder {
	b.cfg.DisableRotation = true
	return b
}

// RotationDir sets the archive directory.
func (b *Builder) RotationDir(dir string) *Builder {
	b.cfg.RotationDir = dir
	return b
}

// MaxFileSize sets the rotation threshold in bytes.
func (b *Builder) MaxFileSize(size int64) *Builder {
	b.cfg.MaxFileSize = size
	return b
}

// MaxArchiveCount sets how many archives are kept.
func (b *Builder) MaxArchiveCount(count int64) *Builder {
	b.cfg.MaxArchiveCount = count
	return b
}

// MaxArchiveAge sets the archive expiry.
func (b *Builder) MaxArchiveAge(age time.Duration) *Builder {
	b.cfg.MaxArchiveAgeMs = age.Milliseconds()
	return b
}

// IncludeDates adds the date to prefix timestamps.
func (b *Builder) IncludeDates(include bool) *Builder {
	b.cfg.IncludeDates = include
	return b
}

// IncludeLoggerNames toggles the logger name in prefixes.
func (b *Builder) IncludeLoggerNames(include bool) *Builder {
	b.cfg.IncludeLoggerNames = include
	return b
}

// UTC renders prefix timestamps in UTC.
func (b *Builder) UTC(utc bool) *Builder {
	b.cfg.UTC = utc
	return b
}

// InternalErrorsToStderr reports swallowed failures on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Override applies "key=value" overrides on top of the builder state.
func (b *Builder) Override(overrides ...string) *Builder {
	if b.err != nil {
		return b
	}
	cfg, err := b.cfg.ApplyOverrides(overrides...)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.cfg = cfg
	return b
}

// Fs sets the filesystem the transport writes through.
func (b *Builder) Fs(fs afero.Fs) *Builder {
	b.opts = append(b.opts, WithFs(fs))
	return b
}

// AttachTo attaches the built transport to the given nodes.
func (b *Builder) AttachTo(loggers ...*Logger) *Builder {
	b.attach = append(b.attach, loggers...)
	return b
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}
