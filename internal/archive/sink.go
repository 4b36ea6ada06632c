package archive

import (
	"bytes"
	"fmt"
)

// Sink adapts the toolchain's write-sink contract onto an Archive: closing
// the current output unit appends its bytes as an archive entry instead of
// finalizing a standalone file. The sink resets its unit state after each
// close so one generator run can emit any number of units through it.
//
// A Sink is constructed fresh per (file, generator) pair and is not safe for
// concurrent use; the pipeline is strictly sequential.
type Sink struct {
	archive *Archive
	current string
	buf     bytes.Buffer
}

// NewSink returns a sink writing into the given archive.
func NewSink(a *Archive) *Sink {
	return &Sink{archive: a}
}

// OpenFile begins a new output unit with the given name.
func (s *Sink) OpenFile(name string) error {
	if name == "" {
		return fmt.Errorf("archive sink: empty unit name")
	}
	s.current = name
	s.buf.Reset()
	return nil
}

// WriteLine appends one line of content to the current unit.
func (s *Sink) WriteLine(line string) error {
	if s.current == "" {
		return fmt.Errorf("archive sink: write before open")
	}
	s.buf.WriteString(line)
	s.buf.WriteByte('\n')
	return nil
}

// CloseFile flushes the current unit into the archive and persists it.
func (s *Sink) CloseFile() error {
	if s.current == "" {
		return fmt.Errorf("archive sink: close before open")
	}
	name := s.current
	data := s.buf.Bytes()
	s.current = ""
	s.buf = bytes.Buffer{}
	if err := s.archive.Add(name, data); err != nil {
		return fmt.Errorf("append unit %s: %w", name, err)
	}
	return nil
}
