package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
)

// FileSink writes one rendered statement per line.
type FileSink struct {
	path     string
	file     *os.File
	writer   *bufio.Writer
	renderer *sqlgen.Renderer
	lines    int
	closed   bool
}

func NewFileSink(path string, renderer *sqlgen.Renderer) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &FileSink{
		path:     path,
		file:     file,
		writer:   bufio.NewWriter(file),
		renderer: renderer,
	}, nil
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Lines() int {
	return s.lines
}

func (s *FileSink) Write(stmt sqlgen.Statement) error {
	line, err := s.renderer.Render(stmt)
	if err != nil {
		return err
	}
	return s.WriteLine(line)
}

// WriteLine writes raw SQL, such as a DDL preamble, followed by a newline.
func (s *FileSink) WriteLine(line string) error {
	if _, err := s.writer.WriteString(line); err != nil {
		return fmt.Errorf("failed to write to %s: %w", s.path, err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write to %s: %w", s.path, err)
	}
	s.lines++
	return nil
}

// Close flushes and closes the file. Calls after the first are no-ops.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.writer.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, closeErr)
	}
	return nil
}

// MemorySink keeps statements in memory.
type MemorySink struct {
	Statements []sqlgen.Statement
}

func (s *MemorySink) Write(stmt sqlgen.Statement) error {
	s.Statements = append(s.Statements, stmt)
	return nil
}

// Rows returns every buffered row of the table, across statements.
func (s *MemorySink) Rows(table string) [][]interface{} {
	var rows [][]interface{}
	for _, stmt := range s.Statements {
		if stmt.Table == table {
			rows = append(rows, stmt.Rows...)
		}
	}
	return rows
}
