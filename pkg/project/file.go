package project

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/OpenTraceLab/OpenTracePCB/pkg/annotation"
	"github.com/OpenTraceLab/OpenTracePCB/pkg/nodeid"
)

// Load decodes and restores a document from r.
func Load(r io.Reader, alloc *nodeid.Allocator, log *logrus.Entry) (*annotation.Store, Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Report{}, fmt.Errorf("project: read: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, Report{}, err
	}
	return doc.Restore(alloc, log)
}

// Save captures s and writes it to w.
func Save(w io.Writer, s *annotation.Store, counter nodeid.ID) error {
	data, err := Encode(Capture(s, counter))
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("project: write: %w", err)
	}
	return nil
}

// LoadFile loads the document at path.
func LoadFile(path string, alloc *nodeid.Allocator, log *logrus.Entry) (*annotation.Store, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("project: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, alloc, log)
}

// SaveFile writes the document for s to path.
func SaveFile(path string, s *annotation.Store, counter nodeid.ID) error {
	data, err := Encode(Capture(s, counter))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("project: write %s: %w", path, err)
	}
	return nil
}
