package eventlog

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/Daskott/helmetguard/server/models"
	"github.com/Daskott/helmetguard/utils"
	"github.com/pkg/errors"
)

// Store keeps the audit log as a single JSON array on disk. Every Append reads
// the whole file, adds the record and writes the file back.
//
// The mutex only serialises appends inside one process. Two processes sharing the
// same file can still lose each other's updates; deployments are single instance.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) (*Store, error) {
	if err := utils.CreateParentDirIfNotExist(path); err != nil {
		return nil, errors.Wrap(err, "eventlog.NewStore")
	}

	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Append adds 'record' to the end of the log.
func (s *Store) Append(record models.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}

	records = append(records, record)

	return s.write(records)
}

// ReadAll returns every record in insertion order. A missing or empty
// file is an empty log, not an error.
func (s *Store) ReadAll() ([]models.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *Store) read() ([]models.EventRecord, error) {
	records := []models.EventRecord{}

	data, err := ioutil.ReadFile(s.path)
	if os.IsNotExist(err) {
		return records, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read event log %s", s.path)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}

	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrapf(err, "unable to decode event log %s", s.path)
	}

	return records, nil
}

// write replaces the log through a temp file so readers never see half a file.
func (s *Store) write(records []models.EventRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to encode event log")
	}

	tmp, err := ioutil.TempFile(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "unable to create temp event log")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "unable to write temp event log")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "unable to close temp event log")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "unable to replace event log %s", s.path)
	}

	return nil
}
