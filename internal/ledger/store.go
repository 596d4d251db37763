// Package ledger persists discovered centres as an append-only CSV file and
// answers exact-identity duplicate queries against an in-memory snapshot.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
)

// Header is the fixed first row of every ledger file.
var Header = []string{"name", "address", "postcode", "availability", "dateCollected"}

// Store owns one ledger file. Callers keep their own in-memory view: Append
// writes the durable row only, and the caller extends its working set after
// a successful append (explicit two-step contract).
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore returns a store for the ledger at path.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path reports the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Initialize creates the ledger file with its header if it does not exist.
// Idempotent: an existing file is left untouched. A missing parent directory
// is created and the write retried once; any other failure propagates.
func (s *Store) Initialize() error {
	if _, err := os.Stat(s.path); err == nil {
		s.logger.Debug("ledger file already exists", zap.String("path", s.path))
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat ledger %s: %w", s.path, err)
	}

	err := s.writeHeader()
	if errors.Is(err, fs.ErrNotExist) {
		if mkErr := os.MkdirAll(filepath.Dir(s.path), 0o750); mkErr != nil {
			return fmt.Errorf("create ledger dir for %s: %w", s.path, mkErr)
		}
		err = s.writeHeader()
	}
	if err != nil {
		return fmt.Errorf("initialize ledger %s: %w", s.path, err)
	}
	s.logger.Info("ledger file initialized", zap.String("path", s.path))
	return nil
}

func (s *Store) writeHeader() error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadAll parses every persisted row into memory. Rows with the wrong field
// count are skipped, not fatal: a partially corrupt ledger still loads.
func (s *Store) LoadAll() ([]centre.Centre, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row length validated below so bad rows skip

	var centres []centre.Centre
	first := true
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping unreadable ledger row", zap.Error(err))
			continue
		}
		if first {
			first = false
			continue // header
		}
		if len(record) != len(Header) {
			s.logger.Warn("skipping malformed ledger row",
				zap.Int("fields", len(record)),
			)
			continue
		}
		centres = append(centres, rowToCentre(record))
	}
	return centres, nil
}

// Append durably writes one centre as a CSV row. The in-memory view is the
// caller's to update; a failed append must leave that view unchanged.
func (s *Store) Append(c centre.Centre) error {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("open ledger %s for append: %w", s.path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(centreToRow(c)); err != nil {
		f.Close()
		return fmt.Errorf("append to ledger %s: %w", s.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush ledger %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger %s: %w", s.path, err)
	}
	return nil
}

// IsDuplicate reports whether c matches some candidate on the normalized
// (name, address) identity. Exact match only, no fuzzy comparison.
func (s *Store) IsDuplicate(c centre.Centre, candidates []centre.Centre) bool {
	key := c.Key()
	for _, existing := range candidates {
		if existing.Key() == key {
			return true
		}
	}
	return false
}

func centreToRow(c centre.Centre) []string {
	availability := c.Availability
	if availability == "" {
		availability = centre.Unknown
	}
	collected := c.CollectedAt
	if collected.IsZero() {
		collected = time.Now().UTC()
	}
	return []string{
		c.Name,
		c.Address,
		c.Postcode,
		string(availability),
		collected.Format(time.RFC3339),
	}
}

func rowToCentre(record []string) centre.Centre {
	c := centre.Centre{
		Name:         record[0],
		Address:      record[1],
		Postcode:     record[2],
		Availability: centre.Availability(record[3]),
	}
	if t, err := time.Parse(time.RFC3339, record[4]); err == nil {
		c.CollectedAt = t
	}
	return c
}
