// Package reports persists analysis reports in a write-ahead log so the HTTP
// surface can serve the latest analysis per pair across restarts.
package reports

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"cryptoadvisor/internal/domain"
)

const (
	DefaultDir   = "./wal/reports"
	segmentLimit = 100
	maxSegments  = 10

	reportKeyPrefix = "report_"
)

var ErrNotFound = errors.New("no report found")

// WALStore persists analysis reports in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed report store.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "report_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init report WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save writes the analysis report to WAL.
func (s *WALStore) Save(report domain.AnalysisReport) error {
	if s == nil || s.wal == nil {
		return errors.New("report store is not initialized")
	}
	if report.Pair == "" {
		return errors.New("report pair is required")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "marshal analysis report")
	}

	key := fmt.Sprintf("%s%s", reportKeyPrefix, report.Pair)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// Latest returns the most recent report for a pair, or ErrNotFound.
func (s *WALStore) Latest(pair string) (domain.AnalysisReport, error) {
	if s == nil || s.wal == nil {
		return domain.AnalysisReport{}, errors.New("report store is not initialized")
	}

	key := fmt.Sprintf("%s%s", reportKeyPrefix, pair)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest []byte
	for msg := range s.wal.Iterator() {
		if msg.Key == key {
			latest = msg.Value
		}
	}

	if latest == nil {
		return domain.AnalysisReport{}, errors.Wrapf(ErrNotFound, "pair %s", pair)
	}

	var report domain.AnalysisReport
	if err := json.Unmarshal(latest, &report); err != nil {
		return domain.AnalysisReport{}, errors.Wrap(err, "unmarshal analysis report")
	}

	return report, nil
}

// Pairs returns every pair that has at least one stored report.
func (s *WALStore) Pairs() []string {
	if s == nil || s.wal == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var pairs []string
	for msg := range s.wal.Iterator() {
		pair := strings.TrimPrefix(msg.Key, reportKeyPrefix)
		if pair == msg.Key {
			continue
		}
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return nil
	}
	return s.wal.Close()
}
