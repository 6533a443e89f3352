// Package trend persists report summaries across sessions for historical
// charting. Thin consumer of report output, backed by an embedded badger
// store.
package trend

import (
	"encoding/json"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/betakit/betakit/report"
)

const keyPrefix = "summary/"

// keyTimeFormat keeps the fractional second fixed-width so that keys sort
// lexically in chronological order; RFC3339Nano trims trailing zeros and
// would order a whole-second key after a fractional one in the same second.
const keyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Point is one historical summary snapshot.
type Point struct {
	At      time.Time      `json:"at"`
	Summary report.Summary `json:"summary"`
}

// Store is a badger-backed archive of summary snapshots.
type Store struct {
	logger zerolog.Logger
	db     *badger.DB
}

// Open opens (or creates) the trend store in dir.
func Open(logger zerolog.Logger, dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open trend store at %s", dir)
	}
	return &Store{logger: logger, db: db}, nil
}

// Close releases the underlying store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a summary snapshot taken at the given time.
func (s *Store) Append(at time.Time, sum report.Summary) error {
	point := Point{At: at.UTC(), Summary: sum}
	data, err := json.Marshal(point)
	if err != nil {
		return errors.Wrap(err, "failed to marshal trend point")
	}
	key := []byte(keyPrefix + point.At.Format(keyTimeFormat))

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return errors.Wrap(err, "failed to append trend point")
	}
	s.logger.Debug().Time("at", point.At).Msg("Trend point recorded")
	return nil
}

// All returns every recorded point in chronological order.
func (s *Store) All() ([]Point, error) {
	var points []Point
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(keyPrefix)); it.ValidForPrefix([]byte(keyPrefix)); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p Point
				if err := json.Unmarshal(val, &p); err != nil {
					s.logger.Warn().Err(err).Msg("Skipping corrupt trend point")
					return nil
				}
				points = append(points, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to read trend store")
	}
	return points, nil
}

// Recent returns the most recent n points, oldest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]Point, error) {
	points, err := s.All()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(points) > n {
		points = points[len(points)-n:]
	}
	return points, nil
}

// PassRateSeries returns the historical pass rates in chronological order.
func (s *Store) PassRateSeries() ([]float64, error) {
	points, err := s.All()
	if err != nil {
		return nil, err
	}
	series := make([]float64, 0, len(points))
	for _, p := range points {
		series = append(series, p.Summary.PassRate)
	}
	return series, nil
}

// SeriesStats summarizes a numeric series for charting consumers.
type SeriesStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Summarize computes min/max/avg over a series. Empty input yields zeros.
func Summarize(series []float64) SeriesStats {
	if len(series) == 0 {
		return SeriesStats{}
	}
	stats := SeriesStats{Min: series[0], Max: series[0]}
	sum := 0.0
	for _, v := range series {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Avg = sum / float64(len(series))
	return stats
}
