package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"GasCurve/internal/domain/models"
	domrepo "GasCurve/internal/domain/repository"
	"GasCurve/pkg/util"
)

// CSVObservationStore serves observations from a cleaned date,price CSV file.
// Intended for single-analyst deployments without ClickHouse; the whole file
// is re-read on every fetch so edits are picked up by the next rebuild.
type CSVObservationStore struct {
	path string
}

func NewCSVObservationStore(path string) *CSVObservationStore {
	return &CSVObservationStore{path: path}
}

func (s *CSVObservationStore) Init(ctx context.Context) error {
	_, err := LoadCSVFile(s.path)
	return err
}

func (s *CSVObservationStore) GetObservations(ctx context.Context, series string) ([]models.Observation, error) {
	return LoadCSVFile(s.path)
}

// StoreBatch merges the batch into the file, replacing rows with matching
// dates, and rewrites it sorted ascending.
func (s *CSVObservationStore) StoreBatch(ctx context.Context, series string, obs []models.Observation) error {
	existing, err := LoadCSVFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	byDate := make(map[int64]models.Observation, len(existing)+len(obs))
	for _, o := range existing {
		byDate[util.DayStart(o.Date).Unix()] = o
	}
	for _, o := range obs {
		o.Date = util.DayStart(o.Date)
		byDate[o.Date.Unix()] = o
	}

	merged := make([]models.Observation, 0, len(byDate))
	for _, o := range byDate {
		merged = append(merged, o)
	}
	sortObservations(merged)

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("rewrite csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "price"}); err != nil {
		return err
	}
	for _, o := range merged {
		if err := w.Write([]string{
			o.Date.Format("2006-01-02"),
			strconv.FormatFloat(o.Price, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *CSVObservationStore) Health(ctx context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func (s *CSVObservationStore) Close() error { return nil }

var _ domrepo.ObservationStore = (*CSVObservationStore)(nil)

// LoadCSVFile reads a cleaned observation file: a date,price header followed
// by one row per month. Dates must be distinct and strictly increasing; the
// loader rejects anything else rather than silently reordering.
func LoadCSVFile(path string) ([]models.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f, path)
}

func readCSV(r io.Reader, name string) ([]models.Observation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var obs []models.Observation
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("%s:%d: expected date,price", name, line)
		}

		dateStr := strings.TrimSpace(record[0])
		if line == 1 && isHeader(dateStr) {
			continue
		}

		date, ok := util.ParseDate(dateStr)
		if !ok {
			return nil, fmt.Errorf("%s:%d: bad date %q", name, line, dateStr)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad price %q", name, line, record[1])
		}

		if n := len(obs); n > 0 && !obs[n-1].Date.Before(date) {
			return nil, fmt.Errorf("%s:%d: dates must be distinct and ascending (%s after %s)",
				name, line, dateStr, obs[n-1].Date.Format("2006-01-02"))
		}
		obs = append(obs, models.Observation{Date: date, Price: price})
	}

	if len(obs) == 0 {
		return nil, fmt.Errorf("%s: no observations", name)
	}
	return obs, nil
}

func isHeader(s string) bool {
	switch strings.ToLower(s) {
	case "date", "ds", "day", "month":
		return true
	}
	return false
}

func sortObservations(obs []models.Observation) {
	// insertion sort; observation files are small
	for i := 1; i < len(obs); i++ {
		for j := i; j > 0 && obs[j].Date.Before(obs[j-1].Date); j-- {
			obs[j], obs[j-1] = obs[j-1], obs[j]
		}
	}
}
