package airport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"airdata/internal/core/types"

	"github.com/jszwec/csvutil"
)

// ParseResult is the outcome of decoding an airports file.
type ParseResult struct {
	Airports []types.Airport
	// Skipped counts lines that could not be split into fields at all.
	Skipped int
}

// row holds the columns the map layer draws. Numbers that do not parse
// decode as zero so a row is never rejected for its content.
type row struct {
	Ident       string       `csv:"ident"`
	Type        string       `csv:"type"`
	Name        string       `csv:"name"`
	Latitude    lenientFloat `csv:"latitude_deg"`
	Longitude   lenientFloat `csv:"longitude_deg"`
	ElevationFt lenientFloat `csv:"elevation_ft"`
	Country     string       `csv:"iso_country"`
	IATA        string       `csv:"iata_code"`
}

type lenientFloat float64

func (f *lenientFloat) UnmarshalText(text []byte) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(text)), 64)
	if err != nil {
		v = 0
	}
	*f = lenientFloat(v)
	return nil
}

// Parse decodes comma separated rows with a header line. Every row is kept
// with all of its columns in Airport.Columns; short rows are padded with
// empty values and extra fields are dropped.
func Parse(r io.Reader) (ParseResult, error) {
	rows := newRowReader(r)
	dec, err := csvutil.NewDecoder(rows)
	if errors.Is(err, io.EOF) {
		return ParseResult{Airports: []types.Airport{}}, nil
	}
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read airports header: %w", err)
	}
	header := dec.Header()

	result := ParseResult{Airports: []types.Airport{}}
	for {
		var typed row
		err := dec.Decode(&typed)
		if errors.Is(err, io.EOF) {
			break
		}
		if rows.err != nil {
			return result, fmt.Errorf("failed to read airports: %w", rows.err)
		}
		if err != nil {
			// Typed columns stay zero; the raw row is kept below.
			typed = row{}
		}

		airport := types.Airport{
			Ident:       typed.Ident,
			Type:        typed.Type,
			Name:        typed.Name,
			Latitude:    float64(typed.Latitude),
			Longitude:   float64(typed.Longitude),
			ElevationFt: float64(typed.ElevationFt),
			Country:     typed.Country,
			IATA:        typed.IATA,
			Columns:     make(map[string]string, len(header)),
		}
		for i, column := range header {
			airport.Columns[column] = rows.last[i]
		}
		result.Airports = append(result.Airports, airport)
	}
	result.Skipped = rows.skipped
	return result, nil
}

// rowReader feeds csvutil. Every record after the header is fitted to the
// header width, and the last record is kept for Airport.Columns.
type rowReader struct {
	csv     *csv.Reader
	width   int
	last    []string
	skipped int
	err     error
}

func newRowReader(r io.Reader) *rowReader {
	c := csv.NewReader(r)
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	return &rowReader{csv: c}
}

func (r *rowReader) Read() ([]string, error) {
	for {
		record, err := r.csv.Read()
		var parseErr *csv.ParseError
		switch {
		case err == nil:
			if r.width == 0 {
				r.width = len(record)
			} else {
				record = fit(record, r.width)
			}
			r.last = record
			return record, nil
		case errors.Is(err, io.EOF):
			return nil, err
		case errors.As(err, &parseErr):
			r.skipped++
			continue
		default:
			r.err = err
			return nil, err
		}
	}
}

func fit(record []string, width int) []string {
	if len(record) >= width {
		return record[:width]
	}
	padded := make([]string, width)
	copy(padded, record)
	return padded
}
