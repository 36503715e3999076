package airspace

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"airdata/internal/core/types"
)

// ErrMalformed marks an airspace record that lacks a required field or
// carries an unreadable value.
var ErrMalformed = errors.New("malformed airspace record")

const (
	feetPerKilometre = 3281.0
	// Altitudes published in any other unit are flight levels.
	flightLevelPerKilometre = 32.81
)

type record struct {
	Name    *string   `xml:"NAME"`
	Polygon *string   `xml:"GEOMETRY>POLYGON"`
	Top     *altitude `xml:"ALTLIMIT_TOP>ALT"`
	Bottom  *altitude `xml:"ALTLIMIT_BOTTOM>ALT"`
	Country *string   `xml:"COUNTRY"`
}

type altitude struct {
	Unit  string `xml:"UNIT,attr"`
	Value string `xml:",chardata"`
}

// Skip describes a record that was left out.
type Skip struct {
	Index int
	Err   error
}

// ParseResult is the outcome of decoding one airspace file.
type ParseResult struct {
	Airspaces []types.Airspace
	Skipped   []Skip
}

// Parse decodes the records below the AIRSPACES element. Malformed records
// are skipped. When the document itself is broken the records read so far
// are returned together with the error.
func Parse(r io.Reader) (ParseResult, error) {
	result := ParseResult{Airspaces: []types.Airspace{}}
	dec := xml.NewDecoder(r)

	depth := 0
	listDepth := -1
	index := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("failed to read airspaces: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if listDepth < 0 {
				if t.Name.Local == "AIRSPACES" {
					listDepth = depth
				}
				continue
			}
			if depth != listDepth+1 {
				continue
			}
			var rec record
			if err := dec.DecodeElement(&rec, &t); err != nil {
				return result, fmt.Errorf("failed to read airspace %d: %w", index, err)
			}
			depth--
			airspace, err := decodeRecord(rec)
			if err != nil {
				result.Skipped = append(result.Skipped, Skip{Index: index, Err: err})
			} else {
				result.Airspaces = append(result.Airspaces, airspace)
			}
			index++
		case xml.EndElement:
			if depth == listDepth {
				listDepth = -1
			}
			depth--
		}
	}
}

func decodeRecord(rec record) (types.Airspace, error) {
	switch {
	case rec.Name == nil:
		return types.Airspace{}, fmt.Errorf("%w: missing NAME", ErrMalformed)
	case rec.Polygon == nil:
		return types.Airspace{}, fmt.Errorf("%w: missing GEOMETRY/POLYGON", ErrMalformed)
	case rec.Top == nil:
		return types.Airspace{}, fmt.Errorf("%w: missing ALTLIMIT_TOP/ALT", ErrMalformed)
	case rec.Bottom == nil:
		return types.Airspace{}, fmt.Errorf("%w: missing ALTLIMIT_BOTTOM/ALT", ErrMalformed)
	case rec.Country == nil:
		return types.Airspace{}, fmt.Errorf("%w: missing COUNTRY", ErrMalformed)
	}

	top, err := rec.Top.kilometres()
	if err != nil {
		return types.Airspace{}, fmt.Errorf("%w: top: %v", ErrMalformed, err)
	}
	bottom, err := rec.Bottom.kilometres()
	if err != nil {
		return types.Airspace{}, fmt.Errorf("%w: bottom: %v", ErrMalformed, err)
	}
	polygon, err := parsePolygon(*rec.Polygon)
	if err != nil {
		return types.Airspace{}, fmt.Errorf("%w: polygon: %v", ErrMalformed, err)
	}

	return types.Airspace{
		Name:    *rec.Name,
		Polygon: polygon,
		Top:     top,
		Bottom:  bottom,
		Country: *rec.Country,
	}, nil
}

func (a altitude) kilometres() (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
	if err != nil {
		return 0, err
	}
	return ToKilometres(value, a.Unit), nil
}

// ToKilometres converts an altitude limit to kilometres rounded to two
// decimals. "F" is feet; every other unit is treated as a flight level.
func ToKilometres(value float64, unit string) float64 {
	if unit == "F" {
		value /= feetPerKilometre
	} else {
		value /= flightLevelPerKilometre
	}
	return math.Round(value*100) / 100
}

// parsePolygon reads comma separated "lon lat" pairs.
func parsePolygon(text string) ([]types.Point, error) {
	items := strings.Split(text, ",")
	polygon := make([]types.Point, 0, len(items))
	for _, item := range items {
		fields := strings.Fields(item)
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid point %q", item)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		lat, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return nil, err
		}
		polygon = append(polygon, types.Point{Lon: lon, Lat: lat})
	}
	return polygon, nil
}
