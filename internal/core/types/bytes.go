package types

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Bytes is a byte count that renders and parses human readable sizes
// ("217 kB", "2MB").
type Bytes uint64

func (b Bytes) String() string {
	return humanize.Bytes(uint64(b))
}

func (b Bytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Bytes) UnmarshalText(data []byte) error {
	return b.Set(string(data))
}

// UnmarshalYAML accepts both plain byte counts and size strings.
func (b *Bytes) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case uint64:
		*b = Bytes(v)
	case int64:
		*b = Bytes(max(v, 0))
	case int:
		*b = Bytes(max(v, 0))
	case float64:
		*b = Bytes(max(v, 0))
	case string:
		if err := b.Set(v); err != nil {
			return fmt.Errorf("invalid byte string %q: %w", v, err)
		}
	default:
		return fmt.Errorf("invalid byte value %v", raw)
	}
	return nil
}

func (b Bytes) MarshalYAML() (any, error) {
	return b.String(), nil
}

func (b Bytes) Int64() int64 {
	return int64(b)
}

// KB returns the size in kilobytes (1024 bytes), the unit used for
// download progress reports.
func (b Bytes) KB() float64 {
	return float64(b) / 1024
}

// Set parses a human readable size. Bare numbers are taken as bytes.
func (b *Bytes) Set(value string) error {
	parsed, err := humanize.ParseBytes(value)
	if err != nil {
		return err
	}
	*b = Bytes(parsed)
	return nil
}
