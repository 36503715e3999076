package types

// Airport is one row of the airports file. Columns holds every column of
// the row keyed by header name; the schema belongs to the upstream source
// and is not validated. The typed fields mirror the columns the map layer
// draws and are zero when the column is absent, empty or not a number.
type Airport struct {
	Ident       string
	Type        string
	Name        string
	Latitude    float64
	Longitude   float64
	ElevationFt float64
	Country     string
	IATA        string

	Columns map[string]string
}

// Get returns the raw value of the named column.
func (a Airport) Get(column string) string {
	return a.Columns[column]
}
