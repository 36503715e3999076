package types

// Point is a polygon vertex in decimal degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Airspace is a controlled airspace volume. Top and Bottom are in
// kilometres; the unit they were published in is not kept.
type Airspace struct {
	Name    string
	Polygon []Point
	Top     float64
	Bottom  float64
	Country string
}
