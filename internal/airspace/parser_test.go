package airspace

import (
	"errors"
	"strings"
	"testing"

	"airdata/internal/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<OPENAIP VERSION="367810a0f94887bcd1f6e9e2e1ea4e5fc2c6c1d0" DATAFORMAT="1.1">
<AIRSPACES>
  <ASP CATEGORY="CTR">
    <VERSION>1</VERSION>
    <COUNTRY>DE</COUNTRY>
    <NAME>CTR FRANKFURT</NAME>
    <ALTLIMIT_TOP REFERENCE="MSL">
      <ALT UNIT="F">1000</ALT>
    </ALTLIMIT_TOP>
    <ALTLIMIT_BOTTOM REFERENCE="GND">
      <ALT UNIT="F">0</ALT>
    </ALTLIMIT_BOTTOM>
    <GEOMETRY>
      <POLYGON>8.5 50.0, 8.6 50.1, 8.7 50.0, 8.5 50.0</POLYGON>
    </GEOMETRY>
  </ASP>
  <ASP CATEGORY="C">
    <COUNTRY>DE</COUNTRY>
    <NAME>C FRANKFURT</NAME>
    <ALTLIMIT_TOP REFERENCE="STD">
      <ALT UNIT="FL">1000</ALT>
    </ALTLIMIT_TOP>
    <ALTLIMIT_BOTTOM REFERENCE="MSL">
      <ALT UNIT="F">2500</ALT>
    </ALTLIMIT_BOTTOM>
    <GEOMETRY>
      <POLYGON>8.0 49.5,9.0 49.5,9.0 50.5</POLYGON>
    </GEOMETRY>
  </ASP>
</AIRSPACES>
</OPENAIP>
`

func TestParseAirspaces(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleXML))
	require.NoError(t, err)
	require.Len(t, result.Airspaces, 2)
	assert.Empty(t, result.Skipped)

	ctr := result.Airspaces[0]
	assert.Equal(t, "CTR FRANKFURT", ctr.Name)
	assert.Equal(t, "DE", ctr.Country)
	assert.Equal(t, 0.30, ctr.Top)
	assert.Equal(t, 0.0, ctr.Bottom)
	assert.Equal(t, []types.Point{
		{Lon: 8.5, Lat: 50.0},
		{Lon: 8.6, Lat: 50.1},
		{Lon: 8.7, Lat: 50.0},
		{Lon: 8.5, Lat: 50.0},
	}, ctr.Polygon)

	c := result.Airspaces[1]
	assert.Equal(t, 30.48, c.Top)
	assert.Equal(t, 0.76, c.Bottom)
	assert.Len(t, c.Polygon, 3)
}

func TestToKilometres(t *testing.T) {
	assert.Equal(t, 0.30, ToKilometres(1000, "F"))
	assert.Equal(t, 30.48, ToKilometres(1000, "FL"))
	assert.Equal(t, 30.48, ToKilometres(1000, ""))
	assert.Equal(t, 0.0, ToKilometres(0, "F"))
}

func TestParseSkipsMalformedRecords(t *testing.T) {
	input := `<OPENAIP><AIRSPACES>
  <ASP><NAME>NO GEOMETRY</NAME><COUNTRY>DE</COUNTRY>
    <ALTLIMIT_TOP><ALT UNIT="F">1000</ALT></ALTLIMIT_TOP>
    <ALTLIMIT_BOTTOM><ALT UNIT="F">0</ALT></ALTLIMIT_BOTTOM>
  </ASP>
  <ASP><NAME>BAD ALTITUDE</NAME><COUNTRY>DE</COUNTRY>
    <ALTLIMIT_TOP><ALT UNIT="F">high</ALT></ALTLIMIT_TOP>
    <ALTLIMIT_BOTTOM><ALT UNIT="F">0</ALT></ALTLIMIT_BOTTOM>
    <GEOMETRY><POLYGON>1 2, 3 4</POLYGON></GEOMETRY>
  </ASP>
  <ASP><NAME>GOOD</NAME><COUNTRY>DE</COUNTRY>
    <ALTLIMIT_TOP><ALT UNIT="F">3281</ALT></ALTLIMIT_TOP>
    <ALTLIMIT_BOTTOM><ALT>0</ALT></ALTLIMIT_BOTTOM>
    <GEOMETRY><POLYGON>1 2, 3 4</POLYGON></GEOMETRY>
  </ASP>
  <ASP><NAME>BROKEN POLYGON</NAME><COUNTRY>DE</COUNTRY>
    <ALTLIMIT_TOP><ALT UNIT="F">1000</ALT></ALTLIMIT_TOP>
    <ALTLIMIT_BOTTOM><ALT UNIT="F">0</ALT></ALTLIMIT_BOTTOM>
    <GEOMETRY><POLYGON>1 2, 3</POLYGON></GEOMETRY>
  </ASP>
</AIRSPACES></OPENAIP>`

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Airspaces, 1)
	assert.Equal(t, "GOOD", result.Airspaces[0].Name)
	assert.Equal(t, 1.0, result.Airspaces[0].Top)

	require.Len(t, result.Skipped, 3)
	assert.Equal(t, []int{0, 1, 3}, []int{result.Skipped[0].Index, result.Skipped[1].Index, result.Skipped[2].Index})
	for _, skip := range result.Skipped {
		assert.True(t, errors.Is(skip.Err, ErrMalformed))
	}
}

func TestParseRootAirspaces(t *testing.T) {
	input := `<AIRSPACES><ASP><NAME>X</NAME><COUNTRY>AT</COUNTRY>
<ALTLIMIT_TOP><ALT UNIT="F">0</ALT></ALTLIMIT_TOP>
<ALTLIMIT_BOTTOM><ALT UNIT="F">0</ALT></ALTLIMIT_BOTTOM>
<GEOMETRY><POLYGON>1 2</POLYGON></GEOMETRY></ASP></AIRSPACES>`

	result, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Airspaces, 1)
	assert.Equal(t, "AT", result.Airspaces[0].Country)
}

func TestParseTruncatedDocumentKeepsEarlierRecords(t *testing.T) {
	cut := strings.Index(sampleXML, `<ASP CATEGORY="C">`) + 30
	result, err := Parse(strings.NewReader(sampleXML[:cut]))
	require.Error(t, err)
	require.Len(t, result.Airspaces, 1)
	assert.Equal(t, "CTR FRANKFURT", result.Airspaces[0].Name)
}

func TestParseWithoutAirspaces(t *testing.T) {
	result, err := Parse(strings.NewReader(`<OPENAIP></OPENAIP>`))
	require.NoError(t, err)
	assert.NotNil(t, result.Airspaces)
	assert.Empty(t, result.Airspaces)
}
