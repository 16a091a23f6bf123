package geonames

import (
	"encoding/json"
	"strconv"
)

// Coordinate accepts both the string and numeric encodings GeoNames uses
// for lat and lng.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Coordinate(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*c = Coordinate(n)
	return nil
}

// Place is a geocoded search hit.
type Place struct {
	Name string
	Lat  float64
	Lng  float64
}

type place struct {
	Name string      `json:"name"`
	Lat  *Coordinate `json:"lat"`
	Lng  *Coordinate `json:"lng"`
}

type searchResponse struct {
	Geonames []place `json:"geonames"`
}

type timezoneResponse struct {
	TimezoneID string `json:"timezoneId"`
}
