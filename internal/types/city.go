package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CityID is the identifier the remote store assigns to a city.
// The zero value means "no id yet".
type CityID int64

// ParseCityID parses a numeric identifier as it appears in URL paths.
func ParseCityID(s string) (CityID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCityID, s)
	}
	return CityID(n), nil
}

func (id CityID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts both 7 and "7"; json-server style stores emit either.
func (id *CityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseCityID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCityID, data)
	}
	*id = CityID(n)
	return nil
}

// Position is a lat/lng pair as the map view consumes it.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// dateLayouts are the ISO-8601 forms accepted for a city's visit date.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// ParseDate parses an ISO-8601 date or timestamp as stored in City.Date.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q is not ISO-8601", ErrBadRequest, s)
}

// City matches the records held by the remote city store. Date is kept as the
// store's raw ISO string so records are never rejected over its precision.
type City struct {
	ID       CityID   `json:"id"`
	CityName string   `json:"cityName"`
	Country  string   `json:"country"`
	Emoji    string   `json:"emoji"`
	Date     string   `json:"date"`
	Notes    string   `json:"notes"`
	Position Position `json:"position"`
}

// CreateCityParams is the body sent to the store when creating a city.
// The store assigns the id.
type CreateCityParams struct {
	CityName string   `json:"cityName"`
	Country  string   `json:"country"`
	Emoji    string   `json:"emoji"`
	Date     string   `json:"date,omitempty"`
	Notes    string   `json:"notes"`
	Position Position `json:"position"`
}

// Validate reports whether the draft can be sent to the store.
func (p CreateCityParams) Validate() error {
	if strings.TrimSpace(p.CityName) == "" {
		return fmt.Errorf("%w: cityName is required", ErrBadRequest)
	}
	if p.Position.Lat < -90 || p.Position.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range", ErrBadRequest, p.Position.Lat)
	}
	if p.Position.Lng < -180 || p.Position.Lng > 180 {
		return fmt.Errorf("%w: longitude %f out of range", ErrBadRequest, p.Position.Lng)
	}
	if p.Date != "" {
		if _, err := ParseDate(p.Date); err != nil {
			return err
		}
	}
	return nil
}
