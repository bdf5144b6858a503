package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// ErrMoonAgeNotFound is returned when the tide API has no entry for the requested day.
var ErrMoonAgeNotFound = errors.New("moon age not found")

type (
	// A Tide fetches the moon age from the tide736.net API.
	Tide struct {
		client         *client
		URL            string
		PrefectureCode int
		HarborCode     int
	}

	tideResponse struct {
		Tide struct {
			Chart map[string]struct {
				Moon struct {
					Age number `json:"age"`
				} `json:"moon"`
			} `json:"chart"`
		} `json:"tide"`
	}

	// number decodes both JSON numbers and numeric strings.
	number float64
)

// NewTide returns a new Tide fetcher.
func NewTide(endpoint string, prefecture, harbor int, opts Options) *Tide {
	return &Tide{
		client:         newClient("tide736", opts),
		URL:            endpoint,
		PrefectureCode: prefecture,
		HarborCode:     harbor,
	}
}

// MoonAge returns the moon age of the given day.
func (t *Tide) MoonAge(ctx context.Context, day time.Time) (float64, error) {
	params := url.Values{
		"pc": {strconv.Itoa(t.PrefectureCode)},
		"hc": {strconv.Itoa(t.HarborCode)},
		"yr": {strconv.Itoa(day.Year())},
		"mn": {strconv.Itoa(int(day.Month()))},
		"dy": {strconv.Itoa(day.Day())},
		"rg": {"day"},
	}

	var response tideResponse
	if err := t.client.get(ctx, t.URL, params, &response); err != nil {
		return 0, errors.Wrap(err, "could not fetch moon age")
	}

	date := day.Format("2006-01-02")
	chart, ok := response.Tide.Chart[date]
	if !ok {
		return 0, errors.Wrap(ErrMoonAgeNotFound, date)
	}
	return float64(chart.Moon.Age), nil
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return errors.New("empty number")
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.Wrapf(err, "invalid number %s", data)
	}
	*n = number(f)
	return nil
}
