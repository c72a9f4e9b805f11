package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/newtab/internal/logger"
)

// DefaultURL is the Open-Meteo forecast endpoint.
const DefaultURL = "https://api.open-meteo.com/v1/forecast"

var (
	// ErrUnavailable covers transport failures, non-2xx answers and bodies
	// that are not JSON.
	ErrUnavailable = errors.New("weather service unavailable")

	// ErrNoTemperature means the answer parsed but carried no numeric
	// current temperature.
	ErrNoTemperature = errors.New("weather response has no temperature")
)

// Coord is a latitude/longitude pair in degrees.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseCoord parses query-string coordinates. ok is false when either
// value is missing, not a number or out of range.
func ParseCoord(lat, lon string) (Coord, bool) {
	if lat == "" || lon == "" {
		return Coord{}, false
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return Coord{}, false
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil || lo < -180 || lo > 180 {
		return Coord{}, false
	}
	return Coord{Lat: la, Lon: lo}, true
}

// Client queries the current temperature.
type Client struct {
	http    *http.Client
	baseURL string
	log     logger.Logger
}

// NewClient creates a client. An empty baseURL selects Open-Meteo.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		log:     log,
	}
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature json.RawMessage `json:"temperature"`
	} `json:"current_weather"`
}

// Celsius returns the current temperature at c.
func (cl *Client) Celsius(ctx context.Context, c Coord) (float64, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	q.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cl.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cl.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	raw := body.CurrentWeather
	if raw == nil || len(raw.Temperature) == 0 || string(raw.Temperature) == "null" {
		return 0, ErrNoTemperature
	}

	// Strings and booleans do not count as a temperature
	var celsius float64
	if err := json.Unmarshal(raw.Temperature, &celsius); err != nil {
		return 0, ErrNoTemperature
	}
	return celsius, nil
}
