// Package geocode resolves addresses and zipcodes to points.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
)

var ErrNoMatch = errors.New("geocode: no match")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.Location, error)
}

const mapquestURL = "https://www.mapquestapi.com/geocoding/v1/address"

// MapQuest talks to the MapQuest geocoding API.
type MapQuest struct {
	Key     string
	BaseURL string
	Client  *http.Client
}

func NewMapQuest(key string) *MapQuest {
	return &MapQuest{Key: key, BaseURL: mapquestURL, Client: &http.Client{Timeout: 5 * time.Second}}
}

// New returns the geocoder for provider. Only mapquest is supported.
func New(provider, key string) (Geocoder, error) {
	switch strings.ToLower(provider) {
	case "", "mapquest":
		return NewMapQuest(key), nil
	}
	return nil, fmt.Errorf("geocode: unsupported provider %q", provider)
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (m *MapQuest) Geocode(ctx context.Context, address string) (*domain.Location, error) {
	q := url.Values{}
	q.Set("key", m.Key)
	q.Set("location", address)
	q.Set("maxResults", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: status %d", resp.StatusCode)
	}

	var body mqResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocode: decode: %w", err)
	}
	if body.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocode: %s", strings.Join(body.Info.Messages, "; "))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return nil, ErrNoMatch
	}
	l := body.Results[0].Locations[0]
	return &domain.Location{
		Type:             "Point",
		Coordinates:      []float64{l.LatLng.Lng, l.LatLng.Lat},
		FormattedAddress: formatted(l.Street, l.AdminArea5, l.AdminArea3, l.PostalCode, l.AdminArea1),
		Street:           l.Street,
		City:             l.AdminArea5,
		State:            l.AdminArea3,
		Zipcode:          l.PostalCode,
		Country:          l.AdminArea1,
	}, nil
}

// formatted renders "street, city, state zip, country", skipping empty parts.
func formatted(street, city, state, zip, country string) string {
	var parts []string
	for _, p := range []string{street, city, strings.TrimSpace(state + " " + zip), country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Static returns fixed locations by address; used by tests and the seeder.
type Static map[string]domain.Location

func (s Static) Geocode(_ context.Context, address string) (*domain.Location, error) {
	l, ok := s[address]
	if !ok {
		return nil, ErrNoMatch
	}
	return &l, nil
}
