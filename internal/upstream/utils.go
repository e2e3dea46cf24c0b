package upstream

import (
	"context"
	"net/url"

	"github.com/dbtc-edu/enrollment-portal/internal/models"
)

// EnrollmentWindow fetches the public registration-window status. No token:
// the registration screen shows this before any session exists.
func (c *Client) EnrollmentWindow(ctx context.Context) (*models.EnrollmentWindow, error) {
	var out models.EnrollmentWindow
	if err := c.getJSON(ctx, "", "utils", "/utils/enrollment-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Strands lists the Senior High School strand options.
func (c *Client) Strands(ctx context.Context, token string) ([]models.Strand, error) {
	var out struct {
		Strands []models.Strand `json:"strands"`
	}
	if err := c.getJSON(ctx, token, "utils", "/utils/strands", nil, &out); err != nil {
		return nil, err
	}
	return out.Strands, nil
}

// Provinces lists provinces for the cascading address selects.
func (c *Client) Provinces(ctx context.Context, token string) ([]string, error) {
	var out struct {
		Provinces []string `json:"provinces"`
	}
	if err := c.getJSON(ctx, token, "utils", "/utils/provinces", nil, &out); err != nil {
		return nil, err
	}
	return out.Provinces, nil
}

// Cities lists the cities of a province.
func (c *Client) Cities(ctx context.Context, token, province string) ([]string, error) {
	var out struct {
		Cities []string `json:"cities"`
	}
	if err := c.getJSON(ctx, token, "utils", "/utils/cities/"+url.PathEscape(province), nil, &out); err != nil {
		return nil, err
	}
	return out.Cities, nil
}

// Barangays lists the barangays of a city.
func (c *Client) Barangays(ctx context.Context, token, city string) ([]string, error) {
	var out struct {
		Barangays []string `json:"barangays"`
	}
	if err := c.getJSON(ctx, token, "utils", "/utils/barangays/"+url.PathEscape(city), nil, &out); err != nil {
		return nil, err
	}
	return out.Barangays, nil
}
