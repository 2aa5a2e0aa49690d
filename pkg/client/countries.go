package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"countries/pkg/model"
)

// ErrNoContent is returned when the service answers 204 for a lookup.
var ErrNoContent = errors.New("no country matched the lookup")

type CountryClient struct {
	httpClient *HttpClient
}

func NewCountryClient(baseURL string) *CountryClient {
	return &CountryClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *CountryClient) All(ctx context.Context, opts model.ExcludeOptions) ([]model.Country, error) {
	var out []model.Country
	err := c.get(ctx, "/v1/all", opts, &out)
	return out, err
}

func (c *CountryClient) ByName(ctx context.Context, name string, opts model.ExcludeOptions) (*model.Country, error) {
	var out model.Country
	if err := c.get(ctx, "/v1/name/"+url.PathEscape(name), opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CountryClient) ByCapital(ctx context.Context, capital string, opts model.ExcludeOptions) (*model.Country, error) {
	var out model.Country
	if err := c.get(ctx, "/v1/capital/"+url.PathEscape(capital), opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CountryClient) ByRegion(ctx context.Context, region string, opts model.ExcludeOptions) ([]model.Country, error) {
	var out []model.Country
	err := c.get(ctx, "/v1/region/"+url.PathEscape(region), opts, &out)
	return out, err
}

func (c *CountryClient) BySubregion(ctx context.Context, subregion string, opts model.ExcludeOptions) ([]model.Country, error) {
	var out []model.Country
	err := c.get(ctx, "/v1/subregion/"+url.PathEscape(subregion), opts, &out)
	return out, err
}

func (c *CountryClient) get(ctx context.Context, path string, opts model.ExcludeOptions, target any) error {
	q := url.Values{}
	q.Set("excludeStates", strconv.FormatBool(opts.ExcludeStates))
	q.Set("excludeCities", strconv.FormatBool(opts.ExcludeCities))

	resp, err := c.httpClient.GET(ctx, path+"?"+q.Encode())
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return ErrNoContent
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
