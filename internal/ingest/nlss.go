package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// NLSSClient reads the national library statistics feed. The API is
// unauthenticated and returns geoX/geoY as JSON numbers (longitude
// first, then latitude).
type NLSSClient struct {
	BaseURL string
	Client  *http.Client
}

func NewNLSSClient(baseURL string) *NLSSClient {
	return &NLSSClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *NLSSClient) Name() string { return "nlss" }

type nlssResponse struct {
	Result struct {
		List []struct {
			LibCode json.Number `json:"libCode"`
			LibName string      `json:"libName"`
			Addr    string      `json:"addr"`
			LibURL  string      `json:"libUrl"`
			Phone   string      `json:"phone"`
			GeoX    json.Number `json:"geoX"` // longitude
			GeoY    json.Number `json:"geoY"` // latitude
		} `json:"list"`
	} `json:"result"`
}

func (c *NLSSClient) FetchPage(ctx context.Context, page, size int) ([]RawLibrary, error) {
	u, err := url.Parse(c.BaseURL + "/libinfo")
	if err != nil {
		return nil, fmt.Errorf("nlss: parse base url: %w", err)
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("size", fmt.Sprintf("%d", size))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("nlss: build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nlss: request page %d: %w", page, err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nlss: status %d: %s", resp.StatusCode, string(body))
	}

	var nr nlssResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, fmt.Errorf("nlss: decode page %d: %w", page, err)
	}

	out := make([]RawLibrary, 0, len(nr.Result.List))
	for _, item := range nr.Result.List {
		out = append(out, RawLibrary{
			Code:      item.LibCode.String(),
			Name:      item.LibName,
			Address:   item.Addr,
			Tel:       item.Phone,
			Homepage:  item.LibURL,
			Latitude:  item.GeoY.String(),
			Longitude: item.GeoX.String(),
		})
	}
	return out, nil
}
