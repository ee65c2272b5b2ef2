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

// Data4LibClient reads the data4library open API. Every call carries
// the issued auth key; coordinates come back as strings, library codes
// as numbers.
type Data4LibClient struct {
	BaseURL string
	AuthKey string
	Client  *http.Client
}

func NewData4LibClient(baseURL, authKey string) *Data4LibClient {
	return &Data4LibClient{
		BaseURL: baseURL,
		AuthKey: authKey,
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Data4LibClient) Name() string { return "data4library" }

type d4lSearchResponse struct {
	Response struct {
		Libs []struct {
			Lib struct {
				LibCode   json.Number `json:"libCode"`
				LibName   string      `json:"libName"`
				Address   string      `json:"address"`
				Tel       string      `json:"tel"`
				Homepage  string      `json:"homepage"`
				Latitude  string      `json:"latitude"`
				Longitude string      `json:"longitude"`
			} `json:"lib"`
		} `json:"libs"`
	} `json:"response"`
}

func (c *Data4LibClient) FetchPage(ctx context.Context, page, size int) ([]RawLibrary, error) {
	q := url.Values{}
	q.Set("authKey", c.AuthKey)
	q.Set("pageNo", fmt.Sprintf("%d", page))
	q.Set("pageSize", fmt.Sprintf("%d", size))
	q.Set("format", "json")

	body, err := c.get(ctx, "/libSrch", q)
	if err != nil {
		return nil, fmt.Errorf("data4library: page %d: %w", page, err)
	}

	var dr d4lSearchResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, fmt.Errorf("data4library: decode page %d: %w", page, err)
	}

	out := make([]RawLibrary, 0, len(dr.Response.Libs))
	for _, item := range dr.Response.Libs {
		lib := item.Lib
		out = append(out, RawLibrary{
			Code:      lib.LibCode.String(),
			Name:      lib.LibName,
			Address:   lib.Address,
			Tel:       lib.Tel,
			Homepage:  lib.Homepage,
			Latitude:  lib.Latitude,
			Longitude: lib.Longitude,
		})
	}
	return out, nil
}

// Availability reports whether a given library holds a book and whether
// it is currently loanable.
type Availability struct {
	HasBook       bool `json:"has_book"`
	LoanAvailable bool `json:"loan_available"`
}

type d4lBookExistResponse struct {
	Response struct {
		Result struct {
			HasBook       string `json:"hasBook"`
			LoanAvailable string `json:"loanAvailable"`
		} `json:"result"`
	} `json:"response"`
}

// BookExists asks data4library whether the library identified by its
// secondary code holds the given ISBN-13.
func (c *Data4LibClient) BookExists(ctx context.Context, libCode int64, isbn13 string) (Availability, error) {
	q := url.Values{}
	q.Set("authKey", c.AuthKey)
	q.Set("libCode", fmt.Sprintf("%d", libCode))
	q.Set("isbn13", isbn13)
	q.Set("format", "json")

	body, err := c.get(ctx, "/bookExist", q)
	if err != nil {
		return Availability{}, fmt.Errorf("data4library: book exist: %w", err)
	}

	var br d4lBookExistResponse
	if err := json.Unmarshal(body, &br); err != nil {
		return Availability{}, fmt.Errorf("data4library: decode book exist: %w", err)
	}

	return Availability{
		HasBook:       br.Response.Result.HasBook == "Y",
		LoanAvailable: br.Response.Result.LoanAvailable == "Y",
	}, nil
}

func (c *Data4LibClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
