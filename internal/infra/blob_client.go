package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrBlobNotConfigured = errors.New("blob store not configured")

type BlobInfo struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname"`
	ContentType string `json:"contentType"`
}

// BlobClient uploads public files to an HTTP blob store: PUT {baseURL}/{pathname}
// answered with a BlobInfo JSON body.
type BlobClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewBlobClient(baseURL, token string, timeout time.Duration) *BlobClient {
	return &BlobClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *BlobClient) Put(ctx context.Context, pathname, contentType string, body io.Reader) (*BlobInfo, error) {
	if c.baseURL == "" {
		return nil, ErrBlobNotConfigured
	}
	target := c.baseURL + "/" + escapePath(pathname)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("x-access", "public")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("blob store returned status %d", resp.StatusCode)
	}
	var info BlobInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.URL == "" {
		return nil, errors.New("blob store returned no url")
	}
	return &info, nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
