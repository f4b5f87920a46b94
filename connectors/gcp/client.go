package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	storageBase  = "https://storage.googleapis.com"
	storageScope = "https://www.googleapis.com/auth/devstorage.read_only"
)

// Client reads objects from Google Cloud Storage over the JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient authenticates with the service account JSON key when given, and
// with application default credentials otherwise.
func NewClient(ctx context.Context, serviceAccountJSON []byte) (*Client, error) {
	var hc *http.Client
	if len(serviceAccountJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, serviceAccountJSON, storageScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
		}
		hc = oauth2.NewClient(ctx, creds.TokenSource)
	} else {
		var err error
		hc, err = google.DefaultClient(ctx, storageScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find default credentials: %w", err)
		}
	}
	hc.Timeout = 30 * time.Second
	return &Client{httpClient: hc, baseURL: storageBase}, nil
}

// NewClientWithHTTP uses an already authenticated client against baseURL.
func NewClientWithHTTP(hc *http.Client, baseURL string) *Client {
	return &Client{httpClient: hc, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// ParseURI splits gs://bucket/path/to/object.
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs uri needs bucket and object: %q", uri)
	}
	return bucket, object, nil
}

// ReadObject streams the object's content. The caller closes the reader.
func (c *Client) ReadObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", c.baseURL, url.PathEscape(bucket), url.PathEscape(object))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gs://%s/%s: %w", bucket, object, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gs://%s/%s: %d %s", bucket, object, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
