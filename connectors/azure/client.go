package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	defaultAuthority = "https://login.microsoftonline.com"
	storageScope     = "https://storage.azure.com/.default"
	storageVersion   = "2021-08-06"
)

// Credentials identify an Azure AD application allowed to read blobs.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// Authority overrides the login endpoint, mainly for tests.
	Authority string
}

// Client reads blobs from Azure Blob Storage with an OAuth2 bearer token.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client using the client-credentials flow.
func NewClient(ctx context.Context, creds Credentials) *Client {
	authority := creds.Authority
	if authority == "" {
		authority = defaultAuthority
	}
	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", strings.TrimSuffix(authority, "/"), creds.TenantID),
		Scopes:       []string{storageScope},
	}
	hc := cfg.Client(ctx)
	hc.Timeout = 30 * time.Second
	return &Client{httpClient: hc}
}

// IsBlobURL reports whether uri points at Azure Blob Storage.
func IsBlobURL(uri string) bool {
	return strings.HasPrefix(uri, "https://") && strings.Contains(uri, ".blob.core.windows.net/")
}

// ReadBlob streams the blob at blobURL. The caller closes the reader.
func (c *Client) ReadBlob(ctx context.Context, blobURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-ms-version", storageVersion)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blob: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("blob request failed: %d %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}
