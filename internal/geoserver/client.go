// Package geoserver is the provisioning client for the map server's REST
// administration API. Resources are exchanged as XML documents over HTTP
// with basic authentication.
//
// Every provisioning operation is check-then-create: a successful lookup by
// name means "already provisioned" and is a no-op, a not-found response
// triggers a creation call with a fixed descriptor, and any other outcome is
// an error. The sequence is not atomic against concurrent callers racing on
// the identical name; names here derive from upload identities, which makes
// such races practically impossible across distinct uploads.
package geoserver

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Store kinds a recursive delete can target. The value doubles as the REST
// path noun for the resource (pluralized with a trailing "s").
const (
	StoreKindVector = "datastore"
	StoreKindRaster = "coveragestore"
)

// requestTimeout bounds every map-server REST call.
const requestTimeout = 30 * time.Second

// Config holds the stateless client configuration: endpoint, credentials,
// and the fixed datastore connection tuning.
type Config struct {
	BaseURL  string // e.g. "http://geoserver:8080/geoserver"
	User     string
	Password string

	// Connection parameters the vector datastore descriptor points at.
	// These describe the spatial store from the map server's side.
	PGHost     string
	PGPort     int
	PGDatabase string
	PGUser     string
	PGPassword string
	PGSchema   string
}

// Client provisions the map server's resource hierarchy.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a Client with the fixed request timeout applied.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: requestTimeout},
	}
}

// do issues one REST call and returns the status code. Transport failures
// are returned as-is; callers decide what a given status means.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) (int, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// ensure implements the check-then-create sequence for one resource.
func (c *Client) ensure(ctx context.Context, kind, checkPath, createPath string, descriptor interface{}) error {
	status, err := c.do(ctx, http.MethodGet, checkPath, "", nil)
	if err != nil {
		return err
	}

	switch {
	case status >= 200 && status < 300:
		// Already provisioned.
		return nil
	case status == http.StatusNotFound:
		// Fall through to creation.
	default:
		return fmt.Errorf("check %s %s: unexpected status %d", kind, checkPath, status)
	}

	body, err := xml.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("encode %s descriptor: %w", kind, err)
	}

	status, err = c.do(ctx, http.MethodPost, createPath, "text/xml", body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("create %s %s: unexpected status %d", kind, createPath, status)
	}
	return nil
}

// EnsureWorkspace provisions the named workspace.
func (c *Client) EnsureWorkspace(ctx context.Context, name string) error {
	return c.ensure(ctx, "workspace",
		"/rest/workspaces/"+name,
		"/rest/workspaces",
		workspaceDoc{Name: name},
	)
}

// EnsureDataStore provisions a PostGIS vector datastore in the workspace.
// Connection parameters are fixed tuning defaults, not caller-configurable.
func (c *Client) EnsureDataStore(ctx context.Context, workspace, name string) error {
	return c.ensure(ctx, "datastore",
		fmt.Sprintf("/rest/workspaces/%s/datastores/%s", workspace, name),
		fmt.Sprintf("/rest/workspaces/%s/datastores", workspace),
		c.dataStoreDoc(name),
	)
}

// EnsureFeatureType publishes the vector layer backed by nativeName (the
// spatial-store table) from the given datastore.
func (c *Client) EnsureFeatureType(ctx context.Context, workspace, store, name, nativeName string) error {
	return c.ensure(ctx, "feature type",
		fmt.Sprintf("/rest/workspaces/%s/datastores/%s/featuretypes/%s", workspace, store, name),
		fmt.Sprintf("/rest/workspaces/%s/datastores/%s/featuretypes", workspace, store),
		featureTypeDoc{Name: name, NativeName: nativeName, Enabled: true},
	)
}

// EnsureCoverageStore provisions a raster coverage store pointing at the
// permanent file location.
func (c *Client) EnsureCoverageStore(ctx context.Context, workspace, name, fileURL string) error {
	return c.ensure(ctx, "coverage store",
		fmt.Sprintf("/rest/workspaces/%s/coveragestores/%s", workspace, name),
		fmt.Sprintf("/rest/workspaces/%s/coveragestores", workspace),
		coverageStoreDoc{
			Name:      name,
			Type:      "GeoTIFF",
			Enabled:   true,
			Workspace: workspace,
			URL:       fileURL,
		},
	)
}

// EnsureCoverage publishes the raster layer from the given coverage store.
func (c *Client) EnsureCoverage(ctx context.Context, workspace, store, name, nativeName string) error {
	return c.ensure(ctx, "coverage",
		fmt.Sprintf("/rest/workspaces/%s/coveragestores/%s/coverages/%s", workspace, store, name),
		fmt.Sprintf("/rest/workspaces/%s/coveragestores/%s/coverages", workspace, store),
		coverageDoc{Name: name, NativeName: nativeName, Enabled: true},
	)
}

// DeleteStore recursively deletes the named store and everything published
// from it. Intended for best-effort cleanup: callers log failures and move
// on with their own catalog bookkeeping.
func (c *Client) DeleteStore(ctx context.Context, workspace, name, kind string) error {
	path := fmt.Sprintf("/rest/workspaces/%s/%ss/%s?recurse=true", workspace, kind, name)

	status, err := c.do(ctx, http.MethodDelete, path, "", nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		// Nothing to clean up.
		return nil
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("delete %s %s: unexpected status %d", kind, name, status)
	}
	return nil
}
