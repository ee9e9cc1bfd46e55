package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedScheme = errors.New("resource: unsupported scheme")
)

// The Resource type wraps a streamable local file or remote (http/https)
// resource.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Return the remote path to this resource. If this is a remote resource then
// this method returns the base path (without leading /) of the remote URL.
// Otherwise, this method returns the same value as Path().
func (r *Resource) RemotePath() string {
	if r.IsRemote() {
		return filepath.Base(r.url.Path)
	}
	return r.Path()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Read the remaining resource contents into memory. Formats that need random
// access (like zip archives) use this to obtain an io.ReaderAt.
func (r *Resource) Bytes() ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("resource: could not read '%s': %w", r.Path(), err)
	}
	return data, nil
}

// Create a new Resource data stream. See NewResourceContext.
func NewResource(pathToResource string, relTo *Resource) (*Resource, error) {
	return NewResourceContext(context.Background(), pathToResource, relTo)
}

// Create a new Resource data stream. If relTo is specified and pathToResource
// does not define a scheme, then the path to the new Resource will be generated
// by concatenating the base path of relTo and pathToResource.
//
// Remote http/https resources are fetched using a request bound to ctx. The
// caller must close the returned Resource.
func NewResourceContext(ctx context.Context, pathToResource string, relTo *Resource) (*Resource, error) {
	// Replace backslashes with forward slashes and try parsing as a URL
	resURL, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, err
	}

	// If this is a relative url, clone parent url and adjust its path
	if resURL.Scheme == "" && relTo != nil {
		path := resURL.Path
		resURL, _ = url.Parse(relTo.url.String())
		prefix := resURL.Path
		if resURL.Scheme == "" {
			prefix, err = filepath.Abs(relTo.url.String())
			if err != nil {
				return nil, fmt.Errorf("resource: could not detect abs path for %s: %w", relTo.url.String(), err)
			}
		}
		resURL.Path = filepath.Dir(prefix) + "/" + path
	}

	var reader io.ReadCloser
	switch resURL.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(resURL.Path))
		if err != nil {
			return nil, err
		}
	case "http", "https":
		reader, err = fetch(ctx, resURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w '%s'", ErrUnsupportedScheme, resURL.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        resURL,
	}, nil
}

func fetch(ctx context.Context, resURL *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resURL.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resource: could not fetch '%s': %w", resURL.String(), err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("resource: could not fetch '%s': status %d", resURL.String(), resp.StatusCode)
	}
	return resp.Body, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	resURL, _ := url.Parse(name)
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        resURL,
	}
}
