package reader

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tangent-animation/embree/asset"
	"github.com/tangent-animation/embree/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from a local file or http(s) URL.
func ReadScene(filename string) (*scene.Scene, error) {
	return ReadSceneContext(context.Background(), filename)
}

// Read scene from a local file or http(s) URL. Remote scenes are fetched
// using a request bound to ctx.
func ReadSceneContext(ctx context.Context, filename string) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(path.Ext(filename)) {
	case ".zip":
		reader = newZipSceneReader()
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", path.Ext(filename))
	}

	res, err := asset.NewResourceContext(ctx, filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
