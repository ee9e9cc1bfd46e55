package reader

import (
	"archive/zip"
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/tangent-animation/embree/asset"
	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/asset/scene/writer"
	"github.com/tangent-animation/embree/log"
)

type zipSceneReader struct {
	logger log.Logger
}

// Create a new zip scene reader
func newZipSceneReader() *zipSceneReader {
	return &zipSceneReader{
		logger: log.New("zip reader"),
	}
}

// Read scene definition from zip file. The loaded hierarchy is validated
// before the scene is returned.
func (p *zipSceneReader) Read(sceneRes *asset.Resource) (*scene.Scene, error) {
	p.logger.Noticef(`parsing compiled scene from "%s"`, sceneRes.Path())
	start := time.Now()

	// zip package requires a reader implementing ReaderAt. To work around
	// this requirement we read the entire zip file into memory and create
	// a reader from the bytes package that implements ReaderAt
	data, err := sceneRes.Bytes()
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	sc := &scene.Scene{}
	for _, f := range zr.File {
		var target interface{}
		switch f.Name {
		case writer.HierarchyFile:
			target = &sc.Hierarchy
		case writer.CameraFile:
			target = &sc.Camera
		default:
			p.logger.Warningf("unknown file %s in scene zip file; skipping", f.Name)
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		err = gob.NewDecoder(rc).Decode(target)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("zipSceneReader: failed to load %s: %w", f.Name, err)
		}
	}

	if err = sc.Validate(); err != nil {
		return nil, fmt.Errorf("zipSceneReader: %s: %w", sceneRes.Path(), err)
	}

	p.logger.Noticef("loaded scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, nil
}
