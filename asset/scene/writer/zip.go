package writer

import (
	"archive/zip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tangent-animation/embree/asset/scene"
	"github.com/tangent-animation/embree/log"
)

const (
	HierarchyFile = "hierarchy.bin"
	CameraFile    = "camera.bin"
)

type zipSceneWriter struct {
	logger    log.Logger
	sceneFile string
}

// Create a new zip scene writer
func newZipSceneWriter(sceneFile string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:    log.New("zip writer"),
		sceneFile: sceneFile,
	}
}

// Write scene definition to zip file.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	w.logger.Noticef(`writing compressed scene to "%s"`, w.sceneFile)
	start := time.Now()

	zipFile, err := os.Create(w.sceneFile)
	if err != nil {
		return err
	}

	err = WriteZip(zipFile, sc)
	if closeErr := zipFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	w.logger.Noticef("compressed scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return nil
}

// Encode the scene as a zip archive containing one gob stream per scene
// element.
func WriteZip(out io.Writer, sc *scene.Scene) error {
	zw := zip.NewWriter(out)

	entries := []struct {
		name string
		data interface{}
	}{
		{HierarchyFile, sc.Hierarchy},
		{CameraFile, sc.Camera},
	}
	for _, entry := range entries {
		cw, err := zw.Create(entry.name)
		if err != nil {
			return err
		}
		if err = gob.NewEncoder(cw).Encode(entry.data); err != nil {
			return fmt.Errorf("zipSceneWriter: failed to encode %s: %w", entry.name, err)
		}
	}

	return zw.Close()
}
