package fbxio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fbxtools/fbxfile"
)

// Exporter writes a scene to a file through a writer plugin.
type Exporter struct {
	name      string
	manager   *Manager
	status    Status
	path      string
	writer    WriterPlugin
	settings  IOSettings
	ready     bool
	destroyed bool
}

// Name returns the name given to the exporter when it was created.
func (exp *Exporter) Name() string {
	return exp.name
}

// Status returns the result of the last operation.
func (exp *Exporter) Status() Status {
	return exp.status
}

// Initialize prepares the exporter to write to the file at path with the
// given writer. The current settings of the manager are captured. The file
// is not created until Export is called.
func (exp *Exporter) Initialize(path string, writerID int) error {
	exp.ready = false
	if exp.destroyed {
		return exp.status.set(Failure, ErrDestroyed)
	}
	if path == "" {
		return exp.status.set(InvalidParameter, ErrEmptyFileName)
	}
	writer, ok := exp.manager.Registry().writer(writerID)
	if !ok {
		return exp.status.set(IndexOutOfRange, PluginIDError{Kind: "writer", ID: writerID})
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return exp.status.set(InvalidParameter, fmt.Errorf("%s is a directory", path))
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return exp.status.set(InvalidParameter, fmt.Errorf("cannot create file: %w", err))
	}
	exp.path = path
	exp.writer = writer
	exp.settings = *exp.manager.Settings()
	exp.ready = true
	exp.status.clear()
	return nil
}

// Export writes scene to the initialized file. The scene is encoded to a
// temporary file in the same directory, which replaces the output file only
// when encoding succeeds.
func (exp *Exporter) Export(scene *fbxfile.Scene) error {
	switch {
	case exp.destroyed:
		return exp.status.set(Failure, ErrDestroyed)
	case !exp.ready:
		return exp.status.set(Failure, ErrNotInitialized)
	case scene == nil:
		return exp.status.set(InvalidParameter, ErrNilScene)
	}

	if err := exp.write(scene); err != nil {
		return exp.status.set(Failure, fmt.Errorf("%s: %w", exp.writer.Description, err))
	}
	exp.status.clear()
	return nil
}

func (exp *Exporter) write(scene *fbxfile.Scene) (err error) {
	f, err := os.CreateTemp(filepath.Dir(exp.path), "."+filepath.Base(exp.path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = f.Chmod(0644); err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err = exp.writer.Encoder(exp.settings).Encode(w, scene); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), exp.path)
}

// Destroy releases the exporter. Destroy may be called more than once.
func (exp *Exporter) Destroy() {
	exp.destroyed = true
	exp.ready = false
	exp.writer = WriterPlugin{}
}
