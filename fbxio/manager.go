// Package fbxio provides a runtime for importing and exporting FBX scenes
// through registered file format plugins.
//
// A Manager owns every scene, importer, and exporter created through it.
// Destroying the manager releases all of them. The manager is not safe for
// concurrent use.
//
//     m := fbxio.NewManager()
//     defer m.Destroy()
//     imp := m.NewImporter("importer")
//     if err := imp.Initialize("in.fbx", -1); err != nil {
//         ...
//     }
package fbxio

import (
	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/ascii"
	"github.com/fbxtools/fbxfile/bin"
	"github.com/fbxtools/fbxfile/glb"
	"github.com/fbxtools/fbxfile/json"
)

// Descriptions of the built-in plugins.
const (
	FBXBinaryDescription = "FBX binary (*.fbx)"
	FBXASCIIDescription  = "FBX ascii (*.fbx)"
	GLBDescription       = "glTF binary (*.glb)"
	JSONDescription      = "FBX node tree (*.json)"
)

// IOSettings configures how scenes are exported.
type IOSettings struct {
	// Version is the FBX version to export. If zero, the version of the
	// exported scene is kept.
	Version uint32

	// Compress enables compression of array properties in binary files.
	Compress bool

	// CompressThreshold is the encoded size in bytes at or above which an
	// array is compressed.
	CompressThreshold int
}

// DefaultIOSettings returns the settings used by a new manager.
func DefaultIOSettings() IOSettings {
	return IOSettings{
		Compress:          true,
		CompressThreshold: bin.DefaultCompressThreshold,
	}
}

// RegisterBuiltin registers the built-in reader and writer plugins to r.
// Readers are registered for the binary and ASCII variants of FBX. Writers
// are registered for both FBX variants, for binary glTF, and for a JSON dump
// of the node tree.
func RegisterBuiltin(r *Registry) {
	r.RegisterReader(ReaderPlugin{
		Description: FBXBinaryDescription,
		FBX:         true,
		Detect:      bin.Detect,
		Decoder:     bin.Decoder{},
	})
	r.RegisterReader(ReaderPlugin{
		Description: FBXASCIIDescription,
		FBX:         true,
		Detect:      ascii.Detect,
		Decoder:     ascii.Decoder{},
	})

	r.RegisterWriter(WriterPlugin{
		Description: FBXBinaryDescription,
		FBX:         true,
		Encoder: func(s IOSettings) Encoder {
			return bin.Encoder{
				Version:           s.Version,
				Uncompressed:      !s.Compress,
				CompressThreshold: s.CompressThreshold,
			}
		},
	})
	r.RegisterWriter(WriterPlugin{
		Description: FBXASCIIDescription,
		FBX:         true,
		Encoder: func(s IOSettings) Encoder {
			return ascii.Encoder{Version: s.Version}
		},
	})
	r.RegisterWriter(WriterPlugin{
		Description: GLBDescription,
		Encoder: func(IOSettings) Encoder {
			return glb.Encoder{}
		},
	})
	r.RegisterWriter(WriterPlugin{
		Description: JSONDescription,
		Encoder: func(IOSettings) Encoder {
			return json.Encoder{Indent: "\t"}
		},
	})
}

// destroyer is implemented by objects owned by a manager.
type destroyer interface {
	Destroy()
}

// Manager is the runtime handle that owns scenes, importers, and exporters.
type Manager struct {
	registry  *Registry
	settings  *IOSettings
	objects   []destroyer
	scenes    []*fbxfile.Scene
	destroyed bool
}

// NewManager returns a manager with the built-in plugins registered and
// default settings.
func NewManager() *Manager {
	reg := NewRegistry()
	RegisterBuiltin(reg)
	return NewManagerWithRegistry(reg)
}

// NewManagerWithRegistry returns a manager that uses the given registry.
func NewManagerWithRegistry(reg *Registry) *Manager {
	settings := DefaultIOSettings()
	return &Manager{registry: reg, settings: &settings}
}

// Registry returns the plugin registry of the manager.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Settings returns the settings of the manager. Changes to the settings
// apply to exporters initialized afterwards.
func (m *Manager) Settings() *IOSettings {
	return m.settings
}

// Destroyed returns whether Destroy has been called.
func (m *Manager) Destroyed() bool {
	return m.destroyed
}

// NewScene returns an empty scene owned by the manager. Returns nil if the
// manager has been destroyed.
func (m *Manager) NewScene(name string) *fbxfile.Scene {
	if m.destroyed {
		return nil
	}
	scene := &fbxfile.Scene{Name: name}
	m.scenes = append(m.scenes, scene)
	return scene
}

// NewImporter returns an importer owned by the manager.
func (m *Manager) NewImporter(name string) *Importer {
	imp := &Importer{name: name, manager: m, destroyed: m.destroyed}
	if !m.destroyed {
		m.objects = append(m.objects, imp)
	}
	return imp
}

// NewExporter returns an exporter owned by the manager.
func (m *Manager) NewExporter(name string) *Exporter {
	exp := &Exporter{name: name, manager: m, destroyed: m.destroyed}
	if !m.destroyed {
		m.objects = append(m.objects, exp)
	}
	return exp
}

// Destroy releases every object created through the manager. Scenes are
// emptied, and importers and exporters become unusable. Destroy may be called
// more than once.
func (m *Manager) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	for _, obj := range m.objects {
		obj.Destroy()
	}
	for _, scene := range m.scenes {
		scene.Nodes = nil
	}
	m.objects = nil
	m.scenes = nil
}
