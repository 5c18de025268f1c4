// Package glb exports the mesh geometry of an FBX scene as a binary glTF
// file.
//
// Only Geometry objects are read. Each becomes a glTF mesh with positions,
// smooth vertex normals, and fan-triangulated indices. Materials, skinning,
// animation, and the transform hierarchy are not exported.
package glb

import (
	"fmt"
	"io"
	"math"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Generator is written to the asset description of an exported file.
const Generator = "fbxfile -> GLB"

// Encoder encodes the geometry of an fbxfile.Scene as binary glTF.
type Encoder struct{}

// mesh is the triangulated geometry of a single Geometry object.
type mesh struct {
	name      string
	positions [][3]float32
	normals   [][3]float32
	indices   []uint32
}

// Encode writes the geometry of scene to w. A scene without geometry produces
// a file with no meshes.
func (Encoder) Encode(w io.Writer, scene *fbxfile.Scene) error {
	if w == nil {
		return errors.New("nil writer")
	}
	if scene == nil {
		return errors.New("nil scene")
	}
	meshes, err := collectMeshes(scene)
	if err != nil {
		return errors.New("error encoding data: " + err.Error())
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator
	if len(meshes) > 0 {
		pbr := &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{0.8, 0.8, 0.8, 1}, MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
		doc.Materials = []*gltf.Material{{Name: "Default", PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}}
	}
	for i, m := range meshes {
		posAccessor := modeler.WritePosition(doc, m.positions)
		normalAccessor := modeler.WriteNormal(doc, m.normals)
		indicesAccessor := modeler.WriteIndices(doc, m.indices)
		prim := &gltf.Primitive{
			Attributes: map[string]int{
				gltf.POSITION: posAccessor,
				gltf.NORMAL:   normalAccessor,
			},
			Indices:  gltf.Index(indicesAccessor),
			Material: gltf.Index(0),
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: m.name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: m.name, Mesh: gltf.Index(i)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, i)
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return errors.New("error encoding format: " + err.Error())
	}
	return nil
}

// GeometryError indicates malformed geometry within a Geometry object.
type GeometryError struct {
	Name  string
	Cause error
}

func (err GeometryError) Error() string {
	return fmt.Sprintf("geometry %q: %s", err.Name, err.Cause)
}

func (err GeometryError) Unwrap() error {
	return err.Cause
}

func collectMeshes(scene *fbxfile.Scene) ([]mesh, error) {
	var meshes []mesh
	for _, geom := range scene.Find("Objects").FindAll("Geometry") {
		_, name := fbxfile.SplitObjectName(propString(geom.Prop(1)))
		positions := readPositions(geom.Find("Vertices").Prop(0))
		if len(positions) == 0 {
			continue
		}
		indices, err := triangulate(geom.Find("PolygonVertexIndex").Prop(0), len(positions))
		if err != nil {
			return nil, GeometryError{Name: name, Cause: err}
		}
		meshes = append(meshes, mesh{
			name:      name,
			positions: positions,
			normals:   smoothNormals(positions, indices),
			indices:   indices,
		})
	}
	return meshes, nil
}

func propString(v fbxfile.Value) string {
	s, _ := v.(fbxfile.ValueString)
	return string(s)
}

// readPositions groups a flat array of coordinates into points. Trailing
// coordinates that do not form a full point are dropped.
func readPositions(v fbxfile.Value) [][3]float32 {
	var flat []float32
	switch v := v.(type) {
	case fbxfile.ValueFloat64Array:
		flat = make([]float32, len(v))
		for i, f := range v {
			flat[i] = float32(f)
		}
	case fbxfile.ValueFloat32Array:
		flat = v
	default:
		return nil
	}
	positions := make([][3]float32, len(flat)/3)
	for i := range positions {
		copy(positions[i][:], flat[i*3:i*3+3])
	}
	return positions
}

// triangulate converts a polygon vertex index list into triangles. The last
// index of each polygon is stored as its bitwise complement. Polygons are
// split as fans around their first vertex. Polygons with fewer than three
// vertices are skipped.
func triangulate(v fbxfile.Value, count int) ([]uint32, error) {
	var pvi []int32
	switch v := v.(type) {
	case fbxfile.ValueInt32Array:
		pvi = v
	case nil:
		return nil, errors.New("missing polygon vertex index")
	default:
		return nil, fmt.Errorf("polygon vertex index has type %s", v.Type())
	}
	var indices, poly []uint32
	for i, x := range pvi {
		end := x < 0
		if end {
			x = ^x
		}
		if int(x) >= count {
			return nil, fmt.Errorf("index %d at %d out of range", x, i)
		}
		poly = append(poly, uint32(x))
		if !end {
			continue
		}
		for j := 1; j+1 < len(poly); j++ {
			indices = append(indices, poly[0], poly[j], poly[j+1])
		}
		poly = poly[:0]
	}
	if len(poly) > 0 {
		return nil, errors.New("unterminated polygon")
	}
	return indices, nil
}

// smoothNormals averages the face normals of the triangles that share each
// vertex.
func smoothNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		v0, v1, v2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[v0], positions[v1], positions[v2]
		vec1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		vec2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			vec1[1]*vec2[2] - vec1[2]*vec2[1],
			vec1[2]*vec2[0] - vec1[0]*vec2[2],
			vec1[0]*vec2[1] - vec1[1]*vec2[0],
		}
		for _, v := range [3]uint32{v0, v1, v2} {
			normals[v][0] += cross[0]
			normals[v][1] += cross[1]
			normals[v][2] += cross[2]
		}
	}
	for i, n := range normals {
		length := float32(math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])))
		if length > 0 {
			normals[i] = [3]float32{n[0] / length, n[1] / length, n[2] / length}
		} else {
			normals[i] = [3]float32{0, 0, 1}
		}
	}
	return normals
}
