package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/ascii"
	"github.com/fbxtools/fbxfile/bin"
	. "github.com/fbxtools/fbxfile/declare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *fbxfile.Scene {
	return Scene{
		Version(7400),
		Node("Objects",
			Node("Geometry", Property(Int64, 1), Property(String, "Geometry::A"), Property(String, "Mesh"),
				Node("Vertices", Property(Float64Array, make([]float64, 9))),
				Node("PolygonVertexIndex", Property(Int32Array, 0, 1, -3)),
			),
			Node("Model", Property(Int64, 2), Property(String, "Model::A"), Property(String, "Mesh")),
		),
	}.Declare()
}

func TestStats_Fill(t *testing.T) {
	scene := testScene()
	var stats Stats
	stats.Fill(scene)

	digest := scene.Digest()
	assert.Equal(t, hex.EncodeToString(digest[:]), stats.Digest)
	assert.Equal(t, uint32(7400), stats.Version)
	assert.Equal(t, 5, stats.NodeCount)
	assert.Equal(t, 8, stats.PropertyCount)
	assert.Equal(t, 1, stats.NameCount["Geometry"])
	assert.Equal(t, 4, stats.TypeCount["string"])
	assert.Equal(t, map[string]int{"Geometry": 1, "Model": 1}, stats.ObjectCount)

	b, err := json.Marshal(stats.LargestArrays)
	require.NoError(t, err)
	var arrays []ArrayLen
	require.NoError(t, json.Unmarshal(b, &arrays))
	require.Len(t, arrays, 2)
	assert.Equal(t, ArrayLen{Node: "Vertices", Type: "float64[]", Length: 9}, arrays[0])
	assert.Equal(t, ArrayLen{Node: "PolygonVertexIndex", Type: "int32[]", Length: 3}, arrays[1])
}

func TestStats_FillEmpty(t *testing.T) {
	var stats Stats
	stats.Fill(&fbxfile.Scene{Nodes: []*fbxfile.Node{{Name: "Takes"}}})
	assert.Equal(t, 1, stats.NodeCount)
	assert.Empty(t, stats.ObjectCount)
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bin.Encoder{}.Encode(&buf, testScene()))
	format, scene, _, err := decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "binary", format)
	assert.Equal(t, testScene().Digest(), scene.Digest())

	buf.Reset()
	require.NoError(t, ascii.Encoder{}.Encode(&buf, testScene()))
	format, _, _, err = decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "ascii", format)

	_, _, _, err = decode(strings.NewReader("plain text"))
	assert.Error(t, err)
}
