package convert

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbxtools/fbxfile"
	"github.com/fbxtools/fbxfile/ascii"
	"github.com/fbxtools/fbxfile/bin"
	. "github.com/fbxtools/fbxfile/declare"
	"github.com/fbxtools/fbxfile/fbxio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *fbxfile.Scene {
	return Scene{
		Version(7400),
		Node("FBXHeaderExtension",
			Node("FBXHeaderVersion", Property(Int32, 1003)),
			Node("FBXVersion", Property(Int32, 7400)),
			Node("Creator", Property(String, "convert test")),
		),
		Node("GlobalSettings",
			Node("Version", Property(Int32, 1000)),
			Node("Properties70",
				Node("P", Property(String, "UpAxis"), Property(String, "int"), Property(String, "Integer"), Property(String, ""), Property(Int32, 1)),
				Node("P", Property(String, "UnitScaleFactor"), Property(String, "double"), Property(String, "Number"), Property(String, ""), Property(Float64, 1)),
			),
		),
		Node("Objects",
			Node("Geometry", Property(Int64, 1001), Property(String, "Geometry::Quad"), Property(String, "Mesh"),
				Node("Vertices", Property(Float64Array, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0)),
				Node("PolygonVertexIndex", Property(Int32Array, 0, 1, 2, -4)),
			),
			Node("Model", Property(Int64, 1002), Property(String, "Model::Quad"), Property(String, "Mesh"),
				Node("Version", Property(Int32, 232)),
			),
		),
		Node("Connections",
			Node("C", Property(String, "OO"), Property(Int64, 1001), Property(Int64, 1002)),
		),
	}.Declare()
}

func writeBinary(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bin.Encoder{}.Encode(&buf, testScene()))
	path := filepath.Join(dir, "in.fbx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func newConverter(t *testing.T, out io.Writer) *Converter {
	t.Helper()
	c, err := New(fbxio.NewManager(), out)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readScene(t *testing.T, path string) *fbxfile.Scene {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var scene *fbxfile.Scene
	if bin.Detect(b) {
		scene, _, err = bin.Decoder{}.Decode(bytes.NewReader(b))
	} else {
		scene, _, err = ascii.Decoder{}.Decode(bytes.NewReader(b))
	}
	require.NoError(t, err)
	return scene
}

func TestLookupWriters(t *testing.T) {
	ids, err := LookupWriters(fbxio.NewManager().Registry())
	require.NoError(t, err)
	assert.Equal(t, WriterIDs{Binary: 0, ASCII: 1}, ids)
	assert.Equal(t, 0, ids.For(Binary))
	assert.Equal(t, 1, ids.For(ASCII))
	assert.Equal(t, 1, ids.For(Unknown))

	// Writers that do not produce FBX are skipped, even with a matching
	// description.
	reg := fbxio.NewRegistry()
	reg.RegisterWriter(fbxio.WriterPlugin{Description: BinaryWriterDescription})
	reg.RegisterWriter(fbxio.WriterPlugin{Description: "FBX 6.0 binary (*.fbx)", FBX: true})
	reg.RegisterWriter(fbxio.WriterPlugin{Description: ASCIIWriterDescription, FBX: true})
	_, err = LookupWriters(reg)
	assert.ErrorIs(t, err, ErrWritersNotFound)

	reg.RegisterWriter(fbxio.WriterPlugin{Description: BinaryWriterDescription, FBX: true})
	ids, err = LookupWriters(reg)
	require.NoError(t, err)
	assert.Equal(t, WriterIDs{Binary: 3, ASCII: 2}, ids)
}

func TestNew_WritersNotFound(t *testing.T) {
	c, err := New(fbxio.NewManagerWithRegistry(fbxio.NewRegistry()), nil)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrWritersNotFound)

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestConvertFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeBinary(t, dir)
	var out bytes.Buffer
	c := newConverter(t, &out)

	asciiPath := filepath.Join(dir, "text.fbx")
	require.NoError(t, c.ConvertFile(in, asciiPath, ASCII))
	assert.Equal(t, "Success!\nIn: "+in+" \nOut (ascii): "+asciiPath+"\n\n", out.String())
	assert.True(t, c.IsConvertibleFile(asciiPath))
	b, err := os.ReadFile(asciiPath)
	require.NoError(t, err)
	assert.True(t, ascii.Detect(b))

	out.Reset()
	binPath := filepath.Join(dir, "binary.fbx")
	require.NoError(t, c.ConvertFile(asciiPath, binPath, Binary))
	assert.Equal(t, "Success!\nIn: "+asciiPath+" \nOut (binary): "+binPath+"\n\n", out.String())
	assert.True(t, c.IsConvertibleFile(binPath))

	got := readScene(t, binPath)
	assert.Equal(t, uint32(7400), got.Version)
	assert.Equal(t, testScene().Digest(), got.Digest())
}

func TestConvertFile_BinaryStable(t *testing.T) {
	dir := t.TempDir()
	in := writeBinary(t, dir)
	c := newConverter(t, nil)

	first := filepath.Join(dir, "first.fbx")
	second := filepath.Join(dir, "second.fbx")
	require.NoError(t, c.ConvertFile(in, first, Binary))
	require.NoError(t, c.ConvertFile(first, second, Binary))
	assert.Equal(t, readScene(t, first).Digest(), readScene(t, second).Digest())
	assert.Equal(t, readScene(t, in).Digest(), readScene(t, first).Digest())
}

func TestConvertFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c := newConverter(t, &out)

	in := filepath.Join(dir, "missing.fbx")
	output := filepath.Join(dir, "out.fbx")
	err := c.ConvertFile(in, output, Binary)
	require.Error(t, err)
	var cerr ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "load", cerr.Step)
	assert.True(t, strings.HasPrefix(out.String(), "Error! Failed to load specified FBX file ( "+in+" ): "))
	assert.True(t, strings.HasSuffix(out.String(), "\n\n"))
	assert.NoFileExists(t, output)
}

func TestConvertFile_NotFBX(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c := newConverter(t, &out)

	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("just some text\n"), 0644))
	assert.False(t, c.IsConvertibleFile(plain))

	output := filepath.Join(dir, "out.fbx")
	require.Error(t, c.ConvertFile(plain, output, ASCII))
	assert.Equal(t, "Error! Failed to load specified FBX file ( "+plain+" ): unexpected file type\n\n", out.String())
	assert.NoFileExists(t, output)
}

func TestConvertFile_ImportFailure(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	c := newConverter(t, &out)

	// Detected as binary, but truncated.
	b, err := os.ReadFile(writeBinary(t, dir))
	require.NoError(t, err)
	bad := filepath.Join(dir, "bad.fbx")
	require.NoError(t, os.WriteFile(bad, b[:40], 0644))

	output := filepath.Join(dir, "out.fbx")
	err = c.ConvertFile(bad, output, ASCII)
	var cerr ConversionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "import", cerr.Step)
	assert.True(t, strings.HasPrefix(out.String(), "Error! Failed to import scene from file ( "+bad+" ): "))
	assert.NoFileExists(t, output)
}

func TestConvertFile_EmptyOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeBinary(t, dir)
	var out bytes.Buffer
	c := newConverter(t, &out)

	err := c.ConvertFile(in, "", Binary)
	require.ErrorIs(t, err, fbxio.ErrEmptyFileName)
	assert.Equal(t, "Error! Failed to initialize exporter: output file name is empty\n\n", out.String())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConvertFile_Warnings(t *testing.T) {
	dir := t.TempDir()
	var out, warn bytes.Buffer
	c := newConverter(t, &out)
	c.Warn = &warn

	// A header without a version produces a warning, not a failure.
	in := filepath.Join(dir, "in.fbx")
	require.NoError(t, os.WriteFile(in, []byte("; FBX file\nFBXHeaderExtension:  {\n}\n"), 0644))
	require.NoError(t, c.ConvertFile(in, filepath.Join(dir, "out.fbx"), Binary))
	assert.Contains(t, warn.String(), "version not found")
}

func TestIsConvertibleFile_EmptyPath(t *testing.T) {
	c := newConverter(t, nil)
	assert.Panics(t, func() { c.IsConvertibleFile("") })
	assert.False(t, c.IsConvertibleFile(filepath.Join(t.TempDir(), "missing.fbx")))
}

func TestClose(t *testing.T) {
	dir := t.TempDir()
	in := writeBinary(t, dir)
	c, err := New(fbxio.NewManager(), nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.ConvertFile(in, filepath.Join(dir, "out.fbx"), Binary), fbxio.ErrDestroyed)
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "binary", Binary.String())
	assert.Equal(t, "ascii", ASCII.String())
	assert.Equal(t, "unknown", Unknown.String())
}
