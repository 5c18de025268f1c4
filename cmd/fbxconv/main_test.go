package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
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
		),
		Node("Objects",
			Node("Geometry", Property(Int64, 7), Property(String, "Geometry::Plane"), Property(String, "Mesh"),
				Node("Vertices", Property(Float64Array, make([]float64, 300))),
				Node("PolygonVertexIndex", Property(Int32Array, 0, 1, 2, -4)),
			),
		),
	}.Declare()
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bin.Encoder{}.Encode(&buf, testScene()))
	path := filepath.Join(dir, "in.fbx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func runArgs(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, stdout, _ := runArgs()
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+usage, stdout)

	code, stdout, _ = runArgs("-unknown")
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+usage, stdout)

	code, stdout, _ = runArgs("-o", "out.fbx", "-binary")
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+usage, stdout)
}

func TestRun_FormatArguments(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	out := filepath.Join(dir, "out.fbx")

	code, stdout, _ := runArgs("-c", in, "-o", out, "-binary", "-ascii")
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+"Error! Having both -ascii and -binary arguments is not allowed.\n\n"+usage, stdout)
	assert.NoFileExists(t, out)

	code, stdout, _ = runArgs("-c", in, "-o", out)
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+"Error! Either -ascii or -binary required!\n\n"+usage, stdout)
	assert.NoFileExists(t, out)
}

func TestRun_MissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing.fbx")
	out := filepath.Join(dir, "out.fbx")

	code, stdout, _ := runArgs("-c", in, "-o", out, "-ascii")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "Error! Failed to load specified FBX file ( "+in+" ): ")
	assert.NotContains(t, stdout, usage)
	assert.NoFileExists(t, out)
}

func TestRun_NoOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)

	code, stdout, _ := runArgs("-c", in, "-binary")
	assert.Equal(t, 1, code)
	assert.Equal(t, "Error! Failed to initialize exporter: output file name is empty\n\n", stdout)
}

func TestRun_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	text := filepath.Join(dir, "text.fbx")
	back := filepath.Join(dir, "back.fbx")

	code, stdout, stderr := runArgs("-c", in, "-o", text, "-ascii")
	require.Equal(t, 0, code, stdout+stderr)
	assert.Equal(t, "Success!\nIn: "+in+" \nOut (ascii): "+text+"\n\n", stdout)

	code, stdout, stderr = runArgs("--convert", text, "--output", back, "-binary")
	require.Equal(t, 0, code, stdout+stderr)
	assert.Equal(t, "Success!\nIn: "+text+" \nOut (binary): "+back+"\n\n", stdout)

	b, err := os.ReadFile(text)
	require.NoError(t, err)
	assert.True(t, ascii.Detect(b))

	f, err := os.Open(back)
	require.NoError(t, err)
	defer f.Close()
	scene, _, err := bin.Decoder{}.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, testScene().Digest(), scene.Digest())
}

func TestRun_Config(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	config := filepath.Join(dir, "fbxconv.yaml")
	require.NoError(t, os.WriteFile(config, []byte("export:\n  version: 7500\n  compress: false\n"), 0644))

	compressed := filepath.Join(dir, "compressed.fbx")
	code, stdout, _ := runArgs("-c", in, "-o", compressed, "-binary")
	require.Equal(t, 0, code, stdout)

	out := filepath.Join(dir, "out.fbx")
	code, stdout, stderr := runArgs("-config", config, "-c", in, "-o", out, "-binary")
	require.Equal(t, 0, code, stdout)
	assert.Contains(t, stderr, "Using config file: "+config)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	scene, _, err := bin.Decoder{}.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, uint32(7500), scene.Version)

	c, err := os.ReadFile(compressed)
	require.NoError(t, err)
	assert.Greater(t, len(b), len(c), "uncompressed output is not larger")

	code, _, stderr = runArgs("-config", filepath.Join(dir, "missing.yaml"), "-c", in, "-o", out, "-binary")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load config")
}

func TestRun_ArgumentsBeforeConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir)
	config := filepath.Join(dir, "fbxconv.yaml")
	require.NoError(t, os.WriteFile(config, []byte("export: [unterminated\n"), 0644))

	code, stdout, stderr := runArgs("-config", config)
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+usage, stdout)
	assert.Empty(t, stderr)

	code, stdout, stderr = runArgs("-config", config, "-c", in, "-binary", "-ascii")
	assert.Equal(t, 1, code)
	assert.Equal(t, banner+"Error! Having both -ascii and -binary arguments is not allowed.\n\n"+usage, stdout)
	assert.Empty(t, stderr)

	code, _, stderr = runArgs("-config", config, "-c", in, "-binary")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "load config")
}

func TestRun_Banner(t *testing.T) {
	_, stdout, _ := runArgs()
	assert.Contains(t, stdout, "FBX File Format Converter\n")
	assert.Contains(t, stdout, "2020 - Bobby Anguelov - MIT License\n\n")
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("FBXCONV_EXPORT_COMPRESS", "false")
	t.Setenv("FBXCONV_EXPORT_COMPRESS_THRESHOLD", "64")

	s := fbxio.DefaultIOSettings()
	require.NoError(t, loadConfig("", &s, io.Discard))
	assert.False(t, s.Compress)
	assert.Equal(t, 64, s.CompressThreshold)
	assert.Equal(t, uint32(0), s.Version)
}
