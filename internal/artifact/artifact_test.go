package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesDirAndFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	docs := []Document{
		{Name: "onboarding.md", Content: []byte("# Hello\n")},
		{Name: "diagram.mmd", Content: []byte("graph TD\nA-->B")},
	}

	require.NoError(t, Write(dir, docs))

	b, err := os.ReadFile(filepath.Join(dir, "onboarding.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", string(b))

	b, err = os.ReadFile(filepath.Join(dir, "diagram.mmd"))
	require.NoError(t, err)
	assert.Equal(t, "graph TD\nA-->B", string(b))
}

func TestWriteFlattensNames(t *testing.T) {
	dir := t.TempDir()
	docs := []Document{{Name: "../escape.md", Content: []byte("x")}}

	require.NoError(t, Write(dir, docs))

	_, err := os.Stat(filepath.Join(dir, "escape.md"))
	assert.NoError(t, err, "name is reduced to its base")
	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestS3ConfigEnabled(t *testing.T) {
	assert.False(t, S3Config{}.Enabled())
	assert.False(t, S3Config{Endpoint: "localhost:9000"}.Enabled())
	assert.True(t, S3Config{Endpoint: "localhost:9000", Bucket: "b"}.Enabled())
}

func TestNewS3PublisherValidation(t *testing.T) {
	_, err := NewS3Publisher(S3Config{})
	assert.Error(t, err)

	_, err = NewS3Publisher(S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err, "credentials are required")

	p, err := NewS3Publisher(S3Config{
		Endpoint:  "localhost:9000",
		Bucket:    "artifacts",
		AccessKey: "ak",
		SecretKey: "sk",
		Prefix:    "/runs/",
	})
	require.NoError(t, err)
	assert.Equal(t, "runs/abc/onboarding.md", p.objectKey("abc", "onboarding.md"))
}

func TestObjectKeyWithoutPrefix(t *testing.T) {
	p, err := NewS3Publisher(S3Config{
		Endpoint:  "localhost:9000",
		Bucket:    "artifacts",
		AccessKey: "ak",
		SecretKey: "sk",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc/diagram.mmd", p.objectKey("abc", "/diagram.mmd"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown", contentType("onboarding.md"))
	assert.Equal(t, "application/yaml", contentType("agent.yaml"))
	assert.Equal(t, "text/plain", contentType("diagram.mmd"))
}
