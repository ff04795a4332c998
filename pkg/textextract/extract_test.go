package textextract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTXT(t *testing.T) {
	data := []byte("  hello world\n")
	got, err := Extract(bytes.NewReader(data), int64(len(data)), ".txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)
	assert.Equal(t, "txt", got.Metadata["type"])
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>Quarterly results</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	data := buf.Bytes()
	got, err := Extract(bytes.NewReader(data), int64(len(data)), ".docx")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly results", got.Content)
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract(bytes.NewReader(nil), 0, ".exe")
	assert.Error(t, err)
}

func TestSupportedTypes(t *testing.T) {
	assert.ElementsMatch(t, []string{".pdf", ".docx", ".txt"}, SupportedTypes())
}
