package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX writes a minimal DOCX package and returns its path.
func createTestDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)

	// Add [Content_Types].xml (required for valid DOCX)
	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func body(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><w:document ` + wordNS + `><w:body>` + inner + `</w:body></w:document>`
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []domain.Format{domain.FormatDOCX}, New().Formats())
}

func TestExtract_Paragraphs(t *testing.T) {
	path := createTestDOCX(t, body(
		`<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>`))

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Hello World\nSecond paragraph.", got)
}

func TestExtract_TabsBreaksAndTables(t *testing.T) {
	path := createTestDOCX(t, body(
		`<w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Value</w:t><w:br/><w:t>next</w:t></w:r></w:p>`+
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell one</w:t></w:r></w:p></w:tc>`+
			`<w:tc><w:p><w:r><w:t>cell two</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`))

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Name\tValue\nnext\ncell one\ncell two", got)
}

func TestExtract_IgnoresNonTextElements(t *testing.T) {
	path := createTestDOCX(t, body(
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t>Title</w:t></w:r></w:p>`+
			`<w:p><w:r><w:instrText>PAGE</w:instrText></w:r></w:p>`))

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Title", got)
}

func TestExtract_EmptyBody(t *testing.T) {
	path := createTestDOCX(t, body(`<w:p></w:p>`))

	got, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	path := createTestDOCX(t, "")

	_, err := New().Extract(context.Background(), path)

	assert.ErrorIs(t, err, errNoDocumentPart)
}

func TestExtract_MalformedXML(t *testing.T) {
	path := createTestDOCX(t, `<w:document `+wordNS+`><w:body><w:p>`)

	_, err := New().Extract(context.Background(), path)

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), documentPart))
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text pretending to be docx"), 0600))

	_, err := New().Extract(context.Background(), path)

	assert.Error(t, err)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, "/does/not/matter.docx")

	assert.ErrorIs(t, err, context.Canceled)
}
