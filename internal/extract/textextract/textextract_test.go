package textextract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Docx(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	text, err := Extract("cv.DOCX", buildDocx(t, xml))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills: Go & SQL", text)
}

func TestExtract_DocxWithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract("cv.docx", buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestExtract_DocxInflationBound(t *testing.T) {
	// A few kilobytes of zip that inflate past the cap.
	body := `<w:document><w:body><w:p><w:r><w:t>` +
		strings.Repeat("a", bytesPerMB+1) +
		`</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, body)
	require.NoError(t, ValidateSize(data, 1))

	_, err := Extract("cv.docx", data, WithMaxExpandedMB(1))
	assert.ErrorIs(t, err, ErrTooLarge)

	text, err := Extract("cv.docx", data, WithMaxExpandedMB(2))
	require.NoError(t, err)
	assert.Len(t, text, bytesPerMB+1)
}

func TestReadLimited(t *testing.T) {
	raw, err := readLimited(strings.NewReader("abcd"), 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(raw))

	_, err = readLimited(strings.NewReader("abcde"), 4)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestExtract_PlainText(t *testing.T) {
	text, err := Extract("cv.txt", []byte("  Jane   Doe \r\n\r\n\r\nPython, SQL  "))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nPython, SQL", text)
}

func TestExtract_Latin1Fallback(t *testing.T) {
	// "José" in Latin-1.
	text, err := Extract("cv.txt", []byte{'J', 'o', 's', 0xe9})
	require.NoError(t, err)
	assert.Equal(t, "José", text)
}

func TestExtract_HTML(t *testing.T) {
	page := `<html><head><title>x</title><script>var a = 1;</script></head>
<body><nav>Home | Jobs</nav>
<main><h1>Senior Go Engineer</h1><p>Company: Acme</p><ul><li>Go</li><li>Kubernetes</li></ul></main>
<footer>© Acme</footer></body></html>`

	text, err := Extract("job.html", []byte(page))
	require.NoError(t, err)
	assert.Contains(t, text, "Senior Go Engineer")
	assert.Contains(t, text, "Company: Acme")
	assert.Contains(t, text, "Kubernetes")
	assert.NotContains(t, text, "var a")
	assert.NotContains(t, text, "Home | Jobs")
	assert.NotContains(t, text, "©")
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract("cv.exe", []byte("MZ"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Extract("cv.txt", []byte("   \n\t "))
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = Extract("cv.pdf", []byte("not a pdf"))
	assert.Error(t, err)

	_, err = Extract("cv.docx", []byte("not a zip"))
	assert.Error(t, err)
}

func TestValidateType(t *testing.T) {
	allowed := []string{"pdf", ".docx", "txt"}

	assert.NoError(t, ValidateType("resume.PDF", allowed))
	assert.NoError(t, ValidateType("resume.docx", allowed))
	assert.ErrorIs(t, ValidateType("resume.doc", allowed), ErrUnsupportedType)
	assert.ErrorIs(t, ValidateType("resume", allowed), ErrUnsupportedType)
	assert.Equal(t, "pdf", FileType("a/b/Resume.Pdf"))
}

func TestValidateSize(t *testing.T) {
	data := make([]byte, bytesPerMB+1)

	assert.ErrorIs(t, ValidateSize(data, 1), ErrTooLarge)
	assert.NoError(t, ValidateSize(data, 2))
	assert.NoError(t, ValidateSize(data, 0))
}
