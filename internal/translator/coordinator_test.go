package translator

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-translator/internal/config"
	"github.com/nerdneilsfield/go-docx-translator/internal/document"
)

const coordinatorFixtureXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Hello world.</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>Good morning.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeRunFixture(t *testing.T, dir string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`,
		"word/document.xml":   coordinatorFixtureXML,
	}
	for name, data := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "input.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestCoordinatorRun(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeRunFixture(t, dir)

	cfg := &config.Config{
		TargetLanguage: "French",
		BatchSize:      2,
		BatchDelay:     0,
		InputDoc:       inputPath,
		OutputDoc:      filepath.Join(dir, "out.docx"),
	}

	provider := &mockProvider{responses: []string{
		"1. Bonjour le monde.\n2. Bonjour.",
	}}

	coordinator := NewCoordinator(cfg, provider, zap.NewNop())

	result, err := coordinator.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "completed", result.Status)
	assert.Equal(t, cfg.OutputDoc, result.OutputFile)
	assert.Equal(t, 2, result.TotalParagraphs)
	assert.Equal(t, 2, result.ParagraphsTranslated)
	assert.Equal(t, "French", result.TargetLanguage)
	assert.NotEmpty(t, result.RunID)

	data, err := os.ReadFile(cfg.OutputDoc)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var docXML string
	for _, file := range zr.File {
		if file.Name == "word/document.xml" {
			rc, err := file.Open()
			require.NoError(t, err)
			raw := new(bytes.Buffer)
			_, err = raw.ReadFrom(rc)
			require.NoError(t, err)
			rc.Close()
			docXML = raw.String()
		}
	}

	assert.Contains(t, docXML, "Bonjour le monde.")
	assert.Contains(t, docXML, "Bonjour.")
	assert.NotContains(t, docXML, "Hello world.")
}

func TestMergeTablesSkipsRowless(t *testing.T) {
	cfg := &config.Config{TargetLanguage: "French", BatchSize: 2}
	coordinator := NewCoordinator(cfg, &mockProvider{}, zap.NewNop())

	tables := []document.TableSnapshot{
		{Index: 0, Rows: [][]string{{"A", "B"}}, RowCount: 1, ColCount: 2},
		{Index: 1},
		{Index: 2, Rows: [][]string{{"C"}}, RowCount: 1, ColCount: 1},
	}

	merged := coordinator.mergeTables(tables)

	require.Len(t, merged, 2)
	assert.Equal(t, 0, merged[0].Index)
	assert.Equal(t, 2, merged[1].Index)
}

func TestCoordinatorRunMissingInput(t *testing.T) {
	cfg := &config.Config{
		TargetLanguage: "French",
		BatchSize:      2,
		InputDoc:       filepath.Join(t.TempDir(), "nope.docx"),
		OutputDoc:      filepath.Join(t.TempDir(), "out.docx"),
	}

	coordinator := NewCoordinator(cfg, &mockProvider{}, zap.NewNop())

	_, err := coordinator.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
