package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const minimalContentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const minimalRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// DocxWriter serializes translated content back to a DOCX file. When the
// original document is available it is used as the base so images,
// styles and every part the pipeline does not understand carry over
// untouched; otherwise a new document is built from the units alone.
type DocxWriter struct {
	logger *zap.Logger
}

// NewDocxWriter creates a new DOCX writer
func NewDocxWriter(logger *zap.Logger) *DocxWriter {
	return &DocxWriter{logger: logger}
}

// Write produces the translated document at outputPath. The whole
// package is assembled in memory and written in one step, so a failure
// leaves no partial output file.
func (w *DocxWriter) Write(content *Content, outputPath, originalPath string) error {
	var packaged []byte
	var err error

	if originalPath != "" {
		if _, statErr := os.Stat(originalPath); statErr == nil {
			w.logger.Info("using original document as template to preserve images and formatting",
				zap.String("original", originalPath))
			packaged, err = w.patchOriginal(content, originalPath)
		} else {
			w.logger.Warn("original document unavailable, building new document",
				zap.String("original", originalPath))
			packaged, err = w.buildNew(content)
		}
	} else {
		w.logger.Info("creating new document (images may not be preserved)")
		packaged, err = w.buildNew(content)
	}

	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, packaged, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	w.logger.Info("document saved", zap.String("path", outputPath))
	return nil
}

// patchOriginal rewrites the original package, replacing only paragraph
// text at the units' indices. Every other part is copied verbatim.
func (w *DocxWriter) patchOriginal(content *Content, originalPath string) ([]byte, error) {
	data, err := os.ReadFile(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read original document: %w", err)
	}

	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open original package: %w", err)
	}

	wordDoc, err := parseDocumentXML(zipReader)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]*TextUnit, len(content.Units))
	for i := range content.Units {
		byIndex[content.Units[i].Index] = &content.Units[i]
	}

	for i := range wordDoc.Body.Paragraphs {
		if unit, ok := byIndex[i]; ok {
			w.updateParagraph(&wordDoc.Body.Paragraphs[i], unit)
		}
	}

	docXML, err := marshalDocumentXML(wordDoc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	for _, file := range zipReader.File {
		if err := copyOrReplacePart(zipWriter, file, docXML); err != nil {
			zipWriter.Close()
			return nil, fmt.Errorf("failed to repackage %s: %w", file.Name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}

	return buf.Bytes(), nil
}

// updateParagraph merges a translated unit into a paragraph. Runs that
// carry images are never cleared or removed; hyperlink elements keep
// their relationship but their stale source text is cleared.
func (w *DocxWriter) updateParagraph(para *Paragraph, unit *TextUnit) {
	text := strings.TrimSpace(unit.Text)
	if text == "" {
		return
	}

	// Clear every text run first, hyperlink content included, so no
	// source text survives next to the translation.
	for _, run := range para.allRuns() {
		if !run.HasImage() && run.Text != nil {
			run.Text.Text = ""
		}
	}

	if target := translationTarget(para); target != nil {
		target.Text = &Text{Text: unit.Text, Space: "preserve"}
		return
	}

	appended := unit.Text
	if unit.HasImage {
		appended = " " + unit.Text
	}
	para.Children = append(para.Children, ParagraphChild{
		Run: &Run{Text: &Text{Text: appended, Space: "preserve"}},
	})
}

// translationTarget picks the run that receives the translated text:
// the first direct run without an image, else the first hyperlink run.
func translationTarget(para *Paragraph) *Run {
	for i := range para.Children {
		if run := para.Children[i].Run; run != nil && !run.HasImage() {
			return run
		}
	}
	for i := range para.Children {
		if link := para.Children[i].Hyperlink; link != nil && len(link.Runs) > 0 {
			return &link.Runs[0]
		}
	}
	return nil
}

// buildNew constructs a fresh document from the units and tables.
// Bold, italic and alignment hints are reapplied; embedded images
// cannot be re-attached without the original package.
func (w *DocxWriter) buildNew(content *Content) ([]byte, error) {
	wordDoc := &WordDocument{}

	for i := range content.Units {
		unit := &content.Units[i]

		para := Paragraph{}
		if unit.Alignment != "" {
			para.Properties = &ParagraphProps{
				Align: &ParagraphAlign{Val: unit.Alignment},
			}
		}

		if strings.TrimSpace(unit.Text) != "" {
			run := &Run{Text: &Text{Text: unit.Text, Space: "preserve"}}
			if unit.IsBold || unit.IsItalic {
				run.Properties = &RunProps{}
				if unit.IsBold {
					run.Properties.Bold = &Bold{}
				}
				if unit.IsItalic {
					run.Properties.Italic = &Italic{}
				}
			}
			para.Children = append(para.Children, ParagraphChild{Run: run})
		}

		if unit.HasImage {
			w.logger.Warn("image cannot be preserved in new document",
				zap.Int("paragraph", unit.Index))
		}

		wordDoc.Body.Paragraphs = append(wordDoc.Body.Paragraphs, para)
	}

	for i := range content.Tables {
		wordDoc.Body.Tables = append(wordDoc.Body.Tables, buildTable(&content.Tables[i]))
	}

	docXML, err := marshalDocumentXML(wordDoc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(minimalContentTypesXML)},
		{"_rels/.rels", []byte(minimalRelsXML)},
		{"word/document.xml", docXML},
	}

	for _, part := range parts {
		writer, err := zipWriter.Create(part.name)
		if err != nil {
			zipWriter.Close()
			return nil, fmt.Errorf("failed to create part %s: %w", part.name, err)
		}
		if _, err := writer.Write(part.data); err != nil {
			zipWriter.Close()
			return nil, fmt.Errorf("failed to write part %s: %w", part.name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}

	return buf.Bytes(), nil
}

// buildTable reconstructs a table by cell text
func buildTable(snapshot *TableSnapshot) Table {
	table := Table{}

	for _, row := range snapshot.Rows {
		tableRow := TableRow{}
		for _, cellText := range row {
			cell := TableCell{
				Paragraphs: []Paragraph{{
					Children: []ParagraphChild{{
						Run: &Run{Text: &Text{Text: cellText, Space: "preserve"}},
					}},
				}},
			}
			tableRow.Cells = append(tableRow.Cells, cell)
		}
		table.Rows = append(table.Rows, tableRow)
	}

	return table
}

// copyOrReplacePart writes one part into the new package, substituting
// the patched document.xml for the original.
func copyOrReplacePart(zipWriter *zip.Writer, file *zip.File, docXML []byte) error {
	if file.Name == "word/document.xml" {
		writer, err := zipWriter.Create(file.Name)
		if err != nil {
			return err
		}
		_, err = writer.Write(docXML)
		return err
	}

	writer, err := zipWriter.CreateHeader(&zip.FileHeader{
		Name:   file.Name,
		Method: file.Method,
	})
	if err != nil {
		return err
	}

	reader, err := file.Open()
	if err != nil {
		return err
	}
	defer reader.Close()

	_, err = io.Copy(writer, reader)
	return err
}
