package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"
)

const imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

// DocxReader reads a DOCX package and extracts structured content:
// translatable text units, the image catalog and table snapshots.
type DocxReader struct {
	logger *zap.Logger
}

// NewDocxReader creates a new DOCX reader
func NewDocxReader(logger *zap.Logger) *DocxReader {
	return &DocxReader{logger: logger}
}

// Read parses the DOCX file at path. Paragraphs are kept when they have
// text or carry an image; an empty image-bearing paragraph is still a
// unit so its position survives the round-trip.
func (r *DocxReader) Read(filePath string) (*Content, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open DOCX package: %w", err)
	}

	wordDoc, err := parseDocumentXML(zipReader)
	if err != nil {
		return nil, err
	}

	content := &Content{
		Images: ImageCatalog{},
	}

	for i := range wordDoc.Body.Paragraphs {
		unit := NewTextUnit(i, &wordDoc.Body.Paragraphs[i])
		if !unit.IsEmpty() || unit.HasImage {
			content.Units = append(content.Units, unit)
		}
	}

	for i := range wordDoc.Body.Tables {
		content.Tables = append(content.Tables, snapshotTable(i, &wordDoc.Body.Tables[i]))
	}

	images, err := r.extractImages(zipReader)
	if err != nil {
		return nil, err
	}
	content.Images = images

	r.logger.Info("document analyzed",
		zap.String("path", filePath),
		zap.Int("paragraphs", len(content.Units)),
		zap.Int("tables", len(content.Tables)),
		zap.Int("images", len(content.Images)))

	return content, nil
}

// parseDocumentXML locates and parses word/document.xml
func parseDocumentXML(zipReader *zip.Reader) (*WordDocument, error) {
	data, err := readZipPart(zipReader, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to read document.xml: %w", err)
	}

	var doc WordDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document.xml: %w", err)
	}

	return &doc, nil
}

// extractImages harvests embedded image parts via the document's
// relationships. The catalog is keyed by relationship ID so paragraphs
// can reference their images.
func (r *DocxReader) extractImages(zipReader *zip.Reader) (ImageCatalog, error) {
	images := ImageCatalog{}

	relData, err := readZipPart(zipReader, "word/_rels/document.xml.rels")
	if err != nil {
		// A package without relationships has no embedded images.
		return images, nil
	}

	var rels Relationships
	if err := xml.Unmarshal(relData, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}

	contentTypes := parseContentTypes(zipReader)

	count := 0
	for _, rel := range rels.Relationships {
		if rel.Type != imageRelationshipType {
			continue
		}

		partName := path.Join("word", rel.Target)
		data, err := readZipPart(zipReader, partName)
		if err != nil {
			r.logger.Warn("image part missing from package",
				zap.String("relationship", rel.ID),
				zap.String("target", rel.Target))
			continue
		}

		ext := strings.TrimPrefix(path.Ext(rel.Target), ".")
		contentType := contentTypes[ext]
		if contentType == "" {
			contentType = "image/" + ext
		}

		images[rel.ID] = ImagePart{
			Data:        data,
			ContentType: contentType,
			Filename:    fmt.Sprintf("image_%d.%s", count, ext),
		}
		count++

		r.logger.Debug("found image",
			zap.String("relationship", rel.ID),
			zap.String("contentType", contentType))
	}

	return images, nil
}

// parseContentTypes maps file extensions to declared content types.
// Failures degrade to extension-derived types.
func parseContentTypes(zipReader *zip.Reader) map[string]string {
	types := map[string]string{}

	data, err := readZipPart(zipReader, "[Content_Types].xml")
	if err != nil {
		return types
	}

	var ct ContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return types
	}

	for _, def := range ct.Defaults {
		types[def.Extension] = def.ContentType
	}

	return types
}

// snapshotTable flattens a table into a grid of cell texts
func snapshotTable(index int, table *Table) TableSnapshot {
	snapshot := TableSnapshot{Index: index}

	for i := range table.Rows {
		row := &table.Rows[i]
		cells := make([]string, 0, len(row.Cells))
		for j := range row.Cells {
			var texts []string
			for k := range row.Cells[j].Paragraphs {
				texts = append(texts, row.Cells[j].Paragraphs[k].PlainText())
			}
			cells = append(cells, strings.Join(texts, "\n"))
		}
		snapshot.Rows = append(snapshot.Rows, cells)
	}

	snapshot.RowCount = len(snapshot.Rows)
	if snapshot.RowCount > 0 {
		snapshot.ColCount = len(snapshot.Rows[0])
	}

	return snapshot
}

// readZipPart reads one named part from the package
func readZipPart(zipReader *zip.Reader, name string) ([]byte, error) {
	for _, file := range zipReader.File {
		if file.Name == name {
			rc, err := file.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("part %s not found", name)
}
