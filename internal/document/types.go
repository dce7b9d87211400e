package document

import "strings"

// TextUnit is one paragraph's translatable text plus the structural
// metadata needed to put the translation back in place. Index is the
// paragraph's position in the original document and is the identity key
// used when merging translations into the source skeleton.
type TextUnit struct {
	Index     int
	Text      string
	IsBold    bool
	IsItalic  bool
	Alignment string
	StyleName string
	HasImage  bool
	ImageRef  string
}

// NewTextUnit captures a paragraph's text and formatting hints. Bold and
// italic are true if any run carries the attribute. Only the first
// embedded image reference is kept; additional images in the same
// paragraph stay in the document but are not tracked per unit.
func NewTextUnit(index int, para *Paragraph) TextUnit {
	unit := TextUnit{
		Index:     index,
		Text:      para.PlainText(),
		Alignment: para.Alignment(),
		StyleName: para.StyleName(),
	}

	for _, run := range para.allRuns() {
		if run.Properties != nil {
			if run.Properties.Bold != nil {
				unit.IsBold = true
			}
			if run.Properties.Italic != nil {
				unit.IsItalic = true
			}
		}

		if run.HasImage() {
			unit.HasImage = true
			if unit.ImageRef == "" {
				unit.ImageRef = run.Drawing.EmbedID()
			}
		}
	}

	return unit
}

// IsEmpty reports whether the unit has no translatable text.
func (u *TextUnit) IsEmpty() bool {
	return strings.TrimSpace(u.Text) == ""
}

// ImagePart holds one embedded image's binary payload as read from the
// package. Never mutated by translation.
type ImagePart struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ImageCatalog maps relationship IDs to embedded image parts.
type ImageCatalog map[string]ImagePart

// TableSnapshot is a row/column grid of cell texts. Tables are carried
// through translation unchanged.
type TableSnapshot struct {
	Index    int
	Rows     [][]string
	RowCount int
	ColCount int
}

// Content is everything extracted from a source document in one read:
// translatable units, the image catalog and table snapshots.
type Content struct {
	Units  []TextUnit
	Images ImageCatalog
	Tables []TableSnapshot
}
