package document

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// DOCX XML namespaces
const (
	WordprocessingMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelationshipsNamespace    = "http://schemas.openxmlformats.org/package/2006/relationships"

	// OfficeRelationshipsNamespace is the r: namespace used for
	// relationship references inside document.xml.
	OfficeRelationshipsNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// WordDocument represents the main document.xml structure. The root
// element's attributes are captured so the original namespace
// declarations can be re-emitted on write.
type WordDocument struct {
	XMLName xml.Name   `xml:"document"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Body    Body       `xml:"body"`
}

// Body represents the document body. Section properties are kept as raw
// XML so page setup survives the round-trip untouched.
type Body struct {
	Paragraphs []Paragraph `xml:"p"`
	Tables     []Table     `xml:"tbl"`
	SectProps  *RawElement `xml:"sectPr"`
}

// RawElement preserves an element's inner XML verbatim across a
// parse/marshal round-trip.
type RawElement struct {
	InnerXML string `xml:",innerxml"`
}

// Paragraph represents a paragraph element. Children keeps runs,
// hyperlinks and any other child elements in document order, so content
// the pipeline does not model still survives the write path.
type Paragraph struct {
	Properties *ParagraphProps
	Children   []ParagraphChild
}

// ParagraphChild is one ordered paragraph child; exactly one field is
// set.
type ParagraphChild struct {
	Run       *Run
	Hyperlink *Hyperlink
	Raw       *RawChild
}

// Hyperlink represents a hyperlink wrapping its own runs
type Hyperlink struct {
	XMLName xml.Name   `xml:"hyperlink"`
	ID      string     `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	Attrs   []xml.Attr `xml:",any,attr"`
	Runs    []Run      `xml:"r"`
}

// RawChild preserves an unmodeled element with its attributes and inner
// XML so it round-trips verbatim.
type RawChild struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	InnerXML string     `xml:",innerxml"`
}

// UnmarshalXML parses paragraph children preserving their document
// order. Elements other than pPr, runs and hyperlinks are captured raw.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				props := &ParagraphProps{}
				if err := d.DecodeElement(props, &t); err != nil {
					return err
				}
				p.Properties = props
			case "r":
				run := &Run{}
				if err := d.DecodeElement(run, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, ParagraphChild{Run: run})
			case "hyperlink":
				link := &Hyperlink{}
				if err := d.DecodeElement(link, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, ParagraphChild{Hyperlink: link})
			default:
				raw := &RawChild{}
				if err := d.DecodeElement(raw, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, ParagraphChild{Raw: raw})
			}
		case xml.EndElement:
			return nil
		}
	}
}

// ParagraphProps represents paragraph properties. The raw inner XML is
// kept alongside the modeled fields so properties the pipeline does not
// model (numbering, indentation, borders) are written back verbatim.
type ParagraphProps struct {
	Style    *ParagraphStyle   `xml:"pStyle"`
	Spacing  *ParagraphSpacing `xml:"spacing"`
	Align    *ParagraphAlign   `xml:"jc"`
	InnerXML string            `xml:",innerxml"`
}

// ParagraphStyle represents paragraph style
type ParagraphStyle struct {
	Val string `xml:"val,attr"`
}

// ParagraphSpacing represents paragraph spacing
type ParagraphSpacing struct {
	After  string `xml:"after,attr,omitempty"`
	Before string `xml:"before,attr,omitempty"`
	Line   string `xml:"line,attr,omitempty"`
}

// ParagraphAlign represents paragraph alignment
type ParagraphAlign struct {
	Val string `xml:"val,attr"`
}

// Run represents a text run
type Run struct {
	XMLName    xml.Name  `xml:"r"`
	Properties *RunProps `xml:"rPr"`
	Text       *Text     `xml:"t"`
	Tab        *Tab      `xml:"tab"`
	Break      *Break    `xml:"br"`
	Drawing    *Drawing  `xml:"drawing"`
}

// RunProps represents run properties. As with ParagraphProps, the raw
// inner XML wins on write so unmodeled run formatting is preserved.
type RunProps struct {
	Bold      *Bold      `xml:"b"`
	Italic    *Italic    `xml:"i"`
	Underline *Underline `xml:"u"`
	Color     *Color     `xml:"color"`
	Size      *FontSize  `xml:"sz"`
	Font      *RunFont   `xml:"rFonts"`
	InnerXML  string     `xml:",innerxml"`
}

// Text represents actual text content
type Text struct {
	XMLName xml.Name `xml:"t"`
	Space   string   `xml:"http://www.w3.org/XML/1998/namespace space,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

// Tab represents a tab character
type Tab struct {
	XMLName xml.Name `xml:"tab"`
}

// Break represents a line break
type Break struct {
	XMLName xml.Name `xml:"br"`
	Type    string   `xml:"type,attr,omitempty"`
}

// Bold represents bold formatting
type Bold struct {
	Val string `xml:"val,attr,omitempty"`
}

// Italic represents italic formatting
type Italic struct {
	Val string `xml:"val,attr,omitempty"`
}

// Underline represents underline formatting
type Underline struct {
	Val string `xml:"val,attr,omitempty"`
}

// Color represents text color
type Color struct {
	Val string `xml:"val,attr"`
}

// FontSize represents font size
type FontSize struct {
	Val string `xml:"val,attr"`
}

// RunFont represents font settings
type RunFont struct {
	ASCII    string `xml:"ascii,attr,omitempty"`
	HAnsi    string `xml:"hAnsi,attr,omitempty"`
	EastAsia string `xml:"eastAsia,attr,omitempty"`
}

// Drawing represents an embedded drawing/image element. The content is
// captured verbatim: drawings are never rewritten, only carried through.
type Drawing struct {
	XMLName  xml.Name `xml:"drawing"`
	InnerXML string   `xml:",innerxml"`
}

var blipEmbedPattern = regexp.MustCompile(`(?:r:embed|r:link)="([^"]+)"`)

// EmbedID returns the relationship ID of the first embedded picture in
// the drawing, or "" when none is referenced.
func (d *Drawing) EmbedID() string {
	if d == nil {
		return ""
	}
	if m := blipEmbedPattern.FindStringSubmatch(d.InnerXML); m != nil {
		return m[1]
	}
	return ""
}

// Table represents a table element
type Table struct {
	XMLName    xml.Name    `xml:"tbl"`
	Properties *RawElement `xml:"tblPr"`
	Grid       *RawElement `xml:"tblGrid"`
	Rows       []TableRow  `xml:"tr"`
}

// TableRow represents a table row
type TableRow struct {
	XMLName    xml.Name    `xml:"tr"`
	Properties *RawElement `xml:"trPr"`
	Cells      []TableCell `xml:"tc"`
}

// TableCell represents a table cell
type TableCell struct {
	XMLName    xml.Name    `xml:"tc"`
	Properties *RawElement `xml:"tcPr"`
	Paragraphs []Paragraph `xml:"p"`
}

// Relationships represents a package relationships part
// (word/_rels/document.xml.rels).
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// Relationship represents a single package relationship
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// ContentTypes represents [Content_Types].xml
type ContentTypes struct {
	XMLName   xml.Name   `xml:"Types"`
	Defaults  []Default  `xml:"Default"`
	Overrides []Override `xml:"Override"`
}

// Default represents a default content type mapping by extension
type Default struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// Override represents a content type override by part name
type Override struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// allRuns returns the paragraph's runs in document order, descending
// into hyperlinks.
func (p *Paragraph) allRuns() []*Run {
	var runs []*Run
	for i := range p.Children {
		child := &p.Children[i]
		switch {
		case child.Run != nil:
			runs = append(runs, child.Run)
		case child.Hyperlink != nil:
			for j := range child.Hyperlink.Runs {
				runs = append(runs, &child.Hyperlink.Runs[j])
			}
		}
	}
	return runs
}

// PlainText returns the concatenated text of all runs in the paragraph,
// hyperlink text included.
func (p *Paragraph) PlainText() string {
	if p == nil {
		return ""
	}

	var texts []string
	for _, run := range p.allRuns() {
		if text := run.PlainText(); text != "" {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "")
}

// PlainText returns the textual content of the run. Tabs and breaks map
// to their whitespace equivalents; drawings contribute no text.
func (r *Run) PlainText() string {
	if r == nil {
		return ""
	}

	if r.Text != nil {
		return r.Text.Text
	}

	if r.Tab != nil {
		return "\t"
	}

	if r.Break != nil {
		if r.Break.Type == "page" {
			return "\n\n"
		}
		return "\n"
	}

	return ""
}

// HasImage reports whether the run carries an embedded drawing.
func (r *Run) HasImage() bool {
	return r != nil && r.Drawing != nil
}

// StyleName returns the paragraph style label, or "Normal" when the
// paragraph carries no explicit style.
func (p *Paragraph) StyleName() string {
	if p.Properties != nil && p.Properties.Style != nil {
		return p.Properties.Style.Val
	}
	return "Normal"
}

// Alignment returns the paragraph alignment value, or "" when unset.
func (p *Paragraph) Alignment() string {
	if p.Properties != nil && p.Properties.Align != nil {
		return p.Properties.Align.Val
	}
	return ""
}
