package document

import (
	"bytes"
	"encoding/xml"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// namespacePrefixes maps namespace URIs back to the conventional DOCX
// prefixes on output. Attributes and elements in namespaces outside
// this table are dropped rather than emitted with an unbound prefix.
var namespacePrefixes = map[string]string{
	WordprocessingMLNamespace:                                                "w",
	OfficeRelationshipsNamespace:                                             "r",
	"http://www.w3.org/XML/1998/namespace":                                   "xml",
	"http://schemas.openxmlformats.org/markup-compatibility/2006":            "mc",
	"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
	"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
	"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
}

// defaultDocumentAttrs supplies the root namespace declarations when a
// document is built from scratch instead of parsed from a package.
var defaultDocumentAttrs = []xml.Attr{
	{Name: xml.Name{Space: "xmlns", Local: "w"}, Value: WordprocessingMLNamespace},
	{Name: xml.Name{Space: "xmlns", Local: "r"}, Value: OfficeRelationshipsNamespace},
}

// marshalDocumentXML serializes document.xml as prefixed
// WordprocessingML. encoding/xml cannot emit namespace prefixes, so the
// tree is written out by hand; inner XML captured at parse time goes
// back verbatim.
func marshalDocumentXML(doc *WordDocument) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(xmlDeclaration)

	b.WriteString("<w:document")
	attrs := doc.Attrs
	if len(attrs) == 0 {
		attrs = defaultDocumentAttrs
	}
	for _, attr := range attrs {
		writeAttr(&b, attr)
	}
	b.WriteString("><w:body>")

	for i := range doc.Body.Paragraphs {
		writeParagraph(&b, &doc.Body.Paragraphs[i])
	}
	for i := range doc.Body.Tables {
		writeTable(&b, &doc.Body.Tables[i])
	}
	writeRawElement(&b, "sectPr", doc.Body.SectProps)

	b.WriteString("</w:body></w:document>")
	return b.Bytes(), nil
}

func writeParagraph(b *bytes.Buffer, p *Paragraph) {
	b.WriteString("<w:p>")
	writeParagraphProps(b, p.Properties)

	for i := range p.Children {
		child := &p.Children[i]
		switch {
		case child.Run != nil:
			writeRun(b, child.Run)
		case child.Hyperlink != nil:
			writeHyperlink(b, child.Hyperlink)
		case child.Raw != nil:
			writeRawChild(b, child.Raw)
		}
	}

	b.WriteString("</w:p>")
}

func writeParagraphProps(b *bytes.Buffer, props *ParagraphProps) {
	if props == nil {
		return
	}

	if props.InnerXML != "" {
		b.WriteString("<w:pPr>")
		b.WriteString(props.InnerXML)
		b.WriteString("</w:pPr>")
		return
	}

	var inner bytes.Buffer
	if props.Style != nil {
		writeValElement(&inner, "pStyle", props.Style.Val)
	}
	if props.Spacing != nil {
		inner.WriteString("<w:spacing")
		writeOptionalAttr(&inner, "w:after", props.Spacing.After)
		writeOptionalAttr(&inner, "w:before", props.Spacing.Before)
		writeOptionalAttr(&inner, "w:line", props.Spacing.Line)
		inner.WriteString("/>")
	}
	if props.Align != nil {
		writeValElement(&inner, "jc", props.Align.Val)
	}

	if inner.Len() == 0 {
		return
	}
	b.WriteString("<w:pPr>")
	b.Write(inner.Bytes())
	b.WriteString("</w:pPr>")
}

func writeRun(b *bytes.Buffer, r *Run) {
	b.WriteString("<w:r>")
	writeRunProps(b, r.Properties)

	if r.Drawing != nil {
		b.WriteString("<w:drawing>")
		b.WriteString(r.Drawing.InnerXML)
		b.WriteString("</w:drawing>")
	}
	if r.Text != nil {
		b.WriteString("<w:t")
		writeOptionalAttr(b, "xml:space", r.Text.Space)
		b.WriteString(">")
		_ = xml.EscapeText(b, []byte(r.Text.Text))
		b.WriteString("</w:t>")
	}
	if r.Tab != nil {
		b.WriteString("<w:tab/>")
	}
	if r.Break != nil {
		b.WriteString("<w:br")
		writeOptionalAttr(b, "w:type", r.Break.Type)
		b.WriteString("/>")
	}

	b.WriteString("</w:r>")
}

func writeRunProps(b *bytes.Buffer, props *RunProps) {
	if props == nil {
		return
	}

	if props.InnerXML != "" {
		b.WriteString("<w:rPr>")
		b.WriteString(props.InnerXML)
		b.WriteString("</w:rPr>")
		return
	}

	var inner bytes.Buffer
	if props.Bold != nil {
		writeToggleElement(&inner, "b", props.Bold.Val)
	}
	if props.Italic != nil {
		writeToggleElement(&inner, "i", props.Italic.Val)
	}
	if props.Underline != nil {
		writeToggleElement(&inner, "u", props.Underline.Val)
	}
	if props.Color != nil {
		writeValElement(&inner, "color", props.Color.Val)
	}
	if props.Size != nil {
		writeValElement(&inner, "sz", props.Size.Val)
	}
	if props.Font != nil {
		inner.WriteString("<w:rFonts")
		writeOptionalAttr(&inner, "w:ascii", props.Font.ASCII)
		writeOptionalAttr(&inner, "w:hAnsi", props.Font.HAnsi)
		writeOptionalAttr(&inner, "w:eastAsia", props.Font.EastAsia)
		inner.WriteString("/>")
	}

	if inner.Len() == 0 {
		return
	}
	b.WriteString("<w:rPr>")
	b.Write(inner.Bytes())
	b.WriteString("</w:rPr>")
}

func writeHyperlink(b *bytes.Buffer, link *Hyperlink) {
	b.WriteString("<w:hyperlink")
	writeOptionalAttr(b, "r:id", link.ID)
	for _, attr := range link.Attrs {
		writeAttr(b, attr)
	}
	b.WriteString(">")

	for i := range link.Runs {
		writeRun(b, &link.Runs[i])
	}

	b.WriteString("</w:hyperlink>")
}

func writeRawChild(b *bytes.Buffer, raw *RawChild) {
	name := elementName(raw.XMLName)
	if name == "" {
		return
	}

	b.WriteString("<" + name)
	for _, attr := range raw.Attrs {
		writeAttr(b, attr)
	}

	if raw.InnerXML == "" {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	b.WriteString(raw.InnerXML)
	b.WriteString("</" + name + ">")
}

func writeTable(b *bytes.Buffer, t *Table) {
	b.WriteString("<w:tbl>")
	writeRawElement(b, "tblPr", t.Properties)
	writeRawElement(b, "tblGrid", t.Grid)

	for i := range t.Rows {
		row := &t.Rows[i]
		b.WriteString("<w:tr>")
		writeRawElement(b, "trPr", row.Properties)
		for j := range row.Cells {
			cell := &row.Cells[j]
			b.WriteString("<w:tc>")
			writeRawElement(b, "tcPr", cell.Properties)
			for k := range cell.Paragraphs {
				writeParagraph(b, &cell.Paragraphs[k])
			}
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}

	b.WriteString("</w:tbl>")
}

// writeRawElement emits a w-namespace element whose content was
// captured verbatim at parse time. Nil means the element was absent.
func writeRawElement(b *bytes.Buffer, local string, raw *RawElement) {
	if raw == nil {
		return
	}
	if raw.InnerXML == "" {
		b.WriteString("<w:" + local + "/>")
		return
	}
	b.WriteString("<w:" + local + ">")
	b.WriteString(raw.InnerXML)
	b.WriteString("</w:" + local + ">")
}

// writeValElement emits the common <w:name w:val="..."/> shape
func writeValElement(b *bytes.Buffer, local, val string) {
	b.WriteString("<w:" + local)
	b.WriteString(` w:val="`)
	_ = xml.EscapeText(b, []byte(val))
	b.WriteString(`"/>`)
}

// writeToggleElement emits a toggle property, valueless when on
func writeToggleElement(b *bytes.Buffer, local, val string) {
	b.WriteString("<w:" + local)
	writeOptionalAttr(b, "w:val", val)
	b.WriteString("/>")
}

func writeOptionalAttr(b *bytes.Buffer, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(" " + name + `="`)
	_ = xml.EscapeText(b, []byte(value))
	b.WriteString(`"`)
}

// writeAttr emits a parsed attribute, restoring its namespace prefix.
// Namespace declarations captured from the source come back as-is.
func writeAttr(b *bytes.Buffer, attr xml.Attr) {
	name := attrName(attr.Name)
	if name == "" {
		return
	}
	b.WriteString(" " + name + `="`)
	_ = xml.EscapeText(b, []byte(attr.Value))
	b.WriteString(`"`)
}

func attrName(name xml.Name) string {
	switch {
	case name.Space == "":
		return name.Local
	case name.Space == "xmlns":
		return "xmlns:" + name.Local
	}
	if prefix, ok := namespacePrefixes[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	return ""
}

func elementName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := namespacePrefixes[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	return ""
}
