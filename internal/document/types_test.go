package document

import (
	"testing"
)

func textRun(text string) Run {
	return Run{Text: &Text{Text: text}}
}

func imageRun(embedID string) Run {
	return Run{Drawing: &Drawing{
		InnerXML: `<wp:inline><a:graphic><pic:pic><a:blip r:embed="` + embedID + `"/></pic:pic></a:graphic></wp:inline>`,
	}}
}

func runPtr(r Run) *Run {
	return &r
}

func paragraphOf(runs ...Run) *Paragraph {
	para := &Paragraph{}
	for i := range runs {
		para.Children = append(para.Children, ParagraphChild{Run: runPtr(runs[i])})
	}
	return para
}

func TestNewTextUnit(t *testing.T) {
	t.Run("CapturesTextAndIndex", func(t *testing.T) {
		para := paragraphOf(textRun("Hello "), textRun("world"))

		unit := NewTextUnit(7, para)

		if unit.Index != 7 {
			t.Errorf("Expected index 7, got %d", unit.Index)
		}
		if unit.Text != "Hello world" {
			t.Errorf("Expected %q, got %q", "Hello world", unit.Text)
		}
	})

	t.Run("BoldIfAnyRunIsBold", func(t *testing.T) {
		para := paragraphOf(
			textRun("plain "),
			Run{
				Properties: &RunProps{Bold: &Bold{}},
				Text:       &Text{Text: "bold"},
			},
		)

		unit := NewTextUnit(0, para)

		if !unit.IsBold {
			t.Error("Expected IsBold when any run is bold")
		}
		if unit.IsItalic {
			t.Error("Did not expect IsItalic")
		}
	})

	t.Run("ItalicIfAnyRunIsItalic", func(t *testing.T) {
		para := paragraphOf(Run{
			Properties: &RunProps{Italic: &Italic{}},
			Text:       &Text{Text: "slanted"},
		})

		unit := NewTextUnit(0, para)

		if !unit.IsItalic {
			t.Error("Expected IsItalic when any run is italic")
		}
	})

	t.Run("CapturesAlignmentAndStyle", func(t *testing.T) {
		para := paragraphOf(textRun("Title"))
		para.Properties = &ParagraphProps{
			Style: &ParagraphStyle{Val: "Heading1"},
			Align: &ParagraphAlign{Val: "center"},
		}

		unit := NewTextUnit(0, para)

		if unit.Alignment != "center" {
			t.Errorf("Expected alignment center, got %q", unit.Alignment)
		}
		if unit.StyleName != "Heading1" {
			t.Errorf("Expected style Heading1, got %q", unit.StyleName)
		}
	})

	t.Run("DefaultStyleIsNormal", func(t *testing.T) {
		unit := NewTextUnit(0, paragraphOf(textRun("x")))

		if unit.StyleName != "Normal" {
			t.Errorf("Expected style Normal, got %q", unit.StyleName)
		}
	})

	t.Run("DetectsImageAndReference", func(t *testing.T) {
		para := paragraphOf(textRun("Figure: "), imageRun("rId5"))

		unit := NewTextUnit(0, para)

		if !unit.HasImage {
			t.Error("Expected HasImage")
		}
		if unit.ImageRef != "rId5" {
			t.Errorf("Expected image ref rId5, got %q", unit.ImageRef)
		}
	})

	t.Run("KeepsFirstImageReferenceOnly", func(t *testing.T) {
		para := paragraphOf(imageRun("rId3"), imageRun("rId9"))

		unit := NewTextUnit(0, para)

		if unit.ImageRef != "rId3" {
			t.Errorf("Expected first image ref rId3, got %q", unit.ImageRef)
		}
	})

	t.Run("EmptyImageBearingParagraphIsKept", func(t *testing.T) {
		para := paragraphOf(imageRun("rId2"))

		unit := NewTextUnit(4, para)

		if !unit.HasImage {
			t.Error("Expected HasImage")
		}
		if !unit.IsEmpty() {
			t.Error("Expected empty text")
		}
	})

	t.Run("IncludesHyperlinkText", func(t *testing.T) {
		para := &Paragraph{Children: []ParagraphChild{
			{Run: runPtr(textRun("See "))},
			{Hyperlink: &Hyperlink{ID: "rId5", Runs: []Run{textRun("our website")}}},
			{Run: runPtr(textRun(" for details."))},
		}}

		unit := NewTextUnit(0, para)

		if unit.Text != "See our website for details." {
			t.Errorf("Expected hyperlink text in order, got %q", unit.Text)
		}
	})
}

func TestParagraphPlainText(t *testing.T) {
	t.Run("JoinsRunTexts", func(t *testing.T) {
		para := paragraphOf(textRun("a"), textRun("b"), textRun("c"))
		if got := para.PlainText(); got != "abc" {
			t.Errorf("Expected %q, got %q", "abc", got)
		}
	})

	t.Run("TabsAndBreaks", func(t *testing.T) {
		para := paragraphOf(
			textRun("Line 1"),
			Run{Tab: &Tab{}},
			textRun("Line 2"),
			Run{Break: &Break{}},
			textRun("Line 3"),
		)

		expected := "Line 1\tLine 2\nLine 3"
		if got := para.PlainText(); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
	})

	t.Run("DrawingsContributeNoText", func(t *testing.T) {
		para := paragraphOf(imageRun("rId1"), textRun("caption"))
		if got := para.PlainText(); got != "caption" {
			t.Errorf("Expected %q, got %q", "caption", got)
		}
	})

	t.Run("UnmodeledChildrenContributeNoText", func(t *testing.T) {
		para := &Paragraph{Children: []ParagraphChild{
			{Raw: &RawChild{}},
			{Run: runPtr(textRun("kept"))},
		}}
		if got := para.PlainText(); got != "kept" {
			t.Errorf("Expected %q, got %q", "kept", got)
		}
	})
}

func TestDrawingEmbedID(t *testing.T) {
	t.Run("ExtractsEmbedID", func(t *testing.T) {
		d := &Drawing{InnerXML: `<a:blip r:embed="rId42"/>`}
		if got := d.EmbedID(); got != "rId42" {
			t.Errorf("Expected rId42, got %q", got)
		}
	})

	t.Run("NoBlipYieldsEmpty", func(t *testing.T) {
		d := &Drawing{InnerXML: `<wp:inline/>`}
		if got := d.EmbedID(); got != "" {
			t.Errorf("Expected empty ref, got %q", got)
		}
	})

	t.Run("NilDrawing", func(t *testing.T) {
		var d *Drawing
		if got := d.EmbedID(); got != "" {
			t.Errorf("Expected empty ref, got %q", got)
		}
	})
}
