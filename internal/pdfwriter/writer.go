// Package pdfwriter is the PDF Compiler: it turns a *layout.UnifiedLayout
// into a conformant PDF 1.7 byte stream. Object ID allocation follows the
// teacher's fixed-range partitioning (pages, then content streams, then
// fonts, then images), and content-stream compression/xref/trailer writing
// follow the same bytes.Buffer + offset-map approach.
package pdfwriter

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quillforge/docpdf/internal/docmodel"
	"github.com/quillforge/docpdf/internal/layout"
)

// Options configures a Compile call.
type Options struct {
	ArlingtonCompatible bool // adds a FontDescriptor to each standard font for stricter conformance
	WatermarkOpacity    float64
	Info                docmodel.DocumentInfo
	// ImageData maps an ImageLayout.Path to its decoded source bytes. A
	// path with no entry (or whose bytes fail to decode) renders as a
	// placeholder box instead of failing the page.
	ImageData map[string][]byte
}

// Compiler writes UnifiedLayout pages to a PDF byte stream.
type Compiler struct {
	Fonts  *FontRegistry
	Images *ImageRegistry
}

// NewCompiler returns a Compiler with fresh, empty font and image
// registries.
func NewCompiler() *Compiler {
	return &Compiler{Fonts: NewFontRegistry(), Images: NewImageRegistry()}
}

// Compile renders the given layout to a complete PDF document.
func (c *Compiler) Compile(u *layout.UnifiedLayout, opts Options) ([]byte, error) {
	if u == nil || len(u.Pages) == 0 {
		return nil, fmt.Errorf("pdfwriter: cannot compile an empty layout")
	}

	var buf bytes.Buffer
	xref := map[int]int{}

	totalPages := len(u.Pages)
	contentObjectStart := totalPages + 3
	fontObjectStart := contentObjectStart + totalPages

	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	// Render content streams first so the dispatcher has populated the
	// font/image registries before resource dictionaries are written.
	contentStreams := make([][]byte, totalPages)
	for i, page := range u.Pages {
		stream, err := RenderPageContent(page, c.Fonts, c.Images, opts)
		if err != nil {
			return nil, fmt.Errorf("pdfwriter: render page %d: %w", page.Number, err)
		}
		contentStreams[i] = stream
	}

	c.Fonts.Strict = opts.ArlingtonCompatible
	assignments := c.Fonts.AssignObjectIDs(fontObjectStart)
	imageObjectStart := fontObjectStart + assignments.NextFree
	imageAssignments := c.Images.AssignObjectIDs(imageObjectStart)

	// Object 1: Catalog
	xref[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	// Object 2: Pages tree
	xref[2] = buf.Len()
	kids := make([]int, totalPages)
	for i := range kids {
		kids[i] = i + 3
	}
	buf.WriteString(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", formatRefList(kids), totalPages))

	resourceDict := c.buildResourceDict(assignments, imageAssignments, opts)

	for i, page := range u.Pages {
		pageObjID := i + 3
		contentObjID := contentObjectStart + i
		xref[pageObjID] = buf.Len()
		buf.WriteString(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Contents %d 0 R /Resources %s >>\nendobj\n",
			pageObjID, FormatNumber(page.Size.Width), FormatNumber(page.Size.Height), contentObjID, resourceDict,
		))
	}

	for i, stream := range contentStreams {
		objID := contentObjectStart + i
		xref[objID] = buf.Len()
		writeStreamObject(&buf, objID, stream)
	}

	for _, font := range assignments.Fonts {
		xref[font.ObjectID] = buf.Len()
		buf.WriteString(font.Dictionary)
		if font.DescriptorObjectID > 0 {
			xref[font.DescriptorObjectID] = buf.Len()
			buf.WriteString(font.DescriptorDictionary)
		}
		for _, extra := range font.Extra {
			xref[extra.ObjectID] = buf.Len()
			buf.Write(extra.Data)
		}
	}

	for _, img := range imageAssignments.Images {
		xref[img.ObjectID] = buf.Len()
		buf.Write(img.Data)
	}

	infoObjID := imageObjectStart + imageAssignments.NextFree
	xref[infoObjID] = buf.Len()
	buf.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", infoObjID, buildInfoDict(opts.Info)))

	documentID := computeDocumentID(buf.Bytes())

	maxObjID := infoObjID
	for id := range xref {
		if id > maxObjID {
			maxObjID = id
		}
	}
	totalObjects := maxObjID + 1

	xrefStart := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString(fmt.Sprintf("0 %d\n", totalObjects))
	buf.WriteString("0000000000 65535 f \n")
	for id := 1; id < totalObjects; id++ {
		if offset, ok := xref[id]; ok {
			buf.WriteString(fmt.Sprintf("%010d 00000 n \n", offset))
		} else {
			buf.WriteString("0000000000 00000 f \n")
		}
	}

	buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R /ID %s >>\n", totalObjects, infoObjID, documentID))
	buf.WriteString("startxref\n")
	fmt.Fprintf(&buf, "%d\n", xrefStart)
	buf.WriteString("%%EOF\n")

	if buf.Len() == 0 {
		return nil, fmt.Errorf("pdfwriter: produced a zero-byte document")
	}
	return buf.Bytes(), nil
}

func formatRefList(ids []int) string {
	var b bytes.Buffer
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d 0 R", id)
	}
	return b.String()
}

func writeStreamObject(buf *bytes.Buffer, objID int, content []byte) {
	writeStreamObjectWithDict(buf, objID, "", content)
}

func writeStreamObjectWithDict(buf *bytes.Buffer, objID int, extraDict string, content []byte) {
	compressed, usedFlate := compressStream(content)
	dict := fmt.Sprintf("<< /Length %d%s", len(compressed), extraDict)
	if usedFlate {
		dict += " /Filter /FlateDecode"
	}
	dict += " >>"
	fmt.Fprintf(buf, "%d 0 obj\n%s\nstream\n", objID, dict)
	buf.Write(compressed)
	buf.WriteString("\nendstream\nendobj\n")
}

func buildInfoDict(info docmodel.DocumentInfo) string {
	var b bytes.Buffer
	b.WriteString("<< /Producer (docpdf)")
	if info.Title != "" {
		fmt.Fprintf(&b, " /Title %s", EncodeTextString(info.Title))
	}
	if info.Author != "" {
		fmt.Fprintf(&b, " /Author %s", EncodeTextString(info.Author))
	}
	if info.Subject != "" {
		fmt.Fprintf(&b, " /Subject %s", EncodeTextString(info.Subject))
	}
	b.WriteString(" >>")
	return b.String()
}

// computeDocumentID derives the content-hash half of the /ID pair from the
// bytes written so far (md5, as the teacher does) and pairs it with a
// fresh random half via google/uuid, instead of hashing two different
// random sources the way the teacher's GenerateDocumentID does.
func computeDocumentID(contentSoFar []byte) string {
	sum := md5.Sum(contentSoFar)
	random := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("[<%x><%s>]", sum, random)
}
