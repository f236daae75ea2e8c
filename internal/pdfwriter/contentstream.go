package pdfwriter

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

// compressStream flate-compresses a content stream and reports whether
// the compressed form was actually used. A stream small enough that
// compression overhead would grow it (rare, but real for near-empty
// pages) is kept uncompressed, matching the teacher's trial-compress
// approach.
func compressStream(content []byte) ([]byte, bool) {
	if len(content) == 0 {
		return content, false
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return content, false
	}
	if err := w.Close(); err != nil {
		return content, false
	}
	if buf.Len() >= len(content) {
		return content, false
	}
	return buf.Bytes(), true
}

// buildResourceDict assembles the shared /Resources dictionary every page
// references: every registered font under its alias and every registered
// image XObject under its alias.
func (c *Compiler) buildResourceDict(fonts FontAssignments, images ImageAssignments, opts Options) string {
	var b strings.Builder
	b.WriteString("<< /ProcSet [/PDF /Text /ImageB /ImageC /ImageI]")

	if len(fonts.Fonts) > 0 {
		b.WriteString(" /Font << ")
		for _, f := range fonts.Fonts {
			fmt.Fprintf(&b, "/%s %d 0 R ", f.Alias, f.ObjectID)
		}
		b.WriteString(">>")
	}

	if len(images.Images) > 0 {
		b.WriteString(" /XObject << ")
		for _, img := range images.Images {
			fmt.Fprintf(&b, "/%s %d 0 R ", img.Alias, img.ObjectID)
		}
		b.WriteString(">>")
	}

	b.WriteString(" " + watermarkExtGStateDict(opts.WatermarkOpacity))
	b.WriteString(" >>")
	return b.String()
}

// watermarkExtGStateDict carries the fixed opacity levels a watermark can
// render at (images 0.5, vml_shape 0.3, everything else 0.35, per the
// band-classification opacity policy). A caller-supplied override
// replaces all three with one custom value rather than layering a second
// set of names the dispatcher would need to choose between.
func watermarkExtGStateDict(override float64) string {
	imgCA, vmlCA, otherCA := 0.5, 0.3, 0.35
	if override > 0 {
		imgCA, vmlCA, otherCA = override, override, override
	}
	return fmt.Sprintf(
		"/ExtGState << /GSImg << /ca %s /CA %s >> /GSVml << /ca %s /CA %s >> /GSOther << /ca %s /CA %s >> >>",
		FormatNumber(imgCA), FormatNumber(imgCA), FormatNumber(vmlCA), FormatNumber(vmlCA), FormatNumber(otherCA), FormatNumber(otherCA),
	)
}
