package pdfwriter

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// decodedImage holds an image already converted to PDF-ready bytes, so
// the same source image registered twice only gets decoded once.
type decodedImage struct {
	alias       string
	width       int
	height      int
	colorSpace  string
	bitsPerComp int
	filter      string // "" (raw, needs FlateDecode at write time), "/DCTDecode" (pass JPEG through)
	data        []byte
}

// ImageRegistry decodes and deduplicates images referenced by a
// document. Two references to byte-identical image data (the common case
// for a logo repeated in a running header) share one PDF XObject.
type ImageRegistry struct {
	byHash map[uint64]*decodedImage
	order  []uint64
	seq    int
}

// NewImageRegistry returns an empty registry.
func NewImageRegistry() *ImageRegistry {
	return &ImageRegistry{byHash: make(map[uint64]*decodedImage)}
}

// AssignedImage is an image that has been given a PDF object ID and
// rendered to a complete "N 0 obj ... endobj" byte sequence.
type AssignedImage struct {
	Alias    string
	ObjectID int
	Data     []byte
}

// ImageAssignments is the result of walking an ImageRegistry and handing
// every distinct image an object ID.
type ImageAssignments struct {
	NextFree int
	Images   []AssignedImage
}

// Register decodes raw image bytes (PNG or JPEG) and returns a resource
// alias for it, reusing a prior registration if the same bytes were seen
// before.
func (r *ImageRegistry) Register(raw []byte) (string, error) {
	hash := fnv1aHash(raw)
	if existing, ok := r.byHash[hash]; ok {
		return existing.alias, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("pdfwriter: decode image: %w", err)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	r.seq++
	alias := fmt.Sprintf("Im%d", r.seq)

	d := &decodedImage{alias: alias, width: width, height: height, colorSpace: "/DeviceRGB", bitsPerComp: 8}

	if format == "jpeg" {
		d.filter = "/DCTDecode"
		d.data = raw
	} else {
		rgb := make([]byte, width*height*3)
		hasAlpha := imageHasAlpha(img)
		if hasAlpha {
			fillRGBBlendWhite(img, rgb)
		} else {
			fillRGB(img, rgb)
		}
		d.data = rgb
	}

	r.byHash[hash] = d
	r.order = append(r.order, hash)
	return alias, nil
}

// AssignObjectIDs allocates one object ID per distinct registered image
// and renders its XObject dictionary and stream.
func (r *ImageRegistry) AssignObjectIDs(start int) ImageAssignments {
	next := start
	var images []AssignedImage
	for _, hash := range r.order {
		d := r.byHash[hash]
		images = append(images, AssignedImage{Alias: d.alias, ObjectID: next, Data: renderImageObject(next, d)})
		next++
	}
	return ImageAssignments{NextFree: next - start, Images: images}
}

func renderImageObject(objID int, d *decodedImage) []byte {
	data := d.data
	filter := d.filter
	if filter == "" {
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		_, _ = w.Write(data)
		_ = w.Close()
		data = buf.Bytes()
		filter = "/FlateDecode"
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "%d 0 obj\n<< /Type /XObject /Subtype /Image /Width %d /Height %d "+
		"/ColorSpace %s /BitsPerComponent %d /Filter %s /Length %d >>\nstream\n",
		objID, d.width, d.height, d.colorSpace, d.bitsPerComp, filter, len(data))
	out.Write(data)
	out.WriteString("\nendstream\nendobj\n")
	return out.Bytes()
}

func imageHasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.RGBA64, *image.NRGBA64:
		return true
	default:
		return false
	}
}

func fillRGB(img image.Image, rgb []byte) {
	bounds := img.Bounds()
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rgb[idx] = byte(r >> 8)
			rgb[idx+1] = byte(g >> 8)
			rgb[idx+2] = byte(b >> 8)
			idx += 3
		}
	}
}

// fillRGBBlendWhite flattens a transparent image onto a white background,
// since PDF's simple Image XObject has no alpha channel of its own.
func fillRGBBlendWhite(img image.Image, rgb []byte) {
	bounds := img.Bounds()
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			r8, g8, b8, a8 := r>>8, g>>8, b>>8, a>>8
			switch a8 {
			case 255:
				rgb[idx], rgb[idx+1], rgb[idx+2] = byte(r8), byte(g8), byte(b8)
			case 0:
				rgb[idx], rgb[idx+1], rgb[idx+2] = 255, 255, 255
			default:
				invA := 255 - a8
				white := 255 * invA
				rgb[idx] = byte((r8*a8 + white) / 255)
				rgb[idx+1] = byte((g8*a8 + white) / 255)
				rgb[idx+2] = byte((b8*a8 + white) / 255)
			}
			idx += 3
		}
	}
}

// fnv1aHash hashes raw bytes for image-content deduplication.
func fnv1aHash(data []byte) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	hash := uint64(offset64)
	for _, b := range data {
		hash ^= uint64(b)
		hash *= prime64
	}
	return hash
}
