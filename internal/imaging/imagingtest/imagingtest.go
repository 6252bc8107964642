// Package imagingtest generates synthetic images for tests.
package imagingtest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"sort"
)

// Uniform returns a w x h image filled with c.
func Uniform(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// VerticalGradient returns a gray image fading linearly from top to bottom.
func VerticalGradient(w, h int, top, bottom uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / float64(h-1)
		v := uint8(float64(top) + (float64(bottom)-float64(top))*t + 0.5)
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// HorizontalGradient returns a gray image fading linearly from left to right.
func HorizontalGradient(w, h int, left, right uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		t := float64(x) / float64(w-1)
		v := uint8(float64(left) + (float64(right)-float64(left))*t + 0.5)
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// SplitHalves returns an image whose left half is left and right half is
// right, with a hard edge between them.
func SplitHalves(w, h int, left, right color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, left)
			} else {
				img.Set(x, y, right)
			}
		}
	}
	return img
}

// Checkerboard returns a black and white checkerboard with square cells of
// the given size.
func Checkerboard(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// Noise returns a gray image of mean base with uniform noise of the given
// amplitude, from a fixed seed.
func Noise(w, h int, base, amplitude uint8, seed int64) *image.RGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := int(base) + rng.Intn(2*int(amplitude)+1) - int(amplitude)
			v = max(0, min(255, v))
			img.Set(x, y, color.RGBA{uint8(v), uint8(v), uint8(v), 255})
		}
	}
	return img
}

// Vignette returns a gray image that is brightest at the center and falls
// off linearly to edge at the corners.
func Vignette(w, h int, center, edge uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	maxR := cx*cx + cy*cy
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			t := (dx*dx + dy*dy) / maxR
			v := uint8(float64(center) + (float64(edge)-float64(center))*t + 0.5)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

// PNG encodes img as PNG.
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// JPEG encodes img as a high quality JPEG.
func JPEG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Exif describes the tags WithExif embeds. Zero fields are omitted.
type Exif struct {
	Make, Model, Lens string

	// Rationals as numerator/denominator pairs.
	FocalLength  [2]uint32
	FNumber      [2]uint32
	ExposureTime [2]uint32

	ISO             uint16
	FocalLength35mm uint16
}

// EXIF tag numbers and TIFF field types.
const (
	tagMake            = 0x010F
	tagModel           = 0x0110
	tagExifIFD         = 0x8769
	tagExposureTime    = 0x829A
	tagFNumber         = 0x829D
	tagISO             = 0x8827
	tagFocalLength     = 0x920A
	tagFocalLength35mm = 0xA405
	tagLensModel       = 0xA434

	typeASCII    = 2
	typeShort    = 3
	typeLong     = 4
	typeRational = 5
)

// WithExif encodes img as JPEG and inserts an APP1 EXIF segment carrying e
// right after the start-of-image marker.
func WithExif(img image.Image, e Exif) []byte {
	jpg := JPEG(img)
	payload := append([]byte("Exif\x00\x00"), ExifTIFF(e)...)

	seg := make([]byte, 4, 4+len(payload))
	seg[0], seg[1] = 0xFF, 0xE1
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	return append(out, jpg[2:]...)
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// ExifTIFF builds a little-endian TIFF block with IFD0 (make, model, EXIF
// pointer) and an EXIF sub-IFD holding the remaining fields.
func ExifTIFF(e Exif) []byte {
	le := binary.LittleEndian

	ascii := func(tag uint16, s string) ifdEntry {
		d := append([]byte(s), 0)
		return ifdEntry{tag, typeASCII, uint32(len(d)), d}
	}
	rational := func(tag uint16, v [2]uint32) ifdEntry {
		d := make([]byte, 8)
		le.PutUint32(d, v[0])
		le.PutUint32(d[4:], v[1])
		return ifdEntry{tag, typeRational, 1, d}
	}
	short := func(tag uint16, v uint16) ifdEntry {
		d := make([]byte, 2)
		le.PutUint16(d, v)
		return ifdEntry{tag, typeShort, 1, d}
	}

	var ifd0, sub []ifdEntry
	if e.Make != "" {
		ifd0 = append(ifd0, ascii(tagMake, e.Make))
	}
	if e.Model != "" {
		ifd0 = append(ifd0, ascii(tagModel, e.Model))
	}
	if e.ExposureTime[1] != 0 {
		sub = append(sub, rational(tagExposureTime, e.ExposureTime))
	}
	if e.FNumber[1] != 0 {
		sub = append(sub, rational(tagFNumber, e.FNumber))
	}
	if e.ISO != 0 {
		sub = append(sub, short(tagISO, e.ISO))
	}
	if e.FocalLength[1] != 0 {
		sub = append(sub, rational(tagFocalLength, e.FocalLength))
	}
	if e.FocalLength35mm != 0 {
		sub = append(sub, short(tagFocalLength35mm, e.FocalLength35mm))
	}
	if e.Lens != "" {
		sub = append(sub, ascii(tagLensModel, e.Lens))
	}

	ifdSize := func(n int) int { return 2 + 12*n + 4 }

	// IFD0 carries one extra entry pointing at the sub-IFD.
	ifd0Offset := 8
	subOffset := ifd0Offset + ifdSize(len(ifd0)+1)
	dataOffset := subOffset + ifdSize(len(sub))

	ptr := make([]byte, 4)
	le.PutUint32(ptr, uint32(subOffset))
	ifd0 = append(ifd0, ifdEntry{tagExifIFD, typeLong, 1, ptr})

	buf := make([]byte, dataOffset)
	copy(buf, "II")
	le.PutUint16(buf[2:], 42)
	le.PutUint32(buf[4:], uint32(ifd0Offset))

	writeIFD := func(at int, entries []ifdEntry) {
		sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
		le.PutUint16(buf[at:], uint16(len(entries)))
		p := at + 2
		for _, en := range entries {
			le.PutUint16(buf[p:], en.tag)
			le.PutUint16(buf[p+2:], en.typ)
			le.PutUint32(buf[p+4:], en.count)
			if len(en.data) <= 4 {
				copy(buf[p+8:p+12], en.data)
			} else {
				if len(buf)%2 == 1 {
					buf = append(buf, 0)
				}
				le.PutUint32(buf[p+8:], uint32(len(buf)))
				buf = append(buf, en.data...)
			}
			p += 12
		}
		le.PutUint32(buf[p:], 0)
	}
	writeIFD(ifd0Offset, ifd0)
	writeIFD(subOffset, sub)
	return buf
}
