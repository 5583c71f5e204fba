package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math/bits"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format is the pixel layout of the uploaded texture, derived from the channel count of the decoded image.
type Format int

const (
	FormatR8 Format = iota
	FormatRGB8
	FormatRGBA8
)

func (f Format) String() string {
	switch f {
	case FormatR8:
		return "R8"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatForChannels maps 1, 3 and 4 channels to the matching format.
func FormatForChannels(channels int) (Format, error) {
	switch channels {
	case 1:
		return FormatR8, nil
	case 3:
		return FormatRGB8, nil
	case 4:
		return FormatRGBA8, nil
	default:
		return 0, fmt.Errorf("unsupported channel count %d", channels)
	}
}

// Image is a tightly packed 8 bit per channel pixel buffer. Rows are stored in upload order: when loaded with
// flipping enabled the first row holds the bottom of the source picture.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

func (img *Image) Format() Format {
	f, err := FormatForChannels(img.Channels)
	if err != nil {
		return FormatRGBA8
	}
	return f
}

func (img *Image) ByteSize() int {
	return img.Width * img.Height * img.Channels
}

// White returns a 1x1 opaque white RGBA image, used whenever the texture cannot be loaded.
func White() *Image {
	return &Image{Width: 1, Height: 1, Channels: 4, Pix: []byte{255, 255, 255, 255}}
}

// IsWhiteFallback reports whether img is the 1x1 white fallback.
func (img *Image) IsWhiteFallback() bool {
	if img.Width != 1 || img.Height != 1 || img.Channels != 4 || len(img.Pix) != 4 {
		return false
	}
	return img.Pix[0] == 255 && img.Pix[1] == 255 && img.Pix[2] == 255 && img.Pix[3] == 255
}

// ExpandRGBA returns a 4 channel copy, filling missing color channels from the gray value and alpha with 255.
func (img *Image) ExpandRGBA() *Image {
	if img.Channels == 4 {
		return img
	}
	n := img.Width * img.Height
	out := &Image{Width: img.Width, Height: img.Height, Channels: 4, Pix: make([]byte, n*4)}
	for i := 0; i < n; i++ {
		src := img.Pix[i*img.Channels : (i+1)*img.Channels]
		dst := out.Pix[i*4 : i*4+4]
		switch img.Channels {
		case 1:
			dst[0], dst[1], dst[2] = src[0], src[0], src[0]
		case 3:
			copy(dst, src)
		}
		dst[3] = 255
	}
	return out
}

// MipLevels returns the length of the full mip chain down to 1x1.
func MipLevels(w, h int) uint32 {
	m := w
	if h > m {
		m = h
	}
	if m < 1 {
		return 1
	}
	return uint32(bits.Len(uint(m)))
}

// Load reads and decodes the image file at path.
func Load(path string, flip bool) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(bufio.NewReader(f), flip)
}

// Decode decodes any registered image format into an 8 bit buffer with 1, 3 or 4 channels.
func Decode(r io.Reader, flip bool) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decode %s image: empty bounds %v", format, b)
	}
	ch := channelsOf(src)
	img := &Image{Width: b.Dx(), Height: b.Dy(), Channels: ch, Pix: make([]byte, b.Dx()*b.Dy()*ch)}

	for y := 0; y < img.Height; y++ {
		dstRow := y
		if flip {
			dstRow = img.Height - 1 - y
		}
		row := img.Pix[dstRow*img.Width*ch : (dstRow+1)*img.Width*ch]
		for x := 0; x < img.Width; x++ {
			px := row[x*ch : (x+1)*ch]
			c := src.At(b.Min.X+x, b.Min.Y+y)
			if ch == 1 {
				px[0] = color.GrayModel.Convert(c).(color.Gray).Y
				continue
			}
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			px[0], px[1], px[2] = n.R, n.G, n.B
			if ch == 4 {
				px[3] = n.A
			}
		}
	}
	return img, nil
}

// channelsOf counts the channels worth uploading, not the ones stored in the file: an opaque alpha channel is dropped.
func channelsOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}
