package texture

import (
	"errors"
	"fmt"
	"log"
)

// ErrNotFound is reported when none of the candidate paths exist.
var ErrNotFound = errors.New("texture file not found")

// TextureError describes why the white fallback was used instead of the texture file.
type TextureError struct {
	Path string
	Err  error
}

func (e *TextureError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("texture: %v", e.Err)
	}
	return fmt.Sprintf("texture %s: %v", e.Path, e.Err)
}

func (e *TextureError) Unwrap() error {
	return e.Err
}

// Options control where the texture is looked up and how it is decoded.
type Options struct {
	Path         string
	AbsolutePath string
	FlipVertical bool
}

// Setup resolves and decodes the texture. It always returns a usable image: on any failure the error is logged,
// returned as a *TextureError and the 1x1 white image is returned in its place.
func Setup(r *Resolver, opts Options) (*Image, error) {
	res := r.Resolve(opts.Path, opts.AbsolutePath)
	if !res.Found {
		err := &TextureError{Path: opts.Path, Err: ErrNotFound}
		return fallback(err)
	}
	img, err := Load(res.Path, opts.FlipVertical)
	if err != nil {
		return fallback(&TextureError{Path: res.Path, Err: err})
	}
	log.Printf("Texture loaded: %dx%d decoded channels=%d (%s)", img.Width, img.Height, img.Channels, img.Format())
	return img, nil
}

func fallback(err *TextureError) (*Image, error) {
	log.Printf("WARN: failed to load texture: %v", err)
	log.Printf("Continuing with vertex colors only (1x1 white texture)")
	return White(), err
}
