package resource

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type textureImpl struct {
	mu *sync.Mutex

	name string
	path string
	dirs DirectoryManager

	source image.Image

	pixels []byte
	width  int
	height int
	loaded bool
}

// Texture is a 2D image resource decoded to tightly packed RGBA8 pixels.
// Load and Unload may be called from any goroutine.
type Texture interface {
	// Name returns the texture identifier (the file name for file textures).
	//
	// Returns:
	//   - string: the name
	Name() string

	// Load decodes the texture. Calling Load on a loaded texture is a no-op.
	//
	// Returns:
	//   - error: if the file cannot be resolved, opened or decoded
	Load() error

	// Unload drops the decoded pixels. File textures can be loaded again afterwards.
	Unload()

	// Loaded reports whether decoded pixels are available.
	//
	// Returns:
	//   - bool: true after a successful Load
	Loaded() bool

	// Pixels returns the RGBA8 pixel data, row-major with no row padding.
	//
	// Returns:
	//   - []byte: the pixels, or nil when not loaded
	Pixels() []byte

	// Width returns the width in pixels (0 when not loaded).
	Width() int

	// Height returns the height in pixels (0 when not loaded).
	Height() int
}

var _ Texture = &textureImpl{}

// NewTextureFile creates a texture backed by an image file. PNG, JPEG, GIF, BMP, TIFF and WebP are decoded.
// Nothing is read until Load is called.
//
// Parameters:
//   - path: file path; relative paths resolve through the DirectoryManager when one is set
//   - options: functional options for texture configuration
//
// Returns:
//   - Texture: the texture
func NewTextureFile(path string, options ...TextureBuilderOption) Texture {
	t := &textureImpl{
		mu:   &sync.Mutex{},
		name: path,
		path: path,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// NewTextureImage creates a texture from an in-memory image.
//
// Parameters:
//   - name: identifier for the texture
//   - img: the source image
//
// Returns:
//   - Texture: the texture
func NewTextureImage(name string, img image.Image) Texture {
	return &textureImpl{
		mu:     &sync.Mutex{},
		name:   name,
		source: img,
	}
}

func (t *textureImpl) Name() string {
	return t.name
}

func (t *textureImpl) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loaded {
		return nil
	}

	img := t.source
	if img == nil {
		decoded, err := t.decodeFile()
		if err != nil {
			return err
		}
		img = decoded
	}

	rgba := toRGBA(img)
	t.pixels = rgba.Pix
	t.width = rgba.Rect.Dx()
	t.height = rgba.Rect.Dy()
	t.loaded = true
	return nil
}

func (t *textureImpl) decodeFile() (image.Image, error) {
	path := t.path
	if t.dirs != nil {
		resolved, err := t.dirs.FindFileInPath(path)
		if err != nil {
			return nil, fmt.Errorf("load texture: %w", err)
		}
		path = resolved
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", t.name, err)
	}
	return img, nil
}

func (t *textureImpl) Unload() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pixels = nil
	t.width, t.height = 0, 0
	t.loaded = false
}

func (t *textureImpl) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

func (t *textureImpl) Pixels() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pixels
}

func (t *textureImpl) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

func (t *textureImpl) Height() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.height
}

// toRGBA converts any image into a zero-origin RGBA image with a packed stride.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
