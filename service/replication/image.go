package replication

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ImageCopier duplicates an item's reference image for a new serial and
// writes a webp thumbnail next to it. A failed thumbnail is logged but does
// not fail the copy; a failed copy is recorded on the job without failing the
// duplicate itself.
type ImageCopier struct {
	mediaDir string
}

func NewImageCopier(mediaDir string) *ImageCopier {
	if mediaDir == "" {
		mediaDir = "media/equipment"
	}
	return &ImageCopier{mediaDir: mediaDir}
}

// CopyForDuplicate copies srcPath into the media dir under the new serial and
// returns the new image path.
func (c *ImageCopier) CopyForDuplicate(srcPath, serial string) (string, error) {
	img, err := imaging.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open source image %s: %w", srcPath, err)
	}
	if err := os.MkdirAll(c.mediaDir, 0755); err != nil {
		return "", fmt.Errorf("media dir %s: %w", c.mediaDir, err)
	}

	ext := filepath.Ext(srcPath)
	if ext == "" {
		ext = ".jpg"
	}
	dst := filepath.Join(c.mediaDir, fileSafe(serial)+ext)
	if err := imaging.Save(img, dst); err != nil {
		return "", fmt.Errorf("save image copy %s: %w", dst, err)
	}

	if err := c.writeThumbnail(img, fileSafe(serial)); err != nil {
		log.Printf("replication: thumbnail for %s failed: %v", serial, err)
	}
	return dst, nil
}

// writeThumbnail renders a 256px-wide webp preview for grid views.
func (c *ImageCopier) writeThumbnail(img image.Image, name string) error {
	thumb := imaging.Resize(img, 256, 0, imaging.Lanczos)
	path := filepath.Join(c.mediaDir, name+"_thumb.webp")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return webp.Encode(f, thumb, &webp.Options{Quality: 80})
}

func fileSafe(serial string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, serial)
}
