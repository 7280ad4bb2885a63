package entrymeta

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	fullMaxWidth  = 1200 // full size
	thumbMaxWidth = 800  // post-thumbnail size
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// processedImage is an upload decoded once and encoded at every size.
type processedImage struct {
	meta  Image
	full  []byte
	thumb []byte
}

// scaleTo returns img shrunk to maxWidth, keeping the aspect ratio. Narrower
// images are returned unchanged.
func scaleTo(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxWidth {
		return img
	}
	newH := max(h*maxWidth/w, 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// processImage decodes an upload and produces the full and post-thumbnail
// JPEG variants.
func processImage(src io.Reader, originalName, alt string) (processedImage, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return processedImage{}, fmt.Errorf("decode image: %w", err)
	}

	full := scaleTo(img, fullMaxWidth)
	thumb := scaleTo(full, thumbMaxWidth)
	fullData, err := encodeJPEG(full)
	if err != nil {
		return processedImage{}, err
	}
	thumbData, err := encodeJPEG(thumb)
	if err != nil {
		return processedImage{}, err
	}

	base := slugifyFilename(originalName)
	if base == "" {
		base = "image"
	}
	return processedImage{
		meta: Image{
			Filename:      base + ".jpg",
			ThumbFilename: base + "-thumb.jpg",
			OriginalName:  originalName,
			Alt:           strings.TrimSpace(alt),
			Width:         full.Bounds().Dx(),
			Height:        full.Bounds().Dy(),
			ThumbWidth:    thumb.Bounds().Dx(),
			ThumbHeight:   thumb.Bounds().Dy(),
			Size:          len(fullData),
			UploadedAt:    time.Now().UTC().Format(time.RFC3339),
		},
		full:  fullData,
		thumb: thumbData,
	}, nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	return Slugify(strings.TrimSuffix(name, filepath.Ext(name)))
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.staticDir, uploadsSubdir)
}

// taken reports whether name is on disk or recorded in the store.
func (a *App) taken(name string) (bool, error) {
	if _, err := os.Stat(filepath.Join(a.uploadsDir(), name)); err == nil {
		return true, nil
	}
	return a.Store.ImageExists(name)
}

// ensureUniqueFilename appends a counter until both variant names are free.
func (a *App) ensureUniqueFilename(img *Image) error {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	for n := 1; ; n++ {
		stem := base
		if n > 1 {
			stem = fmt.Sprintf("%s-%d", base, n)
		}
		full, thumb := stem+".jpg", stem+"-thumb.jpg"
		fullTaken, err := a.taken(full)
		if err != nil {
			return err
		}
		thumbTaken, err := a.taken(thumb)
		if err != nil {
			return err
		}
		if !fullTaken && !thumbTaken {
			img.Filename, img.ThumbFilename = full, thumb
			return nil
		}
	}
}

// handleThumbnailUpload stores an uploaded image and makes it the post's
// featured image.
func (a *App) handleThumbnailUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if _, err := a.Store.GetPostAny(slug); err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.notFound(c)
		}
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	p, err := processImage(src, file.Filename, c.FormValue("alt"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	if err := a.ensureUniqueFilename(&p.meta); err != nil {
		return err
	}

	dir := a.uploadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, p.meta.Filename), p.full, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, p.meta.ThumbFilename), p.thumb, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}

	id, err := a.Store.SaveImage(p.meta)
	if err != nil {
		return err
	}
	if err := a.Store.SetThumbnail(slug, id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	c.Logger().Infof("featured image %s set on %s", p.meta.Filename, slug)
	return c.Redirect(http.StatusSeeOther, "/admin/post/"+slug+"/")
}

// handleImageDelete removes an image and its variant. Posts using it lose
// their featured image.
func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	for _, img := range images {
		if img.Filename != filename {
			continue
		}
		_ = os.Remove(filepath.Join(a.uploadsDir(), img.Filename))
		if img.ThumbFilename != "" {
			_ = os.Remove(filepath.Join(a.uploadsDir(), img.ThumbFilename))
		}
		if err := a.Store.DeleteImage(filename); err != nil {
			return err
		}
		a.Cache.Invalidate()
		return c.NoContent(http.StatusNoContent)
	}
	return a.notFound(c)
}
