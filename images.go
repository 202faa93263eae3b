package vitrine

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// Image describes an uploaded header image as served to the admin UI.
type Image struct {
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Size       int    `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

// processImage decodes an upload, scales it down to maxImageWidth if wider,
// and re-encodes it as JPEG.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		Filename:   slugifyFilename(originalName) + ".jpg",
		Width:      w,
		Height:     h,
		Size:       buf.Len(),
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

func slugifyFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	slug := Slugify(base)
	if slug == "" {
		slug = "image"
	}
	return slug
}

func (a *App) uploadsDir() string {
	return filepath.Join(a.Config.StaticDir, uploadsSubdir)
}

func (a *App) imageURL(filename string) string {
	return "/" + strings.Join([]string{"public", uploadsSubdir, filename}, "/")
}

// ensureUniqueFilename appends a counter until the name is free on disk.
func (a *App) ensureUniqueFilename(img *Image) {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(a.uploadsDir(), candidate)); os.IsNotExist(err) {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
}

func (a *App) handleImageUpload(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no image file provided")
	}
	if file.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "file too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid image")
	}
	a.ensureUniqueFilename(&img)
	img.URL = a.imageURL(img.Filename)

	if err := os.MkdirAll(a.uploadsDir(), 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.uploadsDir(), img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}

	return c.JSON(http.StatusCreated, img)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" || filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename required")
	}
	if err := os.Remove(filepath.Join(a.uploadsDir(), filename)); err != nil {
		if os.IsNotExist(err) {
			return echo.NewHTTPError(http.StatusNotFound, "image not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

func (a *App) handleImageList(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}

	entries, err := os.ReadDir(a.uploadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusOK, echo.Map{"images": []Image{}})
		}
		return err
	}

	images := make([]Image, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, Image{
			Filename:   entry.Name(),
			URL:        a.imageURL(entry.Name()),
			Size:       int(info.Size()),
			UploadedAt: info.ModTime().UTC().Format(time.RFC3339),
		})
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].UploadedAt > images[j].UploadedAt
	})
	return c.JSON(http.StatusOK, echo.Map{"images": images})
}
