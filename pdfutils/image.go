package pdfutils

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

func CheckImageFormat(format string) error {
	switch format {
	case "jpg", "png":
		return nil
	}

	return fmt.Errorf("unsupported image format %q", format)
}

func EncodeImage(w io.Writer, img image.Image, format string, quality int) error {
	if format == "jpg" {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}

	return png.Encode(w, img)
}

// WriteImage encodes img to name, creating parent directories as needed.
func WriteImage(img image.Image, name string, format string, quality int) error {
	if err := CheckImageFormat(format); err != nil {
		return err
	}

	if dir := filepath.Dir(name); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	fd, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := EncodeImage(fd, img, format, quality); err != nil {
		fd.Close()
		return err
	}

	return fd.Close()
}

// PageImagePath names the exported image of a page, 1-based like the page label.
func PageImagePath(dir, baseName string, pageIndex int, format string) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%d.%s", baseName, pageIndex+1, format))
}
