package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
)

// JPEGQuality is the quality used for every JPEG this package writes.
const JPEGQuality = 95

// EncodeBase64 encodes img as "png" or "jpeg" and returns the standard
// base64 text of the encoded bytes, as embedded in MCP image content.
func EncodeBase64(img image.Image, format string) (string, error) {
	var f imaging.Format
	switch strings.ToLower(format) {
	case "", "png":
		f = imaging.PNG
	case "jpeg", "jpg":
		f = imaging.JPEG
	default:
		return "", fmt.Errorf("unsupported output format %q (want png or jpeg)", format)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, f, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// MIMEType returns the MIME type of an EncodeBase64 format.
func MIMEType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// encoderFor picks the file encoder matching the extension of path.
func encoderFor(path string) (imgio.Encoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(JPEGQuality), nil
	case ".bmp":
		return imgio.BMPEncoder(), nil
	}
	return nil, fmt.Errorf("unsupported output extension %q", filepath.Ext(path))
}

// SaveImage writes img to path, choosing PNG, JPEG or BMP by extension.
// Missing parent directories are created.
func SaveImage(path string, img image.Image) error {
	enc, err := encoderFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// ResultFileName names the output of operation for sourcePath as
// "<operation>_<basename>". Sources whose extension SaveImage cannot write
// get a ".png" extension instead.
//
//	ResultFileName("opened", "/data/fire/forest.jpg") // "opened_forest.jpg"
//	ResultFileName("eroded", "scan.tiff")             // "eroded_scan.png"
func ResultFileName(operation, sourcePath string) string {
	base := filepath.Base(sourcePath)
	if _, err := encoderFor(base); err != nil {
		base = strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
	}
	return operation + "_" + base
}

// CopyFile copies the file at src into dir under its own base name and
// returns the destination path.
//
// When dir already holds src, the destination is src itself and nothing is
// written.
func CopyFile(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat source: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
		return dst, nil
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return dst, nil
}
