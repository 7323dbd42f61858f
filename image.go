package storyboard

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/k1LoW/errors"
	"golang.org/x/net/publicsuffix"
)

type MIMEType string

const (
	MIMETypeImagePNG  MIMEType = "image/png"
	MIMETypeImageJPEG MIMEType = "image/jpeg"
	MIMETypeImageGIF  MIMEType = "image/gif"
)

var _ retryablehttp.LeveledLogger = (*slog.Logger)(nil)

var userAgent = "scenezero-storyboard (+https://github.com/scenezero/storyboard)"

// Image is a slide image fetched for embedding in an export target.
type Image struct {
	i        image.Image
	b        []byte
	mimeType MIMEType
	url      string
	checksum uint32
	pHash    *goimagehash.ImageHash
}

// NewImage loads an image from a local path or fetches it from a URL.
// Remote fetches retry transient failures.
func NewImage(pathOrURL string) (_ *Image, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if i, ok := LoadImageCache(pathOrURL); ok {
		return i, nil
	}
	var r io.Reader
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		client := retryablehttp.NewClient()
		client.RetryMax = 3
		client.HTTPClient.Timeout = 30 * time.Second
		client.Logger = slog.New(slog.DiscardHandler)
		req, err := retryablehttp.NewRequest("GET", pathOrURL, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid URL %s: %w", pathOrURL, err)
		}
		req.Header.Set("User-Agent", userAgent)
		res, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL %s: %w", pathOrURL, err)
		}
		defer res.Body.Close()
		if res.StatusCode != 200 {
			return nil, fmt.Errorf("failed to fetch image from URL %s: status code %d", pathOrURL, res.StatusCode)
		}
		r = res.Body
	} else {
		file, err := os.Open(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open image file %s: %w", pathOrURL, err)
		}
		defer file.Close()
		r = file
	}
	i, err := newImageFromBuffer(r)
	if err != nil {
		return nil, err
	}
	i.url = pathOrURL
	StoreImageCache(pathOrURL, i)
	return i, nil
}

func newImageFromBuffer(r io.Reader) (_ *Image, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	_, mimeType, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	var mt MIMEType
	switch mimeType {
	case "png":
		mt = MIMETypeImagePNG
	case "jpeg":
		mt = MIMETypeImageJPEG
	case "gif":
		mt = MIMETypeImageGIF
	default:
		return nil, fmt.Errorf("unsupported image MIME type: %s", mimeType)
	}
	return &Image{
		b:        b,
		mimeType: mt,
	}, nil
}

func (i *Image) Bytes() []byte {
	if i == nil {
		return nil
	}
	return i.b
}

func (i *Image) MIMEType() MIMEType {
	if i == nil {
		return ""
	}
	return i.mimeType
}

func (i *Image) Checksum() uint32 {
	if i == nil {
		return 0
	}
	if i.checksum == 0 {
		i.checksum = crc32.ChecksumIEEE(i.b)
	}
	return i.checksum
}

func (i *Image) Image() (image.Image, error) {
	if i == nil {
		return nil, fmt.Errorf("image is nil")
	}
	if i.i == nil {
		img, _, err := image.Decode(bytes.NewReader(i.b))
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		i.i = img
	}
	return i.i, nil
}

func (i *Image) PHash() (_ *goimagehash.ImageHash, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if i == nil {
		return nil, fmt.Errorf("image is nil")
	}
	if i.pHash == nil {
		img, err := i.Image()
		if err != nil {
			return nil, err
		}
		pHash, err := goimagehash.PerceptionHash(img)
		if err != nil {
			return nil, fmt.Errorf("failed to compute perceptual hash: %w", err)
		}
		i.pHash = pHash
	}
	return i.pHash, nil
}

// Equivalent reports whether two images are the same image for export
// purposes. Raster snapshots are re-encoded between runs, so byte equality
// is backed up by perceptual-hash comparison.
func (i *Image) Equivalent(ii *Image) bool {
	if i == nil || ii == nil {
		return false
	}
	if i.mimeType != ii.mimeType {
		return false
	}
	if i.Checksum() == ii.Checksum() {
		return true
	}
	aHash, err := i.PHash()
	if err != nil {
		return false
	}
	bHash, err := ii.PHash()
	if err != nil {
		return false
	}
	distance, err := aHash.Distance(bHash)
	if err != nil {
		return false
	}
	return distance < 5 // threshold for similarity
}

// IsPublicURL checks whether a URL string is OK for direct public access,
// e.g. as an external image reference in a PPTX deck. False negatives are
// acceptable.
func IsPublicURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.User != nil || u.Port() != "" {
		return false
	}
	if ip := net.ParseIP(u.Host); ip != nil {
		return false
	}
	_, icann := publicsuffix.PublicSuffix(u.Host)
	return icann
}
