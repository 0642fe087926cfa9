package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrInvalidImageType = errors.New("invalid image type")

// PublicPath is where disk-stored images are served from.
const PublicPath = "/public/uploads"

var fileTypeMap = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
}

// detectImage sniffs r and returns the stored extension and mime type,
// leaving r rewound.
func detectImage(r io.ReadSeeker) (ext, mime string, err error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", fmt.Errorf("detect image type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind upload: %w", err)
	}

	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := fileTypeMap[m.String()]; ok {
			return ext, m.String(), nil
		}
	}
	return "", "", ErrInvalidImageType
}

// fileName turns "summer hat.png" into "summer-hat-1700000000000-<suffix>.png".
// The suffix keeps same-named uploads within one millisecond apart.
func fileName(original, ext string, now time.Time, suffix string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = strings.Join(strings.Fields(base), "-")
	if base == "" || base == "." || base == "/" {
		base = "image"
	}
	return fmt.Sprintf("%s-%d-%s.%s", base, now.UnixMilli(), suffix, ext)
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// nameFromURL returns the stored file name a Save URL ends with.
func nameFromURL(url string) (string, error) {
	name := url[strings.LastIndex(url, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("no file name in %q", url)
	}
	return name, nil
}
