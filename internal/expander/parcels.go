package expander

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
)

// FeatureNamespace is the label feature namespace read by the WAGI runtime
const FeatureNamespace = "wagi"

const defaultMediaType = "application/octet-stream"

// handlerFeatures marks a parcel as the module serving route
func handlerFeatures(route string) map[string]map[string]string {
	return features(route, false)
}

// assetFeatures marks a parcel as a static file
func assetFeatures() map[string]map[string]string {
	return features("", true)
}

func features(route string, file bool) map[string]map[string]string {
	return map[string]map[string]string{
		FeatureNamespace: {
			"route": route,
			"file":  strconv.FormatBool(file),
		},
	}
}

func newParcel(name, digest, mediaType string, size uint64, feature map[string]map[string]string, memberOf, requires []string) bindle.Parcel {
	return bindle.Parcel{
		Label: bindle.Label{
			SHA256:    digest,
			MediaType: mediaType,
			Name:      name,
			Size:      size,
			Feature:   feature,
		},
		Conditions: &bindle.Condition{
			MemberOf: memberOf,
			Requires: requires,
		},
	}
}

// parcelFromFile builds a parcel for a file under the base directory
func (c *Context) parcelFromFile(path string, feature map[string]map[string]string, memberOf, requires []string) (bindle.Parcel, error) {
	f, err := os.Open(path)
	if err != nil {
		return bindle.Parcel{}, domain.NewIOError(domain.ErrOpen, path, err)
	}
	defer f.Close()

	name, err := c.ToRelative(path)
	if err != nil {
		return bindle.Parcel{}, err
	}

	info, err := f.Stat()
	if err != nil {
		return bindle.Parcel{}, domain.NewIOError(domain.ErrStat, path, err)
	}

	digest, err := digestOf(f)
	if err != nil {
		return bindle.Parcel{}, domain.NewIOError(domain.ErrRead, path, err)
	}

	c.logger.Debug().
		Str("parcel", name).
		Str("sha256", digest).
		Int64("size", info.Size()).
		Msg("Hashed file")

	return newParcel(name, digest, mediaTypeFor(path), uint64(info.Size()), feature, memberOf, requires), nil
}

// digestOf streams r through SHA-256 and returns the lowercase hex digest
func digestOf(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestFile returns the lowercase hex SHA-256 of a file's contents
func DigestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", domain.NewIOError(domain.ErrOpen, path, err)
	}
	defer f.Close()

	digest, err := digestOf(f)
	if err != nil {
		return "", domain.NewIOError(domain.ErrRead, path, err)
	}
	return digest, nil
}

// mediaTypeFor guesses a media type from the file extension, without parameters
func mediaTypeFor(path string) string {
	guess := mime.TypeByExtension(filepath.Ext(path))
	if guess == "" {
		return defaultMediaType
	}
	mediaType, _, err := mime.ParseMediaType(guess)
	if err != nil {
		return defaultMediaType
	}
	return mediaType
}
