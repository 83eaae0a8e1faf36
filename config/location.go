package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Supported storage schemes.
const (
	SchemeFile  = "file"
	SchemeS3    = "s3"
	SchemeMinIO = "minio"
)

// ErrBadLocation is returned by ParseLocation.
var ErrBadLocation = errors.New("config: bad store url")

// Location is a parsed store URL.
type Location struct {
	Scheme   string
	Endpoint string // minio only
	Bucket   string
	Prefix   string
	Dir      string // file only
}

// ParseLocation parses s3://bucket/prefix, minio://endpoint/bucket/prefix
// and file:///dir.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrBadLocation, err)
	}

	path := strings.Trim(u.Path, "/")
	switch u.Scheme {
	case SchemeFile:
		if u.Path == "" {
			return Location{}, fmt.Errorf("%w: %q has no directory", ErrBadLocation, raw)
		}
		return Location{Scheme: SchemeFile, Dir: u.Path}, nil
	case SchemeS3:
		if u.Host == "" {
			return Location{}, fmt.Errorf("%w: %q has no bucket", ErrBadLocation, raw)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Prefix: path}, nil
	case SchemeMinIO:
		bucket, prefix, _ := strings.Cut(path, "/")
		if u.Host == "" || bucket == "" {
			return Location{}, fmt.Errorf("%w: %q needs endpoint and bucket", ErrBadLocation, raw)
		}
		return Location{Scheme: SchemeMinIO, Endpoint: u.Host, Bucket: bucket, Prefix: prefix}, nil
	default:
		return Location{}, fmt.Errorf("%w: unsupported scheme %q", ErrBadLocation, u.Scheme)
	}
}
