package results

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidResultURI reports a result location that matches none of the
// supported S3 address shapes.
var ErrInvalidResultURI = errors.New("unrecognized result location URI")

const (
	s3Scheme      = "s3://"
	awsHostSuffix = ".amazonaws.com"
)

// Address identifies a result object in S3.
type Address struct {
	Bucket string
	Key    string
}

// ParseResultURI resolves a query result location into a bucket and key.
// Three address shapes are supported, tried in order:
//
//	s3://bucket/key
//	https://bucket.s3.region.amazonaws.com/key
//	https://s3.region.amazonaws.com/bucket/key
func ParseResultURI(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)
	matchers := []func(string) (Address, bool){
		matchSchemeURI,
		matchVirtualHostedURI,
		matchPathStyleURI,
	}
	for _, match := range matchers {
		if addr, ok := match(raw); ok {
			return addr, nil
		}
	}
	return Address{}, fmt.Errorf("%w: %q", ErrInvalidResultURI, raw)
}

func matchSchemeURI(raw string) (Address, bool) {
	rest, found := strings.CutPrefix(raw, s3Scheme)
	if !found {
		return Address{}, false
	}
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return Address{}, false
	}
	return Address{Bucket: bucket, Key: key}, true
}

func matchVirtualHostedURI(raw string) (Address, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return Address{}, false
	}
	if !strings.HasSuffix(parsed.Host, awsHostSuffix) {
		return Address{}, false
	}
	// The bucket is the first host label; a host whose first label is the
	// service endpoint itself ("s3", "s3-accelerate", ...) is path-style.
	labels := strings.Split(parsed.Host, ".")
	if len(labels) < 4 || isServiceLabel(labels[0]) || !isServiceLabel(labels[1]) {
		return Address{}, false
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	if key == "" {
		return Address{}, false
	}
	return Address{Bucket: labels[0], Key: key}, true
}

func matchPathStyleURI(raw string) (Address, bool) {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return Address{}, false
	}
	if !strings.HasSuffix(parsed.Host, awsHostSuffix) {
		return Address{}, false
	}
	segments := strings.SplitN(strings.TrimPrefix(parsed.Path, "/"), "/", 2)
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return Address{}, false
	}
	return Address{Bucket: segments[0], Key: segments[1]}, true
}

func isServiceLabel(label string) bool {
	return label == "s3" || strings.HasPrefix(label, "s3-")
}
