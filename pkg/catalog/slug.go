package catalog

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// PathSegment holds a derived slug and the hierarchical path built from it.
type PathSegment struct {
	Slug string
	Path string
}

// Slugify turns a display name into a lowercase, hyphenated, ASCII slug.
func Slugify(name string) (string, error) {
	s := slug.Make(strings.TrimSpace(name))
	if s == "" {
		return "", Validation("invalid name", "name must contain at least one letter or digit")
	}
	return s, nil
}

// DerivePath derives the slug of name and appends it to parentPath.
// An empty parentPath yields a top-level path ("/<slug>").
func DerivePath(name, parentPath string) (PathSegment, error) {
	s, err := Slugify(name)
	if err != nil {
		return PathSegment{}, err
	}
	return PathSegment{Slug: s, Path: JoinPath(parentPath, s)}, nil
}

// JoinPath joins a parent path and a slug, collapsing repeated slashes and
// removing any trailing slash.
func JoinPath(parentPath, s string) string {
	p := "/" + s
	if parentPath != "" {
		p = parentPath + "/" + s
	}
	p = repeatedSlashes.ReplaceAllString(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// RebasePath moves path from under oldPrefix to newPrefix. ok is false when
// path is not oldPrefix itself or a descendant of it.
func RebasePath(path, oldPrefix, newPrefix string) (string, bool) {
	if path == oldPrefix {
		return newPrefix, true
	}
	if !strings.HasPrefix(path, oldPrefix+"/") {
		return path, false
	}
	return newPrefix + strings.TrimPrefix(path, oldPrefix), true
}
