package imagevault

import (
	"fmt"
	"strings"
	"unicode"
)

// SidecarSuffix is the extension of the metadata file stored next to
// every blob.
const SidecarSuffix = ".meta"

// allowedExtensions lists the accepted image extensions, lowercase,
// without the leading dot.
var allowedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
}

// ParseObjectName derives the canonical on-disk name from a
// client-supplied file name: the base name joined with its extension
// lowercased. The extension must be jpg or jpeg. Names containing path
// separators, "..", control characters, or an empty base are rejected so
// a request can never escape the storage root or collide with a sidecar.
func ParseObjectName(fileName string) (string, error) {
	if fileName == "" {
		return "", fmt.Errorf("%w: empty file name", ErrInvalidName)
	}

	if strings.ContainsAny(fileName, `/\`) || strings.Contains(fileName, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, fileName)
	}

	for _, r := range fileName {
		if r == 0 || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, fileName)
		}
	}

	dot := strings.LastIndexByte(fileName, '.')
	if dot <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, fileName)
	}

	base := fileName[:dot]
	ext := strings.ToLower(fileName[dot+1:])
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}

	if strings.HasSuffix(base, SidecarSuffix) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, fileName)
	}

	return base + "." + ext, nil
}

// SidecarName returns the name of the metadata sidecar for a canonical
// object name: the extension is replaced with SidecarSuffix.
func SidecarName(name string) string {
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		name = name[:dot]
	}
	return name + SidecarSuffix
}

// TwinName returns the canonical name sharing the same sidecar as the
// given one: base.jpg and base.jpeg are twins. Returns "" for a name
// with no twin.
func TwinName(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return ""
	}

	switch name[dot+1:] {
	case "jpg":
		return name[:dot] + ".jpeg"
	case "jpeg":
		return name[:dot] + ".jpg"
	}
	return ""
}

// IsObjectName reports whether a directory entry looks like a blob
// (rather than a sidecar or temp file) with an accepted extension.
func IsObjectName(name string) bool {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return false
	}
	return allowedExtensions[name[dot+1:]]
}
