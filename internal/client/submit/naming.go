package submit

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
)

// Extension returns the text after the last '.' of sourceURI, verbatim.
// It fails when there is no dot, nothing after it, or the dot belongs to a
// directory component.
func Extension(sourceURI string) (string, error) {
	i := strings.LastIndexByte(sourceURI, '.')
	if i < 0 || i == len(sourceURI)-1 {
		return "", fmt.Errorf("%w: no extension in %q", ErrMalformedItem, sourceURI)
	}
	ext := sourceURI[i+1:]
	if strings.ContainsAny(ext, `/\`) {
		return "", fmt.Errorf("%w: no extension in %q", ErrMalformedItem, sourceURI)
	}
	return ext, nil
}

// FileName builds the multipart filename: displayName with all whitespace
// removed, then "." and the source extension. A blank display name yields
// just ".<ext>".
//
//	FileName("My Photo", "/sdcard/pic.JPG") // "MyPhoto.JPG"
func FileName(displayName, sourceURI string) (string, error) {
	ext, err := Extension(sourceURI)
	if err != nil {
		return "", err
	}
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, displayName)
	return name + "." + ext, nil
}

// ContentType derives the part MIME type from the extension.
// This is a naming heuristic, not content sniffing: both kinds get
// "image/<ext>" because the endpoint only classifies images.
func ContentType(kind models.Kind, sourceURI string) (string, error) {
	ext, err := Extension(sourceURI)
	if err != nil {
		return "", err
	}
	switch kind {
	case models.KindImage, models.KindFile, "":
		return "image/" + ext, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrMalformedItem, kind)
	}
}

// BasicAuth returns the Authorization header value for login and password.
func BasicAuth(login, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(login+":"+password))
}
