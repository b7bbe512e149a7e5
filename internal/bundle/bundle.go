// Package bundle reads metadata from Apple application bundles.
package bundle

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavelsavara/xharness/internal/messages"
)

// Identifier returns CFBundleIdentifier from the Info.plist of the .app
// bundle at appPath. Only XML property lists are supported; Xcode writes
// binary ones solely for installed apps.
func Identifier(appPath string) (string, error) {
	path := filepath.Join(appPath, "Info.plist")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf(messages.BundleReadFmt, path, err)
	}
	id, err := topLevelString(data, "CFBundleIdentifier")
	if err != nil {
		return "", fmt.Errorf(messages.BundleParseFmt, path, err)
	}
	if id == "" {
		return "", fmt.Errorf(messages.BundleIdentifierMissingFmt, path)
	}
	return id, nil
}

// topLevelString finds the <string> value that follows <key>name</key> in the
// root dictionary. Keys of nested dictionaries are ignored.
func topLevelString(data []byte, name string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	matched := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "dict":
				depth++
				matched = false
			case "key":
				if depth != 1 {
					continue
				}
				var key string
				if err := dec.DecodeElement(&key, &el); err != nil {
					return "", err
				}
				matched = strings.TrimSpace(key) == name
			case "string":
				if depth != 1 || !matched {
					matched = false
					continue
				}
				var value string
				if err := dec.DecodeElement(&value, &el); err != nil {
					return "", err
				}
				return strings.TrimSpace(value), nil
			default:
				matched = false
			}
		case xml.EndElement:
			if el.Name.Local == "dict" {
				depth--
			}
		}
	}
}
