// Package category maps files to the fixed set of destination groups.
package category

import (
	"mime"
	"strings"

	"dirtidy/pkg/types"
)

// Category is one of the ten destination groups.
type Category int

const (
	Other Category = iota
	Images
	Audio
	Videos
	Documents
	Archives
	Code
	Spreadsheets
	Presentations
	Fonts
)

// All lists every category in display order.
var All = []Category{Images, Audio, Videos, Documents, Archives, Code, Spreadsheets, Presentations, Fonts, Other}

var dirNames = map[Category]string{
	Images:        "images",
	Audio:         "audio",
	Videos:        "videos",
	Documents:     "documents",
	Archives:      "archives",
	Code:          "code",
	Spreadsheets:  "spreadsheets",
	Presentations: "presentations",
	Fonts:         "fonts",
	Other:         "other",
}

var descriptions = map[Category]string{
	Images:        "Image files",
	Audio:         "Audio files",
	Videos:        "Video files",
	Documents:     "Document files",
	Archives:      "Archive files",
	Code:          "Source code files",
	Spreadsheets:  "Spreadsheet files",
	Presentations: "Presentation files",
	Fonts:         "Font files",
	Other:         "Other files",
}

// DirName returns the subdirectory the category's files are moved into.
func (c Category) DirName() string {
	if name, ok := dirNames[c]; ok {
		return name
	}
	return dirNames[Other]
}

// Description returns a human-readable label
func (c Category) Description() string {
	if d, ok := descriptions[c]; ok {
		return d
	}
	return descriptions[Other]
}

func (c Category) String() string {
	return c.DirName()
}

// IsCategoryDir reports whether name is one of the destination directories.
func IsCategoryDir(name string) bool {
	for _, dir := range dirNames {
		if dir == name {
			return true
		}
	}
	return false
}

// FromDirName is the inverse of DirName.
func FromDirName(name string) (Category, bool) {
	for c, dir := range dirNames {
		if dir == name {
			return c, true
		}
	}
	return Other, false
}

// Categorize picks the category for an entry. A conclusive MIME type
// wins; otherwise the extension table decides; a weak MIME type (a
// container format such as zip that many document formats share) only
// decides when the extension is unknown. Everything else is Other.
func Categorize(entry types.FileEntry, mimeType string) Category {
	mt := normalizeMIME(mimeType)

	var weak Category
	if mt != "" {
		if c, conclusive, ok := matchMIME(mt); ok {
			if conclusive {
				return c
			}
			weak = c
		}
	}

	if c, ok := ByExtension(entry.Extension); ok {
		return c
	}
	if weak != Other {
		return weak
	}
	return Other
}

// ByExtension looks up an extension (with or without the dot, any case).
func ByExtension(ext string) (Category, bool) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return Other, false
	}
	c, ok := extensions[ext]
	return c, ok
}

func normalizeMIME(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}
	return strings.ToLower(s)
}

func matchMIME(mt string) (Category, bool, bool) {
	for _, r := range mimeRules {
		if r.match(mt) {
			return r.category, !r.weak, true
		}
	}
	return Other, false, false
}
