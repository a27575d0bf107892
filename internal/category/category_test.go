package category_test

import (
	"testing"

	"dirtidy/internal/category"
	"dirtidy/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestDirNames(t *testing.T) {
	want := []string{"images", "audio", "videos", "documents", "archives", "code", "spreadsheets", "presentations", "fonts", "other"}

	var got []string
	for _, c := range category.All {
		got = append(got, c.DirName())
		assert.True(t, category.IsCategoryDir(c.DirName()))

		back, ok := category.FromDirName(c.DirName())
		assert.True(t, ok)
		assert.Equal(t, c, back)
		assert.NotEmpty(t, c.Description())
	}
	assert.Equal(t, want, got)
	assert.False(t, category.IsCategoryDir("Images"))
	assert.False(t, category.IsCategoryDir("misc"))
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		mime string
		want category.Category
	}{
		{"photo.png", "image/png", category.Images},
		{"photo", "image/jpeg", category.Images},
		{"misnamed.txt", "image/png", category.Images},
		{"song.mp3", "audio/mpeg", category.Audio},
		{"clip.mkv", "video/x-matroska", category.Videos},
		{"paper.pdf", "application/pdf", category.Documents},
		{"sheet.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", category.Spreadsheets},
		{"deck.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation", category.Presentations},
		{"font.ttf", "application/font-sfnt", category.Fonts},
		{"font.woff2", "font/woff2", category.Fonts},
		{"bundle.gz", "application/gzip", category.Archives},
		{"icon.svg", "image/svg+xml", category.Images},
		{"data.json", "application/json", category.Code},
		{"upper.PNG", "IMAGE/PNG; charset=binary", category.Images},

		// no mime: extension fallback, case-insensitive
		{"notes.TXT", "", category.Documents},
		{"main.go", "", category.Code},
		{"table.CSV", "", category.Spreadsheets},
		{"README", "", category.Other},
		{".bashrc", "", category.Other},
		{".config.toml", "", category.Code},

		// weak mime defers to the extension
		{"book.epub", "application/zip", category.Documents},
		{"deck.odp", "application/zip", category.Presentations},
		{"blob", "application/zip", category.Archives},
		{"backup.tar", "application/x-tar", category.Archives},
		{"script.py", "text/plain", category.Code},
		{"readme", "text/plain", category.Documents},
		{"mystery.bin", "application/octet-stream", category.Other},

		// unknown mime falls back too
		{"song.flac", "application/x-unknown", category.Audio},
		{"thing.xyz", "application/x-unknown", category.Other},
	}

	for _, tt := range tests {
		t.Run(tt.name+" "+tt.mime, func(t *testing.T) {
			e := types.NewFileEntry("/target", tt.name)
			assert.Equal(t, tt.want, category.Categorize(e, tt.mime))
		})
	}
}

func TestByExtension(t *testing.T) {
	c, ok := category.ByExtension(".JPEG")
	assert.True(t, ok)
	assert.Equal(t, category.Images, c)

	_, ok = category.ByExtension("")
	assert.False(t, ok)

	_, ok = category.ByExtension("nope")
	assert.False(t, ok)
}

func TestMIMEWithoutExtension(t *testing.T) {
	e := types.NewFileEntry("/t", "recording")
	assert.Equal(t, category.Audio, category.Categorize(e, "audio/x-wav"))
	assert.Equal(t, category.Audio, category.Categorize(e, "Audio/X-WAV; rate=44100"))
	assert.Equal(t, category.Other, category.Categorize(e, "unknown/type"))
}
