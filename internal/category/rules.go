package category

import "strings"

// mimeRule is one row of the ordered MIME table. Rows are evaluated top
// to bottom, so exact application/* rows precede the families that would
// otherwise swallow them.
type mimeRule struct {
	exact    []string
	prefix   string
	category Category
	weak     bool
}

func (r mimeRule) match(mt string) bool {
	if r.prefix != "" && strings.HasPrefix(mt, r.prefix) {
		return true
	}
	for _, e := range r.exact {
		if e == mt {
			return true
		}
	}
	return false
}

var mimeRules = []mimeRule{
	// containers and catch-alls shared by many formats
	{exact: []string{"application/zip", "application/x-zip-compressed", "application/x-tar"}, category: Archives, weak: true},
	{exact: []string{"text/plain"}, category: Documents, weak: true},
	{exact: []string{"application/octet-stream"}, category: Other, weak: true},

	{exact: []string{
		"image/svg+xml",
	}, category: Images},
	{exact: []string{
		"application/vnd.ms-fontobject",
		"application/font-woff",
		"application/font-sfnt",
		"application/x-font-ttf",
		"application/x-font-otf",
	}, category: Fonts},
	{prefix: "font/", category: Fonts},
	{prefix: "image/", category: Images},
	{prefix: "audio/", category: Audio},
	{prefix: "video/", category: Videos},

	{exact: []string{
		"text/csv",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.oasis.opendocument.spreadsheet",
	}, category: Spreadsheets},
	{exact: []string{
		"application/vnd.ms-powerpoint",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.oasis.opendocument.presentation",
	}, category: Presentations},
	{exact: []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.oasis.opendocument.text",
		"application/rtf",
		"text/rtf",
		"application/epub+zip",
		"application/postscript",
		"text/html",
		"text/markdown",
	}, category: Documents},
	{exact: []string{
		"application/x-rar-compressed",
		"application/vnd.rar",
		"application/x-7z-compressed",
		"application/gzip",
		"application/x-gzip",
		"application/x-bzip2",
		"application/x-xz",
		"application/zstd",
		"application/x-compress",
		"application/x-lzip",
	}, category: Archives},
	{exact: []string{
		"text/x-python",
		"text/x-java",
		"text/x-c",
		"text/x-c++src",
		"text/x-javascript",
		"application/javascript",
		"text/javascript",
		"text/x-shellscript",
		"text/x-rust",
		"text/x-go",
		"application/json",
		"application/xml",
		"text/xml",
		"text/x-yaml",
		"application/yaml",
		"text/x-toml",
		"application/wasm",
	}, category: Code},
}

var extensions = map[string]Category{
	"png": Images, "jpg": Images, "jpeg": Images, "gif": Images, "webp": Images,
	"svg": Images, "bmp": Images, "tif": Images, "tiff": Images, "ico": Images,
	"heic": Images, "heif": Images,

	"mp3": Audio, "wav": Audio, "ogg": Audio, "flac": Audio, "aac": Audio,
	"m4a": Audio, "wma": Audio, "opus": Audio,

	"mp4": Videos, "mkv": Videos, "avi": Videos, "mov": Videos, "flv": Videos,
	"wmv": Videos, "webm": Videos, "3gp": Videos, "m4v": Videos,

	"pdf": Documents, "txt": Documents, "doc": Documents, "docx": Documents,
	"html": Documents, "htm": Documents, "md": Documents, "rtf": Documents,
	"odt": Documents, "epub": Documents,

	"zip": Archives, "rar": Archives, "7z": Archives, "tar": Archives,
	"gz": Archives, "tgz": Archives, "bz2": Archives, "xz": Archives, "zst": Archives,

	"py": Code, "java": Code, "c": Code, "cpp": Code, "h": Code, "hpp": Code,
	"js": Code, "ts": Code, "rs": Code, "go": Code, "sh": Code, "bash": Code,
	"json": Code, "xml": Code, "yaml": Code, "yml": Code, "toml": Code,

	"csv": Spreadsheets, "xls": Spreadsheets, "xlsx": Spreadsheets, "ods": Spreadsheets,

	"ppt": Presentations, "pptx": Presentations, "odp": Presentations,

	"ttf": Fonts, "otf": Fonts, "woff": Fonts, "woff2": Fonts, "eot": Fonts,
}
