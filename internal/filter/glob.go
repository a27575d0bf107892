package filter

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// pathGlob matches slash-separated relative paths. "*" stays inside one
// segment, "**" crosses segments and may match none of them, and a
// pattern without wildcards matches when its segments appear as a
// contiguous run of the path's segments.
type pathGlob struct {
	raw      string
	literal  []string
	variants []glob.Glob
}

const globMeta = `*?[{\`

func compileGlob(pattern string) (*pathGlob, error) {
	p := normalize(pattern)
	g := &pathGlob{raw: pattern}

	if !strings.ContainsAny(p, globMeta) {
		g.literal = segments(p)
		return g, nil
	}

	seen := make(map[string]bool)
	for _, v := range zeroSegmentVariants(p) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		compiled, err := glob.Compile(v, '/')
		if err != nil {
			return nil, err
		}
		g.variants = append(g.variants, compiled)
	}
	return g, nil
}

// zeroSegmentVariants lets "**" also stand for zero segments: "a/**/b"
// must match "a/b", "**/x" must match "x" and "x/**" must match "x".
func zeroSegmentVariants(p string) []string {
	variants := []string{p}
	if strings.Contains(p, "**/") {
		variants = append(variants, strings.ReplaceAll(p, "**/", ""))
	}
	if strings.HasSuffix(p, "/**") {
		trimmed := strings.TrimSuffix(p, "/**")
		variants = append(variants, trimmed)
		if strings.Contains(trimmed, "**/") {
			variants = append(variants, strings.ReplaceAll(trimmed, "**/", ""))
		}
	}
	return variants
}

func (g *pathGlob) Match(rel string) bool {
	rel = normalize(rel)
	if g.literal != nil {
		return containsRun(segments(rel), g.literal)
	}
	for _, v := range g.variants {
		if v.Match(rel) {
			return true
		}
	}
	return false
}

func (g *pathGlob) String() string {
	return g.raw
}

// normalize trims "./" and redundant slashes. Backslashes are left alone:
// in a pattern they escape the next character, in a name they are part
// of it.
func normalize(p string) string {
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return p
	}
	return strings.TrimSuffix(path.Clean(p), "/")
}

func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
