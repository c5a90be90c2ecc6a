package queue

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateFilename turns free text into a safe "<slug>.zip" name.
func GenerateFilename(text string) string {
	slug := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(text), "-"), "-")
	if slug == "" {
		slug = "download"
	}
	return slug + ".zip"
}

// FilenameFor is the filename Add assigns to rawURL queued under name. With
// no name the whole URL is slugged.
func FilenameFor(rawURL, name string) string {
	if name == "" {
		name = rawURL
	}
	return GenerateFilename(name)
}
