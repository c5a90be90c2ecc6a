// Package links pulls download links out of clipboard content.
package links

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/workstation-tools/internal/execx"
	"golang.org/x/net/html"
)

// Link is an anchor's href and its visible text.
type Link struct {
	URL  string
	Text string
}

// ExtractAnchors returns every <a href> in document order. Text is the
// anchor's trimmed text content, or the href when empty.
func ExtractAnchors(doc string) ([]Link, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse clipboard html: %w", err)
	}
	var out []Link
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok && href != "" {
				text := strings.Join(strings.Fields(textContent(n)), " ")
				if text == "" {
					text = href
				}
				out = append(out, Link{URL: href, Text: text})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

// ParseText treats each http(s) line of plain text as a link.
func ParseText(text string) []Link {
	var out []Link
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			out = append(out, Link{URL: line, Text: line})
		}
	}
	return out
}

// DecodeAppleScriptHTML converts osascript's «data HTML3C68...» literal to HTML.
func DecodeAppleScriptHTML(out string) (string, error) {
	out = strings.TrimSpace(out)
	const prefix, suffix = "«data HTML", "»"
	if !strings.HasPrefix(out, prefix) || !strings.HasSuffix(out, suffix) {
		return "", errors.New("clipboard has no HTML flavor")
	}
	b, err := hex.DecodeString(strings.TrimSuffix(strings.TrimPrefix(out, prefix), suffix))
	if err != nil {
		return "", fmt.Errorf("decode clipboard html: %w", err)
	}
	return string(b), nil
}

// Clipboard reads the system clipboard.
type Clipboard interface {
	HTML(ctx context.Context) (string, error)
	Text() (string, error)
}

// System reads HTML through osascript (macOS) and plain text through
// atotto/clipboard.
type System struct {
	Runner execx.Runner
}

func (s System) HTML(ctx context.Context) (string, error) {
	out, err := execx.Output(ctx, s.Runner, "osascript", "-e", "the clipboard as «class HTML»")
	if err != nil {
		return "", err
	}
	return DecodeAppleScriptHTML(out)
}

func (System) Text() (string, error) { return clipboard.ReadAll() }

// FromClipboard returns the raw content read and the links found in it,
// preferring the HTML flavor.
func FromClipboard(ctx context.Context, c Clipboard) (string, []Link, error) {
	if doc, err := c.HTML(ctx); err == nil && strings.TrimSpace(doc) != "" {
		found, err := ExtractAnchors(doc)
		return doc, found, err
	}
	text, err := c.Text()
	if err != nil {
		return "", nil, fmt.Errorf("read clipboard: %w", err)
	}
	if strings.Contains(text, "<a ") {
		found, err := ExtractAnchors(text)
		return text, found, err
	}
	return text, ParseText(text), nil
}
