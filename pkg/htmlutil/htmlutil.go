package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under `node`.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText trims the string and collapses runs of whitespace into a single space.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

func parseFragment(fragment string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(fragment))
}

// FragmentText reduces an html fragment (ex. a table cell sent as markup) to its
// visible text. Plain text passes through cleaned.
func FragmentText(fragment string) string {
	if !strings.ContainsRune(fragment, '<') {
		return CleanText(html.UnescapeString(fragment))
	}
	doc, err := parseFragment(fragment)
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}

// AnchorText returns the text of the first anchor inside an html fragment, or
// the visible text of the whole fragment if there is no anchor.
func AnchorText(fragment string) string {
	doc, err := parseFragment(fragment)
	if err != nil {
		return CleanText(fragment)
	}
	anchor := doc.Find("a").First()
	if anchor.Length() == 0 {
		return CleanText(doc.Text())
	}
	return CleanText(GetText(anchor.Nodes[0]))
}
