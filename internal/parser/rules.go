package parser

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"elecciones/internal/models"
)

// Rule extracts one optional field from an item. A rule that does not
// find its value leaves the field unset.
type Rule struct {
	Field string
	Find  func(item *goquery.Selection) (string, bool)
}

func (r Rule) apply(item *goquery.Selection, entry models.RawEntry) {
	value, ok := r.Find(item)
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	entry[r.Field] = value
}

// Text reads the text of the first element matching selector.
func Text(field, selector string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		sel := item.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		return sel.Text(), true
	}}
}

// Attr reads an attribute of the first element matching selector.
func Attr(field, selector, attr string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		value, ok := item.Find(selector).First().Attr(attr)
		return value, ok && strings.TrimSpace(value) != ""
	}}
}

// Prefixed finds the first element matching selector whose text contains
// label and returns that text with the label removed.
func Prefixed(field, selector, label string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		sel := item.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), label)
		}).First()
		if sel.Length() == 0 {
			return "", false
		}
		return strings.Replace(sel.Text(), label, "", 1), true
	}}
}

// NextText finds the first element matching selector, then the next
// element named tag after it in document order, and returns its text.
// The walk is not confined to the item.
func NextText(field, selector, tag string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		sel := item.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		next := nextElement(sel.Get(0), tag)
		if next == nil {
			return "", false
		}
		return nodeText(next), true
	}}
}

// DefinitionTerm finds the first dt whose text contains term and returns
// the text of the dd that follows it.
func DefinitionTerm(field, term string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		dt := item.Find("dt").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return strings.Contains(s.Text(), term)
		}).First()
		dd := dt.NextAllFiltered("dd").First()
		if dd.Length() == 0 {
			return "", false
		}
		return dd.Text(), true
	}}
}

var styleURL = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

// StyleURL pulls the url(...) out of the style attribute of the first
// element matching selector.
func StyleURL(field, selector string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		style, ok := item.Find(selector).First().Attr("style")
		if !ok {
			return "", false
		}
		match := styleURL.FindStringSubmatch(style)
		if match == nil {
			return "", false
		}
		return match[1], true
	}}
}

// Labeled finds the element matching selector whose labelSelector child
// contains label, and returns the element text without the label text.
func Labeled(field, selector, labelSelector, label string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		var value string
		found := false
		item.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			labelText := s.Find(labelSelector).First().Text()
			if !strings.Contains(labelText, label) {
				return true
			}
			value = strings.Replace(s.Text(), labelText, "", 1)
			value = strings.TrimLeft(strings.TrimSpace(value), ":")
			found = true
			return false
		})
		return value, found
	}}
}

var markdown = md.NewConverter("", true, nil)

// Markdown renders the first element matching selector as markdown text.
func Markdown(field, selector string) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		sel := item.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		return markdown.Convert(sel), true
	}}
}

// FirstOf tries rules in order and keeps the first value found.
func FirstOf(field string, rules ...Rule) Rule {
	return Rule{Field: field, Find: func(item *goquery.Selection) (string, bool) {
		for _, r := range rules {
			if value, ok := r.Find(item); ok && strings.TrimSpace(value) != "" {
				return value, true
			}
		}
		return "", false
	}}
}

// Column scopes rules to the idx-th td of a table row.
func Column(idx int, rules ...Rule) []Rule {
	scoped := make([]Rule, 0, len(rules))
	for _, r := range rules {
		find := r.Find
		scoped = append(scoped, Rule{Field: r.Field, Find: func(item *goquery.Selection) (string, bool) {
			cell := item.ChildrenFiltered("td").Eq(idx)
			if cell.Length() == 0 {
				return "", false
			}
			return find(cell)
		}})
	}
	return scoped
}

func nextElement(n *html.Node, tag string) *html.Node {
	for cur := after(n); cur != nil; cur = next(cur) {
		if cur.Type == html.ElementNode && cur.Data == tag {
			return cur
		}
	}
	return nil
}

// after returns the first node past n's subtree in document order.
func after(n *html.Node) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

func next(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return after(n)
}

func nodeText(node *html.Node) string {
	var buffer bytes.Buffer
	collectText(node, &buffer)
	return buffer.String()
}

func collectText(node *html.Node, buffer *bytes.Buffer) {
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		collectText(child, buffer)
	}
}
