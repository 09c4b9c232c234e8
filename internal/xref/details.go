// Package xref resolves cross-reference markers embedded in rendered HTML.
//
// A marker is an <xref> element whose href (or uid) attribute holds a raw
// reference such as "System.String#Length?displayProperty=fullName". Details
// parses a marker, ApplySpec binds it to the spec a Resolver returned, and
// ConvertToHTML produces the final link or the unresolved fallback.
package xref

import (
	"fmt"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/goliatone/go-docref/internal/util"
)

const linkScheme = "xref:"

// Node is the element surface markers are parsed from. Attr returns the
// decoded attribute value; names are matched case-insensitively.
type Node interface {
	Name() string
	Attr(name string) (string, bool)
	InnerHTML() string
	InnerText() string
	OuterHTML() string
}

// Properties names the spec keys used for link text and alt text when a
// marker does not choose its own.
type Properties struct {
	Display string
	Alt     string
}

// DefaultProperties selects "name" for link text and "fullname" for alt text.
func DefaultProperties() Properties {
	return Properties{Display: NameKey, Alt: FullNameKey}
}

// Details is one parsed marker. Text, Alt, InnerHTML and Raw hold markup;
// Title and Href hold plain values escaped on output.
type Details struct {
	UID                string
	Anchor             string
	Title              string
	Href               string
	Raw                string
	DisplayProperty    string
	AltProperty        string
	InnerHTML          string
	Text               string
	Alt                string
	Spec               Spec
	ThrowIfNotResolved bool
}

// From parses node with DefaultProperties.
func From(node Node) (*Details, error) {
	return DefaultProperties().From(node)
}

// From parses an <xref> node. Attributes on the node take precedence over
// query parameters of the raw reference, which take precedence over p.
func (p Properties) From(node Node) (*Details, error) {
	if node == nil || node.Name() != "xref" {
		return nil, fmt.Errorf("%w: expected xref element", ErrUnsupportedNode)
	}

	d := &Details{InnerHTML: node.InnerHTML()}
	var query url.Values
	if raw := rawReference(node); raw != "" {
		d.UID, d.Anchor, query = splitReference(raw)
	}

	d.DisplayProperty = attrOr(node, "displayProperty", queryOr(query, "displayProperty", util.FirstNonEmpty(p.Display, NameKey)))
	d.AltProperty = attrOr(node, "altProperty", queryOr(query, "altProperty", util.FirstNonEmpty(p.Alt, FullNameKey)))
	d.Text = markupAttr(node, queryOr(query, "text", ""), "text", "name")
	d.Alt = markupAttr(node, queryOr(query, "alt", ""), "alt", "fullname")
	d.Title = attrOr(node, "title", queryOr(query, "title", ""))

	if raw, ok := node.Attr("data-raw-html"); ok && raw != "" {
		d.Raw = raw
	} else if raw, ok := node.Attr("data-raw"); ok {
		d.Raw = html.EscapeString(raw)
	}

	if flag, ok := node.Attr("data-throw-if-not-resolved"); ok {
		d.ThrowIfNotResolved, _ = strconv.ParseBool(strings.TrimSpace(flag))
	}
	return d, nil
}

// ApplySpec binds a resolved spec. A nil spec leaves the marker unresolved.
func (d *Details) ApplySpec(spec Spec) {
	if spec == nil {
		return
	}
	href := spec.Href()
	if util.IsRelativePath(href) && d.Anchor == "" {
		if id := HTMLID(d.UID); id != "" {
			d.Anchor = "#" + id
		}
	}
	d.Href = util.URLDecode(href)
	d.Spec = spec
}

// Resolved reports whether ApplySpec produced a target.
func (d *Details) Resolved() bool {
	return d.Href != ""
}

// ConvertToHTML returns the final markup for the marker. language selects
// "key.language" spec properties when present.
func (d *Details) ConvertToHTML(language string) string {
	if d.Resolved() {
		value := util.FirstNonEmpty(d.InnerHTML, d.Text)
		if value == "" {
			value = html.EscapeString(d.lookup(language, d.DisplayProperty))
		}
		return anchorHTML(d.Href, d.Anchor, d.Title, value)
	}

	if d.Raw != "" {
		return d.Raw
	}
	value := util.FirstNonEmpty(d.InnerHTML, d.Alt)
	if value == "" {
		value = html.EscapeString(d.lookup(language, d.AltProperty))
	}
	return `<span class="xref">` + value + `</span>`
}

func (d *Details) lookup(language, property string) string {
	keys := []string{NameKey}
	if property != "" && property != NameKey {
		keys = []string{property, NameKey}
	}
	value, err := LanguageValue(d.Spec, language, d.UID, keys...)
	if err != nil {
		return d.UID
	}
	return value
}

var nonWord = regexp.MustCompile(`\W`)

// HTMLID turns a uid into the anchor id target pages are expected to use:
// every non-word character becomes an underscore.
func HTMLID(uid string) string {
	if uid == "" {
		return ""
	}
	return nonWord.ReplaceAllString(uid, "_")
}

// ConvertLinkNode rewrites an <a href="xref:..."> author link into a strict
// <xref> marker that keeps the original anchor as its raw fallback.
func ConvertLinkNode(node Node) (string, error) {
	if node == nil || node.Name() != "a" {
		return "", fmt.Errorf("%w: expected anchor element", ErrUnsupportedNode)
	}
	href, ok := node.Attr("href")
	if !ok || !strings.HasPrefix(href, linkScheme) {
		return "", fmt.Errorf("%w: anchor href must start with %q", ErrUnsupportedNode, linkScheme)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<xref href="%s" data-throw-if-not-resolved="True" data-raw-html="%s"`,
		html.EscapeString(strings.TrimPrefix(href, linkScheme)), html.EscapeString(node.OuterHTML()))
	if title, ok := node.Attr("title"); ok && title != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(title))
	}
	b.WriteString(">" + html.EscapeString(node.InnerText()) + "</xref>")
	return b.String(), nil
}

// IsLinkNode reports whether node is an author link ConvertLinkNode accepts.
func IsLinkNode(node Node) bool {
	if node == nil || node.Name() != "a" {
		return false
	}
	href, ok := node.Attr("href")
	return ok && strings.HasPrefix(href, linkScheme)
}

func anchorHTML(href, anchor, title, value string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<a class="xref" href="%s"`, html.EscapeString(href))
	if anchor != "" {
		fmt.Fprintf(&b, ` anchor="%s"`, html.EscapeString(anchor))
	}
	if title != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(title))
	}
	b.WriteString(">" + value + "</a>")
	return b.String()
}

func rawReference(node Node) string {
	if href, ok := node.Attr("href"); ok && href != "" {
		return href
	}
	uid, _ := node.Attr("uid")
	return uid
}

// splitReference separates uid, fragment and query. The fragment is split
// first and kept verbatim; a query trailing the fragment is moved to the
// query values.
func splitReference(raw string) (uid, anchor string, query url.Values) {
	query = url.Values{}
	rest := raw
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		rest, anchor = raw[:idx], raw[idx:]
		if q := strings.IndexByte(anchor, '?'); q >= 0 {
			mergeQuery(query, anchor[q+1:])
			anchor = anchor[:q]
		}
	}
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		mergeQuery(query, rest[q+1:])
		rest = rest[:q]
	}
	return util.URLDecode(rest), anchor, query
}

func mergeQuery(dst url.Values, raw string) {
	parsed, _ := url.ParseQuery(raw)
	for key, values := range parsed {
		dst[key] = append(dst[key], values...)
	}
}

// queryOr reads a query parameter case-insensitively, joining repeated
// values with commas.
func queryOr(query url.Values, key, fallback string) string {
	var values []string
	for _, k := range slices.Sorted(maps.Keys(query)) {
		if strings.EqualFold(k, key) {
			values = append(values, query[k]...)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ",")
}

func attrOr(node Node, name, fallback string) string {
	if value, ok := node.Attr(name); ok {
		return value
	}
	return fallback
}

// markupAttr returns the first present attribute among names, escaped, or
// the escaped fallback.
func markupAttr(node Node, fallback string, names ...string) string {
	for _, name := range names {
		if value, ok := node.Attr(name); ok {
			return html.EscapeString(value)
		}
	}
	return html.EscapeString(fallback)
}
