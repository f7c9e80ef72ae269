package form

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// HTMLForm reads form controls out of a parsed HTML document, using the
// values the markup carries (value attributes, textarea text, checked and
// selected attributes).
type HTMLForm struct {
	doc *html.Node
}

func ParseHTMLForm(r io.Reader) (*HTMLForm, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing html form: %w", err)
	}
	return &HTMLForm{doc: doc}, nil
}

func (f *HTMLForm) query(selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return sel.MatchAll(f.doc), nil
}

func (f *HTMLForm) byId(id string) (*html.Node, error) {
	nodes, err := f.query(fmt.Sprintf(`[id=%q]`, id))
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fieldNotFound(id)
	}
	return nodes[0], nil
}

func (f *HTMLForm) FieldValue(id string) (string, error) {
	node, err := f.byId(id)
	if err != nil {
		return "", err
	}

	switch node.Data {
	case "textarea":
		return textContent(node), nil
	case "select":
		return selectedOption(node), nil
	case "input":
		value, ok := attr(node, "value")
		if !ok && isCheckable(node) {
			return "on", nil
		}
		return value, nil
	default:
		return "", fmt.Errorf("%w: %q is a <%s>, not a form control", ErrFieldNotFound, id, node.Data)
	}
}

func (f *HTMLForm) Checked(id string) (bool, error) {
	node, err := f.byId(id)
	if err != nil {
		return false, err
	}
	if node.Data != "input" || !isCheckable(node) {
		return false, fmt.Errorf("%w: %q is not a checkbox", ErrFieldNotFound, id)
	}
	_, checked := attr(node, "checked")
	return checked, nil
}

func (f *HTMLForm) CheckedChoice(group string) (string, error) {
	nodes, err := f.query(fmt.Sprintf(`input[name=%q]`, group))
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", fieldNotFound(group)
	}

	var checked []string
	for _, node := range nodes {
		if _, ok := attr(node, "checked"); !ok {
			continue
		}
		value, ok := attr(node, "value")
		if !ok {
			value = "on"
		}
		checked = append(checked, value)
	}
	return pickChoice(group, checked)
}

func attr(node *html.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func isCheckable(node *html.Node) bool {
	t, _ := attr(node, "type")
	t = strings.ToLower(t)
	return t == "checkbox" || t == "radio"
}

func textContent(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return sb.String()
}

// selectedOption mirrors a browser: the last option marked selected wins,
// otherwise the first option.
func selectedOption(node *html.Node) string {
	sel := cascadia.MustCompile("option")
	options := sel.MatchAll(node)
	if len(options) == 0 {
		return ""
	}

	chosen := options[0]
	for _, opt := range options {
		if _, ok := attr(opt, "selected"); ok {
			chosen = opt
		}
	}
	if value, ok := attr(chosen, "value"); ok {
		return value
	}
	return strings.TrimSpace(textContent(chosen))
}
