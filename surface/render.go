package surface

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

var voidTags = map[string]bool{"br": true, "img": true, "hr": true}

// Component renders the element and its children as HTML.
func (e *Element) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return e.write(w)
	})
}

func (e *Element) write(w io.Writer) error {
	if e.Tag == "" {
		_, err := io.WriteString(w, templ.EscapeString(e.Text))
		return err
	}

	var b strings.Builder
	b.WriteString("<" + e.Tag)
	if len(e.Classes) > 0 {
		fmt.Fprintf(&b, ` class="%s"`, templ.EscapeString(strings.Join(e.Classes, " ")))
	}
	if style := e.styleString(); style != "" {
		fmt.Fprintf(&b, ` style="%s"`, templ.EscapeString(style))
	}
	for _, name := range sortedKeys(e.Attrs) {
		fmt.Fprintf(&b, ` %s="%s"`, name, templ.EscapeString(e.Attrs[name]))
	}
	b.WriteString(">")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if voidTags[e.Tag] {
		return nil
	}

	if e.Text != "" {
		if _, err := io.WriteString(w, templ.EscapeString(e.Text)); err != nil {
			return err
		}
	}
	for _, child := range e.Children {
		if err := child.write(w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+e.Tag+">")
	return err
}

func (e *Element) styleString() string {
	var parts []string
	for _, property := range sortedKeys(e.Style) {
		parts = append(parts, property+": "+e.Style[property])
	}
	return strings.Join(parts, "; ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HTML renders the whole surface.
func (s *Surface) HTML(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := s.Root.Component().Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to render surface: %w", err)
	}
	return buf.String(), nil
}
