// Package surface is the server side display tree the slideshow renders into
package surface

import (
	"slices"
)

// Element is a node of the display tree. An element with an empty Tag is a text node.
type Element struct {
	Tag      string
	Classes  []string
	Style    map[string]string
	Attrs    map[string]string
	Text     string
	Children []*Element
}

func NewElement(tag string, classes ...string) *Element {
	return &Element{
		Tag:     tag,
		Classes: classes,
		Style:   map[string]string{},
		Attrs:   map[string]string{},
	}
}

func NewText(text string) *Element {
	return &Element{Text: text}
}

func (e *Element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.Classes = append(e.Classes, class)
}

func (e *Element) HasClass(class string) bool {
	return slices.Contains(e.Classes, class)
}

// SetStyle sets a style property, an empty value removes it.
func (e *Element) SetStyle(property, value string) {
	if e.Style == nil {
		e.Style = map[string]string{}
	}
	if value == "" {
		delete(e.Style, property)
		return
	}
	e.Style[property] = value
}

func (e *Element) SetAttr(name, value string) {
	if e.Attrs == nil {
		e.Attrs = map[string]string{}
	}
	e.Attrs[name] = value
}

func (e *Element) Append(children ...*Element) {
	e.Children = append(e.Children, children...)
}

// RemoveFirst removes and returns the oldest child, nil when there are no children.
func (e *Element) RemoveFirst() *Element {
	if len(e.Children) == 0 {
		return nil
	}
	first := e.Children[0]
	e.Children = slices.Delete(e.Children, 0, 1)
	return first
}

// Replace swaps old for new among the direct children.
func (e *Element) Replace(old, new *Element) bool {
	i := slices.Index(e.Children, old)
	if i < 0 {
		return false
	}
	e.Children[i] = new
	return true
}

// Clear removes all children.
func (e *Element) Clear() {
	e.Children = nil
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	c := &Element{
		Tag:     e.Tag,
		Classes: slices.Clone(e.Classes),
		Style:   make(map[string]string, len(e.Style)),
		Attrs:   make(map[string]string, len(e.Attrs)),
		Text:    e.Text,
	}
	for k, v := range e.Style {
		c.Style[k] = v
	}
	for k, v := range e.Attrs {
		c.Attrs[k] = v
	}
	for _, child := range e.Children {
		c.Children = append(c.Children, child.Clone())
	}
	return c
}
