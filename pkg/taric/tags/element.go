package tags

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is a generic XML node decoded with encoding/xml.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []*Element `xml:",any"`
	Text     string     `xml:",chardata"`
}

// First returns the first direct child matching tag, or nil.
func (e *Element) First(tag Tag) *Element {
	for _, c := range e.Children {
		if tag.Matches(c.XMLName) {
			return c
		}
	}
	return nil
}

// Iter returns every direct child matching tag.
func (e *Element) Iter(tag Tag) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if tag.Matches(c.XMLName) {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant matching tag, searching depth first.
func (e *Element) Find(tag Tag) *Element {
	for _, c := range e.Children {
		if tag.Matches(c.XMLName) {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant matching tag in document order.
func (e *Element) FindAll(tag Tag) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if tag.Matches(c.XMLName) {
			out = append(out, c)
			continue
		}
		out = append(out, c.FindAll(tag)...)
	}
	return out
}

// ChildText returns the trimmed text of the first child matching tag.
func (e *Element) ChildText(tag Tag) string {
	if c := e.First(tag); c != nil {
		return c.Value()
	}
	return ""
}

// Value returns the trimmed character data of a leaf element.
func (e *Element) Value() string {
	return strings.TrimSpace(e.Text)
}

// Attr returns the value of a non-namespaced attribute.
func (e *Element) Attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

// RemoveChildren drops the direct children for which drop returns true.
func (e *Element) RemoveChildren(drop func(*Element) bool) {
	kept := e.Children[:0]
	for _, c := range e.Children {
		if !drop(c) {
			kept = append(kept, c)
		}
	}
	e.Children = kept
}

// StreamHandler receives what Stream finds.
type StreamHandler struct {
	// Open is called for every start element outside a match.
	Open func(start xml.StartElement) error
	// Element is called with each fully decoded matching element.
	Element func(e *Element) error
}

// Stream walks r token by token and decodes each element matching tag in
// isolation, so only one matching subtree is held in memory at a time.
func Stream(r io.Reader, tag Tag, h StreamHandler) error {
	decoder := xml.NewDecoder(r)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read xml token: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		if !tag.Matches(start.Name) {
			if h.Open != nil {
				if err := h.Open(start); err != nil {
					return err
				}
			}
			continue
		}
		var element Element
		if err := decoder.DecodeElement(&element, &start); err != nil {
			return fmt.Errorf("decode %s: %w", start.Name.Local, err)
		}
		if h.Element != nil {
			if err := h.Element(&element); err != nil {
				return err
			}
		}
	}
}
