package tags

import (
	"encoding/xml"
	"strings"
)

// XMLHeader starts every chunk document.
const XMLHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// EnvelopeStart opens an envelope declaring both TARIC prefixes.
func EnvelopeStart(id string) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(Schema.Envelope.QualifiedName())
	b.WriteString(` xmlns:` + EnvelopePrefix + `="` + EnvelopeNamespace + `"`)
	b.WriteString(` xmlns:` + MessagePrefix + `="` + MessageNamespace + `"`)
	if id != "" {
		b.WriteString(` id="`)
		_ = xml.EscapeText(&b, []byte(id))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

// EnvelopeEnd closes an envelope.
func EnvelopeEnd() string {
	return "</" + Schema.Envelope.QualifiedName() + ">"
}

// EncodeString renders e using the env/oub prefixes. Namespace
// declarations are left to the enclosing envelope.
func EncodeString(e *Element) string {
	var b strings.Builder
	writeElement(&b, e)
	return b.String()
}

func qualify(name xml.Name) string {
	if prefix, ok := namespacePrefixes[name.Space]; ok {
		return prefix + ":" + name.Local
	}
	return name.Local
}

func writeElement(b *strings.Builder, e *Element) {
	name := qualify(e.XMLName)
	b.WriteString("<")
	b.WriteString(name)
	for _, a := range e.Attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(qualify(a.Name))
		b.WriteString(`="`)
		_ = xml.EscapeText(b, []byte(a.Value))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	if len(e.Children) == 0 {
		_ = xml.EscapeText(b, []byte(e.Value()))
	}
	for _, c := range e.Children {
		writeElement(b, c)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}
