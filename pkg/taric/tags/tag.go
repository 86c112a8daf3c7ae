// Package tags names the TARIC3 envelope elements and provides the element
// tree used by the chunker and the parser.
package tags

import (
	"encoding/xml"
	"regexp"
)

const (
	// EnvelopeNamespace is the namespace of envelope, transaction and app.message.
	EnvelopeNamespace = "urn:publicid:-:DGTAXUD:GENERAL:ENVELOPE:1.0"
	// MessageNamespace is the TARIC message namespace holding business records.
	MessageNamespace = "urn:publicid:-:DGTAXUD:TARIC:MESSAGE:1.0"

	EnvelopePrefix = "env"
	MessagePrefix  = "oub"
)

var prefixes = map[string]string{
	EnvelopePrefix: EnvelopeNamespace,
	MessagePrefix:  MessageNamespace,
}

var namespacePrefixes = map[string]string{
	EnvelopeNamespace: EnvelopePrefix,
	MessageNamespace:  MessagePrefix,
}

// Tag is a namespace-qualified element name. A Tag with a Pattern matches
// any local name the pattern accepts.
type Tag struct {
	Prefix  string
	Name    string
	Pattern *regexp.Regexp
}

// Env returns a tag in the envelope namespace.
func Env(name string) Tag { return Tag{Prefix: EnvelopePrefix, Name: name} }

// Msg returns a tag in the TARIC message namespace.
func Msg(name string) Tag { return Tag{Prefix: MessagePrefix, Name: name} }

// MsgPattern returns a pattern tag in the TARIC message namespace.
func MsgPattern(expr string) Tag {
	return Tag{Prefix: MessagePrefix, Name: expr, Pattern: regexp.MustCompile("^" + expr + "$")}
}

// Namespace returns the namespace URI of the tag's prefix.
func (t Tag) Namespace() string {
	return prefixes[t.Prefix]
}

// QualifiedName returns "prefix:name".
func (t Tag) QualifiedName() string {
	return t.Prefix + ":" + t.Name
}

// Matches reports whether name is this tag. An empty namespace on name is
// accepted so that fragments without declarations still resolve.
func (t Tag) Matches(name xml.Name) bool {
	if name.Space != "" && name.Space != t.Namespace() {
		return false
	}
	if t.Pattern != nil {
		return t.Pattern.MatchString(name.Local)
	}
	return name.Local == t.Name
}

// Equal compares two tags, either of which may be a pattern.
func (t Tag) Equal(other Tag) bool {
	if t.Prefix != other.Prefix {
		return false
	}
	switch {
	case t.Pattern != nil && other.Pattern != nil:
		return t.Pattern.String() == other.Pattern.String()
	case t.Pattern != nil:
		return t.Pattern.MatchString(other.Name)
	case other.Pattern != nil:
		return other.Pattern.MatchString(t.Name)
	}
	return t.Name == other.Name
}

// Schema holds the structural tags of a TARIC3 envelope.
var Schema = struct {
	Envelope       Tag
	Transaction    Tag
	AppMessage     Tag
	Transmission   Tag
	Record         Tag
	TransactionID  Tag
	RecordCode     Tag
	SubrecordCode  Tag
	SequenceNumber Tag
	UpdateType     Tag
	QuotaEvent     Tag
}{
	Envelope:       Env("envelope"),
	Transaction:    Env("transaction"),
	AppMessage:     Env("app.message"),
	Transmission:   Msg("transmission"),
	Record:         Msg("record"),
	TransactionID:  Msg("transaction.id"),
	RecordCode:     Msg("record.code"),
	SubrecordCode:  Msg("subrecord.code"),
	SequenceNumber: Msg("record.sequence.number"),
	UpdateType:     Msg("update.type"),
	QuotaEvent:     MsgPattern(`quota\.[a-z.]+\.event`),
}

// Structural reports whether local is one of the record header elements
// that precede the business element.
func Structural(name xml.Name) bool {
	for _, t := range []Tag{Schema.TransactionID, Schema.RecordCode, Schema.SubrecordCode, Schema.SequenceNumber, Schema.UpdateType} {
		if t.Matches(name) {
			return true
		}
	}
	return false
}
