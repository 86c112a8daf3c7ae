package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Severity classifies an issue. Only ERROR blocks a commit.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Issue is one finding about a parsed record. Issues are values and are
// never modified after creation.
type Issue struct {
	// ObjectType is the xml tag of the offending record.
	ObjectType string
	// RelatedObjectType is the xml tag of the parent, child or link target.
	RelatedObjectType string
	// IdentityKeys are the key values involved, named by the related
	// object's fields when there is one.
	IdentityKeys  map[string]string
	Description   string
	Severity      Severity
	UpdateType    UpdateType
	TransactionID string
	// ObjectDetails is a printable snapshot of the offending record.
	ObjectDetails string
}

// String renders the issue the way operators read it in reports:
//
//	No matches for possible related taric object
//	quota.definition > quota.order.number
//	link_data: {sid: 99}
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Description)
	b.WriteString("\n")
	b.WriteString(i.ObjectType)
	if i.RelatedObjectType != "" {
		b.WriteString(" > ")
		b.WriteString(i.RelatedObjectType)
	}
	b.WriteString("\nlink_data: ")
	b.WriteString(FormatKeys(i.IdentityKeys))
	return b.String()
}

// IsError reports whether the issue blocks the commit.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// FormatKeys renders keys as "{a: 1, b: 2}" in sorted key order.
func FormatKeys(keys map[string]string) string {
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for n, k := range names {
		parts[n] = fmt.Sprintf("%s: %s", k, keys[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
