package parsers

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tigerroll/tamato/pkg/taric/domain"
)

// TaricObject is one parsed business record.
type TaricObject struct {
	Def            *Definition
	TransactionID  string
	RecordCode     string
	SubrecordCode  string
	SequenceNumber int64
	UpdateType     domain.UpdateType
	// Tag is the element name as it appeared in the envelope.
	Tag    string
	Values map[string]any
	issues []domain.Issue
}

// Get returns a typed attribute value.
func (o *TaricObject) Get(name string) (any, bool) {
	v, ok := o.Values[name]
	return v, ok
}

// Text returns the canonical string form of an attribute, "" when absent.
func (o *TaricObject) Text(name string) string {
	return Canonical(o.Values[name])
}

// Set stores a typed attribute value.
func (o *TaricObject) Set(name string, v any) {
	if o.Values == nil {
		o.Values = map[string]any{}
	}
	o.Values[name] = v
}

// IdentityFilter returns the identity attributes in canonical form.
func (o *TaricObject) IdentityFilter() map[string]string {
	out := make(map[string]string, len(o.Def.Identity))
	for _, f := range o.Def.Identity {
		out[f] = o.Text(f)
	}
	return out
}

// IdentityKey renders the identity as "field=value;..." in declared order.
func (o *TaricObject) IdentityKey() string {
	return IdentityKey(o.Def.Identity, o.IdentityFilter())
}

// IdentityKey renders values for names as "field=value;...".
func IdentityKey(names []string, values map[string]string) string {
	parts := make([]string, len(names))
	for n, f := range names {
		parts[n] = f + "=" + values[f]
	}
	return strings.Join(parts, ";")
}

// Attributes returns every attribute in canonical string form.
func (o *TaricObject) Attributes() map[string]string {
	out := make(map[string]string, len(o.Values))
	for k, v := range o.Values {
		out[k] = Canonical(v)
	}
	return out
}

// AddIssue appends an issue stamped with this object's tag, update type
// and transaction.
func (o *TaricObject) AddIssue(issue domain.Issue) {
	issue.ObjectType = o.Tag
	issue.UpdateType = o.UpdateType
	issue.TransactionID = o.TransactionID
	issue.ObjectDetails = o.String()
	if issue.IdentityKeys == nil {
		issue.IdentityKeys = map[string]string{}
	}
	o.issues = append(o.issues, issue)
}

// Issues returns the issues recorded against the object.
func (o *TaricObject) Issues() []domain.Issue {
	return o.issues
}

// HasErrors reports whether any recorded issue is an ERROR.
func (o *TaricObject) HasErrors() bool {
	for _, i := range o.issues {
		if i.IsError() {
			return true
		}
	}
	return false
}

// String is the snapshot stored with issues.
func (o *TaricObject) String() string {
	names := make([]string, 0, len(o.Values))
	for k := range o.Values {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(o.Def.Name)
	b.WriteString("(")
	for n, k := range names {
		if n > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(Canonical(o.Values[k]))
	}
	b.WriteString(")")
	return b.String()
}

// Canonical renders a typed value as the string used for matching and
// storage.
func Canonical(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format(domain.DateLayout)
		}
		return t.Format(dateTimeLayout)
	case domain.DateRange:
		return t.String()
	case *domain.DateRange:
		if t == nil {
			return ""
		}
		return t.String()
	}
	return ""
}
