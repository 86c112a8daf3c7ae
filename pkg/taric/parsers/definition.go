// Package parsers declares how each TARIC3 business record maps onto a flat
// typed object, which references it must satisfy and which records merge
// into it.
package parsers

// Kind is the coercion applied to a raw field value.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindDate
	KindDateTime
	// KindRangeLower and KindRangeUpper fill the two ends of a DateRange.
	KindRangeLower
	KindRangeUpper
)

// ValidBetween is the attribute holding a record's validity range.
const ValidBetween = "valid_between"

// Field maps one raw key (element local name with dots replaced by
// underscores) onto an attribute.
type Field struct {
	Raw  string
	Name string
	Kind Kind
}

// LinkField pairs a local attribute with the attribute of the target it
// must equal.
type LinkField struct {
	Local  string
	Target string
}

// ModelLink is a reference that must resolve to exactly one target.
type ModelLink struct {
	Model  string
	Tag    string
	Fields []LinkField
	// Optional links are skipped when every local field is empty.
	Optional bool
}

// ParentLink attaches a child record to the record it is merged onto.
type ParentLink struct {
	Model  string
	Tag    string
	Fields []LinkField
	// Merge lists the child attributes copied onto the parent.
	Merge []string
	// Required makes the parent invalid on CREATE without this child.
	Required bool
}

// Definition describes one record type. Definitions are static and shared;
// parsed values live on TaricObject.
type Definition struct {
	// Name is the parser name shown in issues.
	Name          string
	Tag           string
	RecordCode    string
	SubrecordCode string
	// Model is the storage entity. Child records carry their parent's model.
	Model    string
	Fields   []Field
	Identity []string
	Links    []ModelLink
	Parent   *ParentLink
	// NoUpdates and NoDeletes forbid those update types outright.
	NoUpdates bool
	NoDeletes bool
	// EventKind is set on quota event records and stored as "kind".
	EventKind EventKind
	// Stub marks the placeholder used for unregistered tags.
	Stub bool
}

// UpdatesAllowed reports whether UPDATE messages are legal.
func (d *Definition) UpdatesAllowed() bool { return !d.NoUpdates }

// DeletesAllowed reports whether DELETE messages are legal.
func (d *Definition) DeletesAllowed() bool { return !d.NoDeletes }

// IsChild reports whether the record merges onto a parent.
func (d *Definition) IsChild() bool { return d.Parent != nil }

// Persistable reports whether the commit engine writes the record.
func (d *Definition) Persistable() bool { return !d.Stub && d.Model != "" }

// Code returns record code and subrecord code concatenated, the form used by
// record-group allow-lists.
func (d *Definition) Code() string { return d.RecordCode + d.SubrecordCode }

func (d *Definition) field(raw string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Raw == raw {
			return f, true
		}
	}
	return Field{}, false
}

// HasIdentity reports whether fields name exactly the identity attributes.
func (d *Definition) HasIdentity(fields []string) bool {
	if len(fields) != len(d.Identity) || len(fields) == 0 {
		return false
	}
	want := make(map[string]bool, len(d.Identity))
	for _, f := range d.Identity {
		want[f] = true
	}
	for _, f := range fields {
		if !want[f] {
			return false
		}
	}
	return true
}

// Targets returns the target-side attribute names of the link.
func (l ModelLink) Targets() []string {
	out := make([]string, len(l.Fields))
	for n, f := range l.Fields {
		out[n] = f.Target
	}
	return out
}

func str(raw, name string) Field   { return Field{Raw: raw, Name: name, Kind: KindString} }
func num(raw, name string) Field   { return Field{Raw: raw, Name: name, Kind: KindInt} }
func flag(raw, name string) Field  { return Field{Raw: raw, Name: name, Kind: KindBool} }
func date(raw, name string) Field  { return Field{Raw: raw, Name: name, Kind: KindDate} }
func stamp(raw, name string) Field { return Field{Raw: raw, Name: name, Kind: KindDateTime} }
func lower(raw string) Field       { return Field{Raw: raw, Name: ValidBetween, Kind: KindRangeLower} }
func upper(raw string) Field       { return Field{Raw: raw, Name: ValidBetween, Kind: KindRangeUpper} }

func validity() []Field {
	return []Field{lower("validity_start_date"), upper("validity_end_date")}
}

func fields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func link(model, tag string, pairs ...string) ModelLink {
	l := ModelLink{Model: model, Tag: tag}
	for n := 0; n+1 < len(pairs); n += 2 {
		l.Fields = append(l.Fields, LinkField{Local: pairs[n], Target: pairs[n+1]})
	}
	return l
}

func optional(l ModelLink) ModelLink {
	l.Optional = true
	return l
}

// Matches reports whether parent is the record child merges onto.
func (p *ParentLink) Matches(child, parent *TaricObject) bool {
	if parent.Tag != p.Tag {
		return false
	}
	for _, f := range p.Fields {
		if child.Text(f.Local) != parent.Text(f.Target) {
			return false
		}
	}
	return true
}

// MergeAttributes returns the child attributes copied onto the parent.
func (p *ParentLink) MergeAttributes(child *TaricObject) map[string]string {
	out := make(map[string]string, len(p.Merge))
	for _, name := range p.Merge {
		if v := child.Text(name); v != "" {
			out[name] = v
		}
	}
	return out
}

// ParentKeys returns the parent-side values identifying child's parent.
func (p *ParentLink) ParentKeys(child *TaricObject) map[string]string {
	out := make(map[string]string, len(p.Fields))
	for _, f := range p.Fields {
		out[f.Target] = child.Text(f.Local)
	}
	return out
}
