package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewFootnoteTypeParser",
			Tag:           "footnote.type",
			RecordCode:    "100",
			SubrecordCode: "00",
			Model:         "FootnoteType",
			Fields: fields([]Field{
				str("footnote_type_id", "footnote_type_id"),
				num("application_code", "application_code"),
			}, validity()),
			Identity:  []string{"footnote_type_id"},
			NoUpdates: true,
		},
		typeDescription("NewFootnoteTypeDescriptionParser", "footnote.type.description", "100", "FootnoteType", "footnote.type",
			str("footnote_type_id", "footnote_type_id")),
		&Definition{
			Name:          "NewFootnoteParser",
			Tag:           "footnote",
			RecordCode:    "200",
			SubrecordCode: "00",
			Model:         "Footnote",
			Fields: fields([]Field{
				str("footnote_type_id", "footnote_type__footnote_type_id"),
				str("footnote_id", "footnote_id"),
			}, validity()),
			Identity: []string{"footnote_type__footnote_type_id", "footnote_id"},
			Links: []ModelLink{
				link("FootnoteType", "footnote.type", "footnote_type__footnote_type_id", "footnote_type_id"),
			},
		},
		descriptionPeriod("NewFootnoteDescriptionPeriodParser", "footnote.description.period", "200", "05",
			"FootnoteDescription", "footnote.description", "footnote_description_period_sid",
			str("footnote_type_id", "described_footnote__footnote_type__footnote_type_id"),
			str("footnote_id", "described_footnote__footnote_id")),
		&Definition{
			Name:          "NewFootnoteDescriptionParser",
			Tag:           "footnote.description",
			RecordCode:    "200",
			SubrecordCode: "10",
			Model:         "FootnoteDescription",
			Fields: []Field{
				num("footnote_description_period_sid", "sid"),
				str("language_id", "language_id"),
				str("footnote_type_id", "described_footnote__footnote_type__footnote_type_id"),
				str("footnote_id", "described_footnote__footnote_id"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("Footnote", "footnote",
					"described_footnote__footnote_type__footnote_type_id", "footnote_type__footnote_type_id",
					"described_footnote__footnote_id", "footnote_id"),
			},
		},
	)
}

// typeDescription declares the description record of a type table. It is
// merged onto the type by the key field and carries no validity of its own.
func typeDescription(name, tag, recordCode, model, parentTag string, key Field) *Definition {
	return &Definition{
		Name:          name,
		Tag:           tag,
		RecordCode:    recordCode,
		SubrecordCode: "05",
		Model:         model,
		Fields:        []Field{key, str("language_id", "language_id"), str("description", "description")},
		Identity:      []string{key.Name},
		Parent: &ParentLink{
			Model:  model,
			Tag:    parentTag,
			Fields: []LinkField{{Local: key.Name, Target: key.Name}},
			Merge:  []string{"description"},
		},
	}
}

// descriptionPeriod declares the period record whose start date becomes the
// validity of the description it shares a sid with.
func descriptionPeriod(name, tag, recordCode, subrecordCode, model, parentTag, sidRaw string, described ...Field) *Definition {
	return &Definition{
		Name:          name,
		Tag:           tag,
		RecordCode:    recordCode,
		SubrecordCode: subrecordCode,
		Model:         model,
		Fields:        fields([]Field{num(sidRaw, "sid"), lower("validity_start_date")}, described),
		Identity:      []string{"sid"},
		Parent: &ParentLink{
			Model:    model,
			Tag:      parentTag,
			Fields:   []LinkField{{Local: "sid", Target: "sid"}},
			Merge:    []string{ValidBetween},
			Required: true,
		},
	}
}
