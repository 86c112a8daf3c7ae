package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewRegulationGroupParser",
			Tag:           "regulation.group",
			RecordCode:    "150",
			SubrecordCode: "00",
			Model:         "Group",
			Fields:        fields([]Field{str("regulation_group_id", "group_id")}, validity()),
			Identity:      []string{"group_id"},
		},
		typeDescription("NewRegulationGroupDescriptionParser", "regulation.group.description", "150", "Group", "regulation.group",
			str("regulation_group_id", "group_id")),
		&Definition{
			Name:          "NewBaseRegulationParser",
			Tag:           "base.regulation",
			RecordCode:    "285",
			SubrecordCode: "00",
			Model:         "Regulation",
			Fields: fields([]Field{
				num("base_regulation_role", "role_type"),
				str("base_regulation_id", "regulation_id"),
				date("published_date", "published_at"),
				str("officialjournal_number", "official_journal_number"),
				num("officialjournal_page", "official_journal_page"),
				date("effective_end_date", "effective_end_date"),
				num("community_code", "community_code"),
				str("regulation_group_id", "regulation_group__group_id"),
				num("replacement_indicator", "replacement_indicator"),
				flag("stopped_flag", "stopped"),
				str("information_text", "information_text"),
				flag("approved_flag", "approved"),
			}, validity()),
			Identity: []string{"role_type", "regulation_id"},
			Links: []ModelLink{
				link("Group", "regulation.group", "regulation_group__group_id", "group_id"),
			},
		},
	)
}
