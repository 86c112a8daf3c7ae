package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewGeographicalAreaParser",
			Tag:           "geographical.area",
			RecordCode:    "250",
			SubrecordCode: "00",
			Model:         "GeographicalArea",
			Fields: fields([]Field{
				num("geographical_area_sid", "sid"),
				str("geographical_area_id", "area_id"),
				num("geographical_code", "area_code"),
				num("parent_geographical_area_group_sid", "parent__sid"),
			}, validity()),
			Identity: []string{"sid"},
			Links: []ModelLink{
				optional(link("GeographicalArea", "geographical.area", "parent__sid", "sid")),
			},
		},
		descriptionPeriod("NewGeographicalAreaDescriptionPeriodParser", "geographical.area.description.period", "250", "05",
			"GeographicalAreaDescription", "geographical.area.description", "geographical_area_description_period_sid",
			num("geographical_area_sid", "described_geographicalarea__sid"),
			str("geographical_area_id", "described_geographicalarea__area_id")),
		&Definition{
			Name:          "NewGeographicalAreaDescriptionParser",
			Tag:           "geographical.area.description",
			RecordCode:    "250",
			SubrecordCode: "10",
			Model:         "GeographicalAreaDescription",
			Fields: []Field{
				num("geographical_area_description_period_sid", "sid"),
				str("language_id", "language_id"),
				num("geographical_area_sid", "described_geographicalarea__sid"),
				str("geographical_area_id", "described_geographicalarea__area_id"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("GeographicalArea", "geographical.area", "described_geographicalarea__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewGeographicalMembershipParser",
			Tag:           "geographical.area.membership",
			RecordCode:    "250",
			SubrecordCode: "15",
			Model:         "GeographicalMembership",
			Fields: fields([]Field{
				num("geographical_area_sid", "member__sid"),
				num("geographical_area_group_sid", "geo_group__sid"),
			}, validity()),
			Identity: []string{"member__sid", "geo_group__sid"},
			Links: []ModelLink{
				link("GeographicalArea", "geographical.area", "member__sid", "sid"),
				link("GeographicalArea", "geographical.area", "geo_group__sid", "sid"),
			},
		},
	)
}
