package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewQuotaOrderNumberParser",
			Tag:           "quota.order.number",
			RecordCode:    "360",
			SubrecordCode: "00",
			Model:         "QuotaOrderNumber",
			Fields: fields([]Field{
				num("quota_order_number_sid", "sid"),
				str("quota_order_number_id", "order_number"),
			}, validity()),
			Identity: []string{"sid"},
		},
		&Definition{
			Name:          "NewQuotaOrderNumberOriginParser",
			Tag:           "quota.order.number.origin",
			RecordCode:    "360",
			SubrecordCode: "10",
			Model:         "QuotaOrderNumberOrigin",
			Fields: fields([]Field{
				num("quota_order_number_origin_sid", "sid"),
				num("quota_order_number_sid", "order_number__sid"),
				str("geographical_area_id", "geographical_area__area_id"),
				num("geographical_area_sid", "geographical_area__sid"),
			}, validity()),
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("QuotaOrderNumber", "quota.order.number", "order_number__sid", "sid"),
				link("GeographicalArea", "geographical.area", "geographical_area__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewQuotaOrderNumberOriginExclusionParser",
			Tag:           "quota.order.number.origin.exclusions",
			RecordCode:    "360",
			SubrecordCode: "15",
			Model:         "QuotaOrderNumberOriginExclusion",
			Fields: []Field{
				num("quota_order_number_origin_sid", "origin__sid"),
				num("excluded_geographical_area_sid", "excluded_geographical_area__sid"),
			},
			Identity: []string{"origin__sid", "excluded_geographical_area__sid"},
			Links: []ModelLink{
				link("QuotaOrderNumberOrigin", "quota.order.number.origin", "origin__sid", "sid"),
				link("GeographicalArea", "geographical.area", "excluded_geographical_area__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewQuotaDefinitionParser",
			Tag:           "quota.definition",
			RecordCode:    "370",
			SubrecordCode: "00",
			Model:         "QuotaDefinition",
			Fields: fields([]Field{
				num("quota_definition_sid", "sid"),
				str("quota_order_number_id", "order_number__order_number"),
				num("quota_order_number_sid", "order_number__sid"),
				str("volume", "volume"),
				str("initial_volume", "initial_volume"),
				str("monetary_unit_code", "monetary_unit__code"),
				str("measurement_unit_code", "measurement_unit__code"),
				str("measurement_unit_qualifier_code", "measurement_unit_qualifier__code"),
				num("maximum_precision", "maximum_precision"),
				flag("critical_state", "quota_critical"),
				num("critical_threshold", "quota_critical_threshold"),
				str("description", "description"),
			}, validity()),
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("QuotaOrderNumber", "quota.order.number", "order_number__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewQuotaAssociationParser",
			Tag:           "quota.association",
			RecordCode:    "370",
			SubrecordCode: "05",
			Model:         "QuotaAssociation",
			Fields: []Field{
				num("main_quota_definition_sid", "main_quota__sid"),
				num("sub_quota_definition_sid", "sub_quota__sid"),
				str("relation_type", "sub_quota_relation_type"),
				str("coefficient", "coefficient"),
			},
			Identity: []string{"main_quota__sid", "sub_quota__sid"},
			Links: []ModelLink{
				link("QuotaDefinition", "quota.definition", "main_quota__sid", "sid"),
				link("QuotaDefinition", "quota.definition", "sub_quota__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewQuotaBlockingParser",
			Tag:           "quota.blocking.period",
			RecordCode:    "370",
			SubrecordCode: "10",
			Model:         "QuotaBlocking",
			Fields: []Field{
				num("quota_blocking_period_sid", "sid"),
				num("quota_definition_sid", "quota_definition__sid"),
				lower("blocking_start_date"),
				upper("blocking_end_date"),
				num("blocking_period_type", "blocking_period_type"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links:    []ModelLink{link("QuotaDefinition", "quota.definition", "quota_definition__sid", "sid")},
		},
		&Definition{
			Name:          "NewQuotaSuspensionParser",
			Tag:           "quota.suspension.period",
			RecordCode:    "370",
			SubrecordCode: "15",
			Model:         "QuotaSuspension",
			Fields: []Field{
				num("quota_suspension_period_sid", "sid"),
				num("quota_definition_sid", "quota_definition__sid"),
				lower("suspension_start_date"),
				upper("suspension_end_date"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links:    []ModelLink{link("QuotaDefinition", "quota.definition", "quota_definition__sid", "sid")},
		},
	)
}
