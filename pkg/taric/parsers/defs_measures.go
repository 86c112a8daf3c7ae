package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewMeasureTypeSeriesParser",
			Tag:           "measure.type.series",
			RecordCode:    "140",
			SubrecordCode: "00",
			Model:         "MeasureTypeSeries",
			Fields: fields([]Field{
				str("measure_type_series_id", "sid"),
				num("measure_type_combination", "measure_type_combination"),
			}, validity()),
			Identity: []string{"sid"},
		},
		typeDescription("NewMeasureTypeSeriesDescriptionParser", "measure.type.series.description", "140", "MeasureTypeSeries", "measure.type.series",
			str("measure_type_series_id", "sid")),
		&Definition{
			Name:          "NewMeasureTypeParser",
			Tag:           "measure.type",
			RecordCode:    "235",
			SubrecordCode: "00",
			Model:         "MeasureType",
			Fields: fields([]Field{
				str("measure_type_id", "sid"),
				num("trade_movement_code", "trade_movement_code"),
				num("priority_code", "priority_code"),
				num("measure_component_applicable_code", "measure_component_applicability_code"),
				num("origin_dest_code", "origin_destination_code"),
				num("order_number_capture_code", "order_number_capture_code"),
				num("measure_explosion_level", "measure_explosion_level"),
				str("measure_type_series_id", "measure_type_series__sid"),
			}, validity()),
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("MeasureTypeSeries", "measure.type.series", "measure_type_series__sid", "sid"),
			},
		},
		typeDescription("NewMeasureTypeDescriptionParser", "measure.type.description", "235", "MeasureType", "measure.type",
			str("measure_type_id", "sid")),
		&Definition{
			Name:          "NewMeasureParser",
			Tag:           "measure",
			RecordCode:    "430",
			SubrecordCode: "00",
			Model:         "Measure",
			Fields: fields([]Field{
				num("measure_sid", "sid"),
				str("measure_type", "measure_type__sid"),
				str("geographical_area", "geographical_area__area_id"),
				num("geographical_area_sid", "geographical_area__sid"),
				str("goods_nomenclature_item_id", "goods_nomenclature__item_id"),
				num("goods_nomenclature_sid", "goods_nomenclature__sid"),
				num("measure_generating_regulation_role", "generating_regulation__role_type"),
				str("measure_generating_regulation_id", "generating_regulation__regulation_id"),
				num("justification_regulation_role", "terminating_regulation__role_type"),
				str("justification_regulation_id", "terminating_regulation__regulation_id"),
				flag("stopped_flag", "stopped"),
				str("ordernumber", "order_number__order_number"),
				str("additional_code_type", "additional_code__type__sid"),
				str("additional_code", "additional_code__code"),
				num("additional_code_sid", "additional_code__sid"),
				num("reduction_indicator", "reduction"),
				num("export_refund_nomenclature_sid", "export_refund_nomenclature_sid"),
			}, validity()),
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("MeasureType", "measure.type", "measure_type__sid", "sid"),
				link("GeographicalArea", "geographical.area", "geographical_area__sid", "sid"),
				optional(link("GoodsNomenclature", "goods.nomenclature", "goods_nomenclature__sid", "sid")),
				link("Regulation", "base.regulation",
					"generating_regulation__role_type", "role_type",
					"generating_regulation__regulation_id", "regulation_id"),
				optional(link("AdditionalCode", "additional.code", "additional_code__sid", "sid")),
				optional(link("QuotaOrderNumber", "quota.order.number", "order_number__order_number", "order_number")),
			},
		},
		&Definition{
			Name:          "NewMeasureComponentParser",
			Tag:           "measure.component",
			RecordCode:    "430",
			SubrecordCode: "05",
			Model:         "MeasureComponent",
			Fields: []Field{
				num("measure_sid", "component_measure__sid"),
				str("duty_expression_id", "duty_expression__sid"),
				str("duty_amount", "duty_amount"),
				str("monetary_unit_code", "monetary_unit__code"),
				str("measurement_unit_code", "component_measurement__measurement_unit__code"),
				str("measurement_unit_qualifier_code", "component_measurement__measurement_unit_qualifier__code"),
			},
			Identity: []string{"component_measure__sid", "duty_expression__sid"},
			Links: []ModelLink{
				link("Measure", "measure", "component_measure__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewMeasureExcludedGeographicalAreaParser",
			Tag:           "measure.excluded.geographical.area",
			RecordCode:    "430",
			SubrecordCode: "15",
			Model:         "MeasureExcludedGeographicalArea",
			Fields: []Field{
				num("measure_sid", "modified_measure__sid"),
				str("excluded_geographical_area", "excluded_geographical_area__area_id"),
				num("geographical_area_sid", "excluded_geographical_area__sid"),
			},
			Identity: []string{"modified_measure__sid", "excluded_geographical_area__sid"},
			Links: []ModelLink{
				link("Measure", "measure", "modified_measure__sid", "sid"),
				link("GeographicalArea", "geographical.area", "excluded_geographical_area__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewFootnoteAssociationMeasureParser",
			Tag:           "footnote.association.measure",
			RecordCode:    "430",
			SubrecordCode: "20",
			Model:         "FootnoteAssociationMeasure",
			Fields: []Field{
				num("measure_sid", "footnoted_measure__sid"),
				str("footnote_type_id", "associated_footnote__footnote_type__footnote_type_id"),
				str("footnote_id", "associated_footnote__footnote_id"),
			},
			Identity: []string{"footnoted_measure__sid", "associated_footnote__footnote_type__footnote_type_id", "associated_footnote__footnote_id"},
			Links: []ModelLink{
				link("Measure", "measure", "footnoted_measure__sid", "sid"),
				link("Footnote", "footnote",
					"associated_footnote__footnote_type__footnote_type_id", "footnote_type__footnote_type_id",
					"associated_footnote__footnote_id", "footnote_id"),
			},
		},
	)
}
