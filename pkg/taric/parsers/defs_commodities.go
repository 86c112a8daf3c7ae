package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewGoodsNomenclatureParser",
			Tag:           "goods.nomenclature",
			RecordCode:    "400",
			SubrecordCode: "00",
			Model:         "GoodsNomenclature",
			Fields: fields([]Field{
				num("goods_nomenclature_sid", "sid"),
				str("goods_nomenclature_item_id", "item_id"),
				str("producline_suffix", "suffix"),
				num("statistical_indicator", "statistical"),
			}, validity()),
			Identity: []string{"sid"},
		},
		&Definition{
			Name:          "NewGoodsNomenclatureIndentParser",
			Tag:           "goods.nomenclature.indent",
			RecordCode:    "400",
			SubrecordCode: "05",
			Model:         "GoodsNomenclatureIndent",
			Fields: []Field{
				num("goods_nomenclature_indent_sid", "sid"),
				num("goods_nomenclature_sid", "indented_goods_nomenclature__sid"),
				lower("validity_start_date"),
				num("number_indents", "indent"),
				str("goods_nomenclature_item_id", "indented_goods_nomenclature__item_id"),
				str("productline_suffix", "indented_goods_nomenclature__suffix"),
			},
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("GoodsNomenclature", "goods.nomenclature", "indented_goods_nomenclature__sid", "sid"),
			},
		},
		descriptionPeriod("NewGoodsNomenclatureDescriptionPeriodParser", "goods.nomenclature.description.period", "400", "10",
			"GoodsNomenclatureDescription", "goods.nomenclature.description", "goods_nomenclature_description_period_sid",
			num("goods_nomenclature_sid", "described_goods_nomenclature__sid"),
			str("goods_nomenclature_item_id", "described_goods_nomenclature__item_id"),
			str("productline_suffix", "described_goods_nomenclature__suffix")),
		&Definition{
			Name:          "NewGoodsNomenclatureDescriptionParser",
			Tag:           "goods.nomenclature.description",
			RecordCode:    "400",
			SubrecordCode: "15",
			Model:         "GoodsNomenclatureDescription",
			Fields: []Field{
				num("goods_nomenclature_description_period_sid", "sid"),
				str("language_id", "language_id"),
				num("goods_nomenclature_sid", "described_goods_nomenclature__sid"),
				str("goods_nomenclature_item_id", "described_goods_nomenclature__item_id"),
				str("productline_suffix", "described_goods_nomenclature__suffix"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("GoodsNomenclature", "goods.nomenclature", "described_goods_nomenclature__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewGoodsNomenclatureOriginParser",
			Tag:           "goods.nomenclature.origin",
			RecordCode:    "400",
			SubrecordCode: "35",
			Model:         "GoodsNomenclatureOrigin",
			Fields: []Field{
				num("goods_nomenclature_sid", "new_goods_nomenclature__sid"),
				str("derived_goods_nomenclature_item_id", "derived_from_goods_nomenclature__item_id"),
				str("derived_productline_suffix", "derived_from_goods_nomenclature__suffix"),
				str("goods_nomenclature_item_id", "new_goods_nomenclature__item_id"),
				str("productline_suffix", "new_goods_nomenclature__suffix"),
			},
			Identity: []string{"new_goods_nomenclature__sid", "derived_from_goods_nomenclature__item_id", "derived_from_goods_nomenclature__suffix"},
			Links: []ModelLink{
				link("GoodsNomenclature", "goods.nomenclature", "new_goods_nomenclature__sid", "sid"),
				link("GoodsNomenclature", "goods.nomenclature",
					"derived_from_goods_nomenclature__item_id", "item_id",
					"derived_from_goods_nomenclature__suffix", "suffix"),
			},
		},
		&Definition{
			Name:          "NewGoodsNomenclatureSuccessorParser",
			Tag:           "goods.nomenclature.successor",
			RecordCode:    "400",
			SubrecordCode: "40",
			Model:         "GoodsNomenclatureSuccessor",
			Fields: []Field{
				num("goods_nomenclature_sid", "replaced_goods_nomenclature__sid"),
				str("absorbed_goods_nomenclature_item_id", "absorbed_into_goods_nomenclature__item_id"),
				str("absorbed_productline_suffix", "absorbed_into_goods_nomenclature__suffix"),
				str("goods_nomenclature_item_id", "replaced_goods_nomenclature__item_id"),
				str("productline_suffix", "replaced_goods_nomenclature__suffix"),
			},
			Identity: []string{"replaced_goods_nomenclature__sid", "absorbed_into_goods_nomenclature__item_id", "absorbed_into_goods_nomenclature__suffix"},
			Links: []ModelLink{
				link("GoodsNomenclature", "goods.nomenclature", "replaced_goods_nomenclature__sid", "sid"),
				link("GoodsNomenclature", "goods.nomenclature",
					"absorbed_into_goods_nomenclature__item_id", "item_id",
					"absorbed_into_goods_nomenclature__suffix", "suffix"),
			},
		},
		&Definition{
			Name:          "NewFootnoteAssociationGoodsNomenclatureParser",
			Tag:           "footnote.association.goods.nomenclature",
			RecordCode:    "400",
			SubrecordCode: "20",
			Model:         "FootnoteAssociationGoodsNomenclature",
			Fields: fields([]Field{
				num("goods_nomenclature_sid", "goods_nomenclature__sid"),
				str("footnote_type", "associated_footnote__footnote_type__footnote_type_id"),
				str("footnote_id", "associated_footnote__footnote_id"),
			}, validity()),
			Identity: []string{"goods_nomenclature__sid", "associated_footnote__footnote_type__footnote_type_id", "associated_footnote__footnote_id"},
			Links: []ModelLink{
				link("GoodsNomenclature", "goods.nomenclature", "goods_nomenclature__sid", "sid"),
				link("Footnote", "footnote",
					"associated_footnote__footnote_type__footnote_type_id", "footnote_type__footnote_type_id",
					"associated_footnote__footnote_id", "footnote_id"),
			},
		},
	)
}
