package test

import "github.com/tigerroll/tamato/pkg/taric/domain"

// As returns a copy of r with update type u.
func (r Record) As(u domain.UpdateType) Record {
	r.UpdateType = u
	return r
}

// FootnoteType is a footnote.type CREATE.
func FootnoteType(id string) Record {
	return Create("footnote.type", "100", "00", map[string]string{
		"footnote.type.id":    id,
		"application.code":    "1",
		"validity.start.date": "2021-01-01",
	})
}

// AdditionalCodeType is an additional.code.type CREATE.
func AdditionalCodeType(id string) Record {
	return Create("additional.code.type", "120", "00", map[string]string{
		"additional.code.type.id": id,
		"application.code":        "1",
		"validity.start.date":     "2021-01-01",
	})
}

// AdditionalCode is an additional.code CREATE of type typeID.
func AdditionalCode(sid, typeID, code string) Record {
	return Create("additional.code", "245", "00", map[string]string{
		"additional.code.sid":     sid,
		"additional.code.type.id": typeID,
		"additional.code":         code,
		"validity.start.date":     "2021-01-01",
	})
}

// QuotaOrderNumber is a quota.order.number CREATE.
func QuotaOrderNumber(sid, orderNumber string) Record {
	return Create("quota.order.number", "360", "00", map[string]string{
		"quota.order.number.sid": sid,
		"quota.order.number.id":  orderNumber,
		"validity.start.date":    "2021-01-01",
	})
}

// QuotaDefinition is a quota.definition CREATE on order number orderSID.
func QuotaDefinition(sid, orderSID string) Record {
	return Create("quota.definition", "370", "00", map[string]string{
		"quota.definition.sid":   sid,
		"quota.order.number.sid": orderSID,
		"quota.order.number.id":  "091234",
		"volume":                 "1000",
		"initial.volume":         "1000",
		"maximum.precision":      "3",
		"critical.state":         "N",
		"critical.threshold":     "90",
		"validity.start.date":    "2021-01-01",
		"validity.end.date":      "2021-12-31",
	})
}

// QuotaBalanceEvent is a quota.balance.event CREATE.
func QuotaBalanceEvent(definitionSID, occurred string) Record {
	return Create("quota.balance.event", "375", "00", map[string]string{
		"quota.definition.sid": definitionSID,
		"occurrence.timestamp": occurred,
		"old.balance":          "1000",
		"new.balance":          "900",
		"imported.amount":      "100",
	})
}

// GoodsNomenclature is a goods.nomenclature CREATE.
func GoodsNomenclature(sid, itemID string) Record {
	return Create("goods.nomenclature", "400", "00", map[string]string{
		"goods.nomenclature.sid":     sid,
		"goods.nomenclature.item.id": itemID,
		"producline.suffix":          "80",
		"statistical.indicator":      "0",
		"validity.start.date":        "2021-01-01",
	})
}

// GoodsNomenclatureDescriptionPeriod is the period child of description periodSID.
func GoodsNomenclatureDescriptionPeriod(periodSID, gnSID, itemID string) Record {
	return Create("goods.nomenclature.description.period", "400", "10", map[string]string{
		"goods.nomenclature.description.period.sid": periodSID,
		"goods.nomenclature.sid":                    gnSID,
		"goods.nomenclature.item.id":                itemID,
		"productline.suffix":                        "80",
		"validity.start.date":                       "2021-01-01",
	})
}

// GoodsNomenclatureDescription is a goods.nomenclature.description CREATE.
func GoodsNomenclatureDescription(periodSID, gnSID, itemID, text string) Record {
	return Create("goods.nomenclature.description", "400", "15", map[string]string{
		"goods.nomenclature.description.period.sid": periodSID,
		"language.id":                               "EN",
		"goods.nomenclature.sid":                    gnSID,
		"goods.nomenclature.item.id":                itemID,
		"productline.suffix":                        "80",
		"description":                               text,
	})
}

// Measure is a measure CREATE of measureType on geographical area geoSID
// under base regulation (1, regulationID). extra adds or overrides fields.
func Measure(sid, measureType, geoSID, regulationID string, extra map[string]string) Record {
	fields := map[string]string{
		"measure.sid":                        sid,
		"measure.type":                       measureType,
		"geographical.area.sid":              geoSID,
		"measure.generating.regulation.role": "1",
		"measure.generating.regulation.id":   regulationID,
		"validity.start.date":                "2021-01-01",
	}
	for k, v := range extra {
		fields[k] = v
	}
	return Create("measure", "430", "00", fields)
}
