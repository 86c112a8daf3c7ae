package parsers

func init() {
	Register(
		&Definition{
			Name:          "NewCertificateTypeParser",
			Tag:           "certificate.type",
			RecordCode:    "110",
			SubrecordCode: "00",
			Model:         "CertificateType",
			Fields:        fields([]Field{str("certificate_type_code", "sid")}, validity()),
			Identity:      []string{"sid"},
		},
		typeDescription("NewCertificateTypeDescriptionParser", "certificate.type.description", "110", "CertificateType", "certificate.type",
			str("certificate_type_code", "sid")),
		&Definition{
			Name:          "NewAdditionalCodeTypeParser",
			Tag:           "additional.code.type",
			RecordCode:    "120",
			SubrecordCode: "00",
			Model:         "AdditionalCodeType",
			Fields: fields([]Field{
				str("additional_code_type_id", "sid"),
				num("application_code", "application_code"),
			}, validity()),
			Identity: []string{"sid"},
		},
		typeDescription("NewAdditionalCodeTypeDescriptionParser", "additional.code.type.description", "120", "AdditionalCodeType", "additional.code.type",
			str("additional_code_type_id", "sid")),
		&Definition{
			Name:          "NewCertificateParser",
			Tag:           "certificate",
			RecordCode:    "205",
			SubrecordCode: "00",
			Model:         "Certificate",
			Fields: fields([]Field{
				str("certificate_type_code", "certificate_type__sid"),
				str("certificate_code", "sid"),
			}, validity()),
			Identity: []string{"certificate_type__sid", "sid"},
			Links:    []ModelLink{link("CertificateType", "certificate.type", "certificate_type__sid", "sid")},
		},
		descriptionPeriod("NewCertificateDescriptionPeriodParser", "certificate.description.period", "205", "05",
			"CertificateDescription", "certificate.description", "certificate_description_period_sid",
			str("certificate_type_code", "described_certificate__certificate_type__sid"),
			str("certificate_code", "described_certificate__sid")),
		&Definition{
			Name:          "NewCertificateDescriptionParser",
			Tag:           "certificate.description",
			RecordCode:    "205",
			SubrecordCode: "10",
			Model:         "CertificateDescription",
			Fields: []Field{
				num("certificate_description_period_sid", "sid"),
				str("language_id", "language_id"),
				str("certificate_type_code", "described_certificate__certificate_type__sid"),
				str("certificate_code", "described_certificate__sid"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links: []ModelLink{
				link("Certificate", "certificate",
					"described_certificate__certificate_type__sid", "certificate_type__sid",
					"described_certificate__sid", "sid"),
			},
		},
		&Definition{
			Name:          "NewAdditionalCodeParser",
			Tag:           "additional.code",
			RecordCode:    "245",
			SubrecordCode: "00",
			Model:         "AdditionalCode",
			Fields: fields([]Field{
				num("additional_code_sid", "sid"),
				str("additional_code_type_id", "type__sid"),
				str("additional_code", "code"),
			}, validity()),
			Identity: []string{"sid"},
			Links:    []ModelLink{link("AdditionalCodeType", "additional.code.type", "type__sid", "sid")},
		},
		descriptionPeriod("NewAdditionalCodeDescriptionPeriodParser", "additional.code.description.period", "245", "05",
			"AdditionalCodeDescription", "additional.code.description", "additional_code_description_period_sid",
			num("additional_code_sid", "described_additionalcode__sid"),
			str("additional_code_type_id", "described_additionalcode__type__sid"),
			str("additional_code", "described_additionalcode__code")),
		&Definition{
			Name:          "NewAdditionalCodeDescriptionParser",
			Tag:           "additional.code.description",
			RecordCode:    "245",
			SubrecordCode: "10",
			Model:         "AdditionalCodeDescription",
			Fields: []Field{
				num("additional_code_description_period_sid", "sid"),
				str("language_id", "language_id"),
				num("additional_code_sid", "described_additionalcode__sid"),
				str("additional_code_type_id", "described_additionalcode__type__sid"),
				str("additional_code", "described_additionalcode__code"),
				str("description", "description"),
			},
			Identity: []string{"sid"},
			Links:    []ModelLink{link("AdditionalCode", "additional.code", "described_additionalcode__sid", "sid")},
		},
	)
}
