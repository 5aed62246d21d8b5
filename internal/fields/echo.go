package fields

// ReportTitle is the heading of every generated report.
const ReportTitle = "Informe de Ecocardiografía Transesofágica Intraoperatoria"

// Findings categories, in report order.
const (
	CategoryVentricular = "Función ventricular"
	CategoryValves      = "Válvulas"
	CategoryStructures  = "Septos, pericardio, aorta y aurículas"
	CategoryAdditional  = "Hallazgos adicionales"
	CategoryConclusions = "Conclusiones"
)

func choices(values ...string) []Choice {
	out := make([]Choice, len(values))
	for i, v := range values {
		out[i] = Choice{Value: v, Label: v}
	}
	return out
}

var (
	lvefChoices = choices(
		"Normal (>55%)",
		"Levemente deprimida (45-54%)",
		"Moderadamente deprimida (30-44%)",
		"Severamente deprimida (<30%)",
	)
	rvChoices = choices(
		"Normal",
		"Levemente deprimida",
		"Moderadamente deprimida",
		"Severamente deprimida",
	)
	wallMotionChoices = choices(
		"Normal",
		"Hipocinesia regional",
		"Acinesia regional",
		"Discinesia",
		"Hipocinesia global",
	)
	regurgitationGrades = choices("Ausente", "Trivial", "Leve", "Moderada", "Severa")
	stenosisGrades      = choices("Ausente", "Leve", "Moderada", "Severa")
	effusionGrades      = choices("No", "Leve", "Moderado", "Severo")
	atrialSeptumChoices = choices(
		"Íntegro",
		"Foramen oval permeable",
		"Comunicación interauricular",
		"Aneurisma del septo interauricular",
	)
	appendageChoices = choices("Sin trombo", "Contraste espontáneo", "Trombo")

	additionalFindings = []Choice{
		{Value: "trombo", Label: "Trombo intracavitario"},
		{Value: "vegetacion", Label: "Vegetación"},
		{Value: "aire", Label: "Aire intracavitario"},
		{Value: "contraste_espontaneo", Label: "Contraste espontáneo"},
		{Value: "placa_aortica", Label: "Placa aórtica"},
		{Value: "diseccion", Label: "Disección aórtica"},
		{Value: "masa", Label: "Masa intracardíaca"},
		{Value: "cateter", Label: "Catéter o electrodo intracavitario"},
	}
)

// Valves examined for regurgitation and stenosis, as key prefix and label.
var valves = []struct {
	key   string
	label string
}{
	{"mitral", "mitral"},
	{"aortica", "aórtica"},
	{"tricuspide", "tricúspide"},
	{"pulmonar", "pulmonar"},
}

// Echo returns the registry of the intraoperative ETE report.
func Echo() *Registry {
	specs := []FieldSpec{
		// Patient
		{Section: SectionPatient, Key: "name", Label: "Nombre", Kind: KindText,
			Help: "Nombre completo del paciente."},
		{Section: SectionPatient, Key: "age", Label: "Edad", Kind: KindNumber, Min: 0, Max: 120, Integer: true,
			Help: "Edad en años cumplidos (0-120)."},
		{Section: SectionPatient, Key: "sex", Label: "Sexo", Kind: KindEnum,
			Choices: []Choice{{Value: "Male", Label: "Masculino"}, {Value: "Female", Label: "Femenino"}}},
		{Section: SectionPatient, Key: "mrn", Label: "N° Historia Clínica", Kind: KindText,
			Help: "Número de historia clínica o identificador hospitalario."},
		{Section: SectionPatient, Key: "study_date", Label: "Fecha del estudio", Kind: KindDate},
		{Section: SectionPatient, Key: "surgery", Label: "Tipo de cirugía / diagnóstico", Kind: KindText, Multiline: true},
		{Section: SectionPatient, Key: "weight", Label: "Peso", Kind: KindNumber, Min: 0.5, Max: 300, Unit: "kg"},
		{Section: SectionPatient, Key: "height", Label: "Talla", Kind: KindNumber, Min: 20, Max: 250, Unit: "cm"},
		{Section: SectionPatient, Key: "bsa", Label: "Superficie corporal", Kind: KindNumber, Min: 0.1, Max: 5, Unit: "m²",
			Help: "Si se deja vacía y se indican peso y talla, se calcula con la fórmula de Mosteller."},
		{Section: SectionPatient, Key: "operator", Label: "Operador", Kind: KindText,
			Help: "Ecocardiografista que realiza el estudio."},

		// Study
		{Section: SectionStudy, Key: "date", Label: "Fecha de realización", Kind: KindDate},
		{Section: SectionStudy, Key: "time", Label: "Hora", Kind: KindTime},
		{Section: SectionStudy, Key: "institution", Label: "Institución", Kind: KindText},
		{Section: SectionStudy, Key: "physician", Label: "Médico responsable", Kind: KindText},
		{Section: SectionStudy, Key: "equipment", Label: "Equipo", Kind: KindText},
		{Section: SectionStudy, Key: "probe", Label: "Sonda", Kind: KindText},
		{Section: SectionStudy, Key: "indication", Label: "Indicación clínica", Kind: KindText, Multiline: true},

		// Findings: ventricular function
		{Section: SectionFindings, Category: CategoryVentricular, Key: "lvef",
			Label: "Fracción de eyección (LVEF)", Kind: KindEnum, Choices: lvefChoices},
		{Section: SectionFindings, Category: CategoryVentricular, Key: "cavidades",
			Label: "Tamaño y función de cavidades", Kind: KindText, Multiline: true},
		{Section: SectionFindings, Category: CategoryVentricular, Key: "motilidad",
			Label: "Motilidad segmentaria", Kind: KindEnum, Choices: wallMotionChoices},
		{Section: SectionFindings, Category: CategoryVentricular, Key: "vd_funcion",
			Label: "Función ventricular derecha", Kind: KindEnum, Choices: rvChoices},
		{Section: SectionFindings, Category: CategoryVentricular, Key: "tapse",
			Label: "TAPSE", Kind: KindNumber, Min: 0, Max: 40, Unit: "mm"},
	}

	// Findings: valves
	for _, v := range valves {
		specs = append(specs,
			FieldSpec{Section: SectionFindings, Category: CategoryValves, Key: v.key + "_insuficiencia",
				Label: "Insuficiencia " + v.label, Kind: KindEnum, Choices: regurgitationGrades},
			FieldSpec{Section: SectionFindings, Category: CategoryValves, Key: v.key + "_estenosis",
				Label: "Estenosis " + v.label, Kind: KindEnum, Choices: stenosisGrades},
		)
	}

	specs = append(specs,
		FieldSpec{Section: SectionFindings, Category: CategoryValves, Key: "gradiente_av",
			Label: "Gradiente transvalvular AV", Kind: KindNumber, Min: 0, Max: 200, Unit: "mmHg",
			Help: "Gradiente medio a través de la válvula aórtica."},
		FieldSpec{Section: SectionFindings, Category: CategoryValves, Key: "valvulas",
			Label: "Evaluación valvular", Kind: KindText, Multiline: true},

		// Findings: septa, pericardium, aorta and atria
		FieldSpec{Section: SectionFindings, Category: CategoryStructures, Key: "septo_iv",
			Label: "Septo interventricular", Kind: KindText},
		FieldSpec{Section: SectionFindings, Category: CategoryStructures, Key: "septo_ia",
			Label: "Septo interauricular", Kind: KindEnum, Choices: atrialSeptumChoices},
		FieldSpec{Section: SectionFindings, Category: CategoryStructures, Key: "derrame_pericardico",
			Label: "Derrame pericárdico", Kind: KindEnum, Choices: effusionGrades},
		FieldSpec{Section: SectionFindings, Category: CategoryStructures, Key: "aorta",
			Label: "Aorta", Kind: KindText},
		FieldSpec{Section: SectionFindings, Category: CategoryStructures, Key: "auriculas",
			Label: "Aurículas", Kind: KindText},
		FieldSpec{Section: SectionFindings, Category: CategoryStructures, Key: "orejuela",
			Label: "Orejuela izquierda", Kind: KindEnum, Choices: appendageChoices},

		// Findings: additional
		FieldSpec{Section: SectionFindings, Category: CategoryAdditional, Key: "hallazgos",
			Label: "Hallazgos adicionales", Kind: KindMulti, Choices: additionalFindings},
		FieldSpec{Section: SectionFindings, Category: CategoryAdditional, Key: "otros_hallazgos",
			Label: "Otros hallazgos", Kind: KindText, Multiline: true},

		// Conclusions
		FieldSpec{Section: SectionFindings, Category: CategoryConclusions, Key: "conclusiones",
			Label: "Conclusiones", Kind: KindText, Multiline: true},
	)

	return NewRegistry(ReportTitle, specs...)
}
