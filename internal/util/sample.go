package util

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/mrsinham/echoreport/internal/fields"
)

// Sample is a filled-in session, keyed by section then field key. Values use
// the forms a session file carries: strings, ints, floats and string lists.
type Sample map[fields.Section]map[string]any

var (
	institutions = []string{
		"Hospital Universitario La Paz", "Hospital Clínic de Barcelona",
		"Hospital Universitario Virgen del Rocío", "Hospital General Universitario Gregorio Marañón",
		"Hospital Universitario de Cruces", "Hospital Universitario La Fe",
	}
	surgeries = []string{
		"Recambio valvular aórtico por estenosis aórtica severa",
		"Revascularización coronaria (3 injertos)",
		"Reparación valvular mitral por prolapso de P2",
		"Cirugía de Bentall por aneurisma de aorta ascendente",
		"Cierre de comunicación interauricular",
		"Trasplante cardíaco",
	}
	equipment = []string{"Philips EPIQ CVx", "GE Vivid E95", "Siemens Acuson SC2000", "Canon Aplio i900"}
	probes    = []string{"X8-2t", "6VT-D", "Z6Ms", "X7-2t"}

	indications = []string{
		"Monitorización intraoperatoria de la función ventricular.",
		"Evaluación de la reparación valvular tras la salida de circulación extracorpórea.",
		"Valoración de prótesis valvular y descartar fuga paravalvular.",
		"Guía de canulación y descartar aire intracavitario.",
	}
	cavities = []string{
		"Ventrículo izquierdo de tamaño normal.",
		"Ventrículo izquierdo dilatado con hipertrofia concéntrica.",
		"Cavidades izquierdas de tamaño normal.\nVentrículo derecho levemente dilatado.",
	}
	valveNotes = []string{
		"Válvula aórtica trivalva, calcificada.",
		"Prótesis mecánica normofuncionante, sin fugas.",
		"Prolapso del velo posterior mitral (P2).",
	}
	conclusions = []string{
		"Función biventricular conservada. Sin complicaciones inmediatas.",
		"Reparación mitral competente sin insuficiencia residual.",
		"Prótesis aórtica normofuncionante. Gradiente medio adecuado.",
		"Disfunción ventricular izquierda moderada tras la salida de bomba.\nSe inicia soporte inotrópico.",
	}
)

// GenerateSample builds a complete sample session for reg, reproducible from
// seed. Dates and times derive from at.
func GenerateSample(reg *fields.Registry, seed uint64, at time.Time) Sample {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	out := make(Sample)
	for _, sec := range fields.Sections() {
		out[sec] = make(map[string]any)
	}

	sex := "Female"
	if rng.IntN(2) == 0 {
		sex = "Male"
	}
	height := 150 + rng.IntN(26)
	if sex == "Male" {
		height += 12
	}
	weight := math.Round((50+rng.Float64()*45)*10) / 10

	p := out[fields.SectionPatient]
	p["name"] = GeneratePatientName(sex, rng)
	p["age"] = 35 + rng.IntN(50)
	p["sex"] = sex
	p["mrn"] = fmt.Sprintf("HC-%06d", rng.IntN(1000000))
	p["study_date"] = at.Format(fields.DateLayout)
	p["surgery"] = pick(rng, surgeries)
	p["weight"] = weight
	p["height"] = height
	p["operator"] = "Dr. " + GeneratePatientName("Male", rng)

	s := out[fields.SectionStudy]
	s["date"] = at.Format(fields.DateLayout)
	s["time"] = at.Format(fields.TimeLayout)
	s["institution"] = pick(rng, institutions)
	s["physician"] = "Dra. " + GeneratePatientName("Female", rng)
	s["equipment"] = pick(rng, equipment)
	s["probe"] = pick(rng, probes)
	s["indication"] = pick(rng, indications)

	f := out[fields.SectionFindings]
	for _, spec := range reg.Fields(fields.SectionFindings) {
		switch spec.Kind {
		case fields.KindEnum:
			f[spec.Key] = GenerateGrade(spec.Choices, rng)
		case fields.KindMulti:
			f[spec.Key] = pickMany(rng, spec.Choices, rng.IntN(3))
		case fields.KindNumber:
			f[spec.Key] = math.Round((spec.Min+rng.Float64()*(spec.Max-spec.Min)/2)*10) / 10
		}
	}
	f["cavidades"] = pick(rng, cavities)
	f["valvulas"] = pick(rng, valveNotes)
	f["septo_iv"] = "Sin defectos"
	f["aorta"] = "Aorta ascendente de calibre normal"
	f["auriculas"] = "Aurícula izquierda de tamaño normal"
	f["conclusiones"] = pick(rng, conclusions)

	return out
}

// GenerateGrade picks a choice value with a distribution skewed to the first,
// normal, grade: 70% first, 20% second, 10% any later one.
func GenerateGrade(choices []fields.Choice, rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}
	if len(choices) == 0 {
		return ""
	}

	r := rng.Float64()
	switch {
	case r < 0.70 || len(choices) == 1:
		return choices[0].Value
	case r < 0.90 || len(choices) == 2:
		return choices[1].Value
	default:
		return choices[2+rng.IntN(len(choices)-2)].Value
	}
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.IntN(len(list))]
}

func pickMany(rng *rand.Rand, choices []fields.Choice, n int) []string {
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(choices))[:min(n, len(choices))] {
		out = append(out, choices[i].Value)
	}
	return out
}
