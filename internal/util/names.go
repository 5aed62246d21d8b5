package util

import (
	"math/rand/v2"
	"time"
)

// Package-level default RNG to avoid allocations when rng is nil
var defaultRNG = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

// CompoundSurnameProbability is the probability (0.0-1.0) of a compound
// first surname such as "de la Fuente".
const CompoundSurnameProbability = 0.10

var (
	// MaleFirstNames is the list of Spanish male first names
	MaleFirstNames = []string{
		"Antonio", "José", "Manuel", "Francisco", "David", "Juan", "Javier", "Daniel",
		"Carlos", "Jesús", "Alejandro", "Miguel", "Rafael", "Pedro", "Pablo", "Ángel",
		"Sergio", "Fernando", "Jorge", "Luis", "Alberto", "Álvaro", "Adrián", "Diego",
		"Raúl", "Enrique", "Ramón", "Vicente", "Iván", "Rubén", "Óscar", "Andrés",
		"Joaquín", "Santiago", "Eduardo", "Víctor", "Roberto", "Jaime", "Mario", "Ignacio",
		"Alfonso", "Salvador", "Ricardo", "Marcos", "Jordi", "Emilio", "Julián", "Gabriel",
		"Tomás", "Agustín", "Gonzalo", "Hugo", "Martín", "Nicolás", "Cristian", "Mateo",
	}

	// FemaleFirstNames is the list of Spanish female first names
	FemaleFirstNames = []string{
		"María", "Carmen", "Ana", "Isabel", "Laura", "Cristina", "Marta", "Lucía",
		"Dolores", "Pilar", "Paula", "Elena", "Sara", "Raquel", "Rosa", "Manuela",
		"Mercedes", "Rocío", "Beatriz", "Julia", "Teresa", "Patricia", "Silvia", "Irene",
		"Andrea", "Encarnación", "Nuria", "Montserrat", "Alba", "Rosario", "Mónica", "Concepción",
		"Sonia", "Sandra", "Alicia", "Marina", "Susana", "Yolanda", "Inmaculada", "Natalia",
		"Margarita", "Claudia", "Eva", "Inés", "Noelia", "Ángela", "Verónica", "Lorena",
		"Esther", "Sofía", "Victoria", "Gloria", "Amparo", "Carolina", "Miriam", "Ainhoa",
	}

	// LastNames is the list of Spanish surnames
	LastNames = []string{
		"García", "Rodríguez", "González", "Fernández", "López", "Martínez", "Sánchez", "Pérez",
		"Gómez", "Martín", "Jiménez", "Hernández", "Ruiz", "Díaz", "Moreno", "Muñoz",
		"Álvarez", "Romero", "Gutiérrez", "Alonso", "Navarro", "Torres", "Domínguez", "Ramos",
		"Vázquez", "Ramírez", "Gil", "Serrano", "Morales", "Molina", "Blanco", "Suárez",
		"Castro", "Ortega", "Delgado", "Ortiz", "Marín", "Rubio", "Núñez", "Medina",
		"Sanz", "Castillo", "Iglesias", "Cortés", "Garrido", "Santos", "Guerrero", "Lozano",
		"Cano", "Cruz", "Méndez", "Flores", "Prieto", "Herrera", "Peña", "León",
		"Márquez", "Cabrera", "Gallego", "Calvo", "Vidal", "Campos", "Reyes", "Vega",
		"Fuentes", "Carrasco", "Diez", "Aguilar", "Caballero", "Nieto", "Santana", "Pascual",
		"Herrero", "Montero", "Lorenzo", "Hidalgo", "Giménez", "Ibáñez", "Ferrer", "Durán",
	}

	// CompoundSurnames are first surnames with a particle
	CompoundSurnames = []string{
		"de la Fuente", "de la Cruz", "del Río", "de León", "de la Torre",
		"del Castillo", "de los Santos", "San Martín", "de la Vega", "del Valle",
	}
)

// GeneratePatientName generates a realistic Spanish patient name based on sex.
//
// Sex should be "Male" or "Female". Invalid values default to "Female".
// If rng is nil, uses shared default RNG.
// Returns "Nombre Apellido1 Apellido2".
func GeneratePatientName(sex string, rng *rand.Rand) string {
	if rng == nil {
		rng = defaultRNG
	}

	var firstName string
	if sex == "Male" {
		firstName = MaleFirstNames[rng.IntN(len(MaleFirstNames))]
	} else {
		firstName = FemaleFirstNames[rng.IntN(len(FemaleFirstNames))]
	}

	first := LastNames[rng.IntN(len(LastNames))]
	if rng.Float64() < CompoundSurnameProbability {
		first = CompoundSurnames[rng.IntN(len(CompoundSurnames))]
	}
	second := LastNames[rng.IntN(len(LastNames))]

	return firstName + " " + first + " " + second
}
