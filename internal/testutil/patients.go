package testutil

import "github.com/roach88/clinicflow/internal/patient"

// FixtureEntry is the entry date given to every Patient fixture.
var FixtureEntry = patient.Date{Day: 1, Month: 1, Year: 2024}

// Patient builds a record entered on FixtureEntry.
func Patient(name string, age int, id string) patient.Record {
	return patient.New(name, age, id, FixtureEntry)
}
