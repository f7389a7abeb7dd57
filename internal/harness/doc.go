// Package harness runs YAML scenarios against a clinic engine and checks the
// outcome.
//
// A scenario admits its setup patients, runs its flow steps one at a time,
// and then evaluates assertions on the final state. Every step is recorded in
// a trace; the trace renders to a plain-text transcript that golden files
// pin down byte for byte.
//
// Each run gets a fresh engine with a fixed session token and a fresh
// in-memory store. After the flow, the registry is written to the store and
// read back, so the round trip is checked on every scenario.
//
// Scenario format:
//
//	name: enqueue-attend-undo
//	description: undo of an attend puts the patient back at the head
//	session: s-1
//	setup:
//	  - {name: Ana, age: 30, id: "111"}
//	flow:
//	  - {op: enqueue, name: Ana}
//	  - {op: attend, expect: {patient: Ana}}
//	  - {op: undo}
//	assertions:
//	  - {type: queue_order, names: [Ana]}
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
package harness
