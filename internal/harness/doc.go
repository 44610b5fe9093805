// Package harness runs scripted café sessions against the real client stack
// and records what happened.
//
// Every scenario gets a fresh in-memory SQLite store, an empty in-process
// document store served over HTTP, and the sync engine and app facade wired
// to them exactly as the CLI wires them. The background sync loop is not
// started: bootstrap, poll and drain run where the flow puts them, so the
// trace is deterministic.
//
// # Scenario Format
//
//	name: offline_checkout_drains_on_reconnect
//	description: "What this scenario validates"
//	start_offline: true
//	drain: probe
//	remote:                      # seeded before the flow, not traced
//	  orders/T9: { ... }
//	flow:
//	  - action: checkout
//	    args: { table: 3, items: [{ id: c2, quantity: 2 }] }
//	    expect:
//	      case: ok               # or an error code such as TABLE_OUT_OF_RANGE
//	      result: { queued: true }
//	assertions:
//	  - type: request_count
//	    method: PUT
//	    path: /orders/ORD000001.json
//	    count: 1
//	  - type: final_state
//	    table: remote_orders
//	    where: { id: ORD000001 }
//	    expect: { status: pending }
//
// # Trace
//
// Each step adds a "step" event, one "request" event per request the
// document store received while the step ran, and an "outcome" event with
// the step's case and result. Golden files hold the canonical JSON of the
// trace (see AssertGolden).
//
// # Determinism
//
// Order ids are ORD000001, ORD000002, ...; cart lines are line-000001, ...;
// the first order is stamped ScenarioStart and each later one a minute
// after the previous.
package harness
