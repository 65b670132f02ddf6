// Package billing holds the bill record and the pure rule that derives
// consumption and amount from two meter readings and a rate.
//
// A bill's units consumed and amount are never set directly. They are
// recomputed through ComputeCharge whenever readings or the rate change.
//
// Status lifecycle:
//
//	pending -> paid     (a payment is recorded)
//	pending -> overdue  (the due date passes, see the overdue sweep)
//	paid    -> pending  (an admin marks the settling payment failed)
package billing
