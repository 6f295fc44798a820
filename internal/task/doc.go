// Package task defines the to-do domain: tasks, priorities, pending actions
// and the search bar state machine shared by the coordinators and the UI.
//
// # Priorities
//
// Priorities are stored by their upper-case name:
//
//   - HIGH
//   - MEDIUM
//   - LOW
//   - NONE
//
// When used as a sort filter, NONE means "show everything".
//
// # Actions
//
// An Action is the single mutating intent waiting to be dispatched by the
// list coordinator. It is consumed once and reset to NoAction.
package task
