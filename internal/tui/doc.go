// Package tui implements the live terminal dashboard.
//
// The dashboard polls the chlorinator through an injected gather function
// and renders the merged snapshot: water chemistry, system state,
// temperatures, accessory subsystems and lifetime statistics. It refreshes
// itself on a timer and on demand, and stays usable when a cycle returns a
// partial snapshot - fields simply keep their last known values.
package tui
