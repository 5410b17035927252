// Package viz is the terminal front end for Kuramoto runs.
//
//   - [Model]: live view of the phases on the unit circle with the mean
//     field and an r(t) chart
//   - [NewPicker]: preset menu that edits couplings before launching
//   - [Canvas]: braille pixel canvas, also used for static ASCII drawings
//
// # Key Bindings
//
//	Space - pause or resume
//	R     - restore initial phases and couplings
//	Tab   - select coupling, Up/Down to tune it
//	[ ]   - step through recorded history
//	G     - toggle GIF recording
//	T     - cycle colour themes
//	?     - help overlay
package viz
