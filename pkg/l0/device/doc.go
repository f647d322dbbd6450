// Package device implements the home control device: it answers
// LAMP and PLUG commands and reports door status and temperature
// on every loop iteration.
package device
