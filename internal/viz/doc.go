// Package viz renders goal runs for the terminal.
//
//   - lipgloss styles for approach states and goal results
//   - [Plot]: asciigraph charts of a recorded run
//   - [Map]: Braille top-down view of the robot, its trail and the target
package viz
