// Package bridge forwards velocity commands to the motor controller board
// over a serial line, one JSON object per command.
package bridge
