// Package scene simulates a differential-drive robot with a depth camera
// looking for a single object on a flat floor. It renders the frames the
// perception pipeline would publish and consumes the controller's velocity
// commands, so a goal can be exercised without hardware.
package scene
