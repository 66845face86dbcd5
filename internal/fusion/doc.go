// Package fusion pairs detection frames with depth frames and publishes the
// resulting target [Observation].
//
// The two sensor streams arrive on independent goroutines. A [Fuser] pairs
// them by nearest timestamp inside a tolerance window ([Synchronizer]),
// finds the goal's class in the detection list, averages a depth patch
// around the bounding-box centre ([PatchDepth]) and replaces the shared
// [TargetState] wholesale. The control loop copies that state once per tick.
//
// Depth frames are accepted in two encodings:
//
//   - [Encoding16UC1]: unsigned 16-bit millimetres
//   - [Encoding32FC1]: 32-bit float metres
//
// Frames in any other encoding are rejected with a [*FusionError] and never
// touch the observation.
package fusion
