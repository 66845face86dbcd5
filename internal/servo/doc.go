// Package servo implements the approach controller that steers the robot
// towards the target and stops in front of it.
//
// A [Machine] is evaluated once per control tick with a copy of the fused
// observation and moves through four states:
//
//	SEARCHING -> TRACKING -> APPROACHING -> HALTED
//	                ^             |
//	                +-------------+  (target drifted off centre)
//
// [Hysteresis] runs alongside the machine and turns consecutive missed
// ticks into loss events. [VelocityController] is the only place a raw
// control-law output becomes a [Command] for the motor bridge.
//
// Every threshold lives in [Params]; the historical controller variants
// (coarse or fine direction feedback, report-only or aborting loss policy)
// are configurations of the same code.
package servo
