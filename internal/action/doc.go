// Package action owns the lifecycle of approach goals.
//
// A [Server] validates each request against the class vocabulary, rejects it
// without allocating anything when the class is unknown or another goal is
// still executing, and otherwise starts one execution goroutine per goal:
//
//	PENDING -> ACCEPTED | REJECTED
//	ACCEPTED -> EXECUTING -> SUCCEEDED | ABORTED | CANCELED
//
// Each tick of the execution loop handles a pending cancellation first, then
// runs the loss counter and the approach machine, publishes one velocity
// command and one feedback line. The terminal [Result] is delivered exactly
// once, after the feedback channel has been closed, and a zero-velocity
// command is always the last command published for the goal.
//
// Sensor callbacks reach the active goal through [Server.OnDetections] and
// [Server.OnDepth]; frames that arrive while no goal is executing are dropped.
package action
