// Package command implements the lifecycle of asynchronous device commands.
//
// Each request produces a Command (held by whoever executes the request) and
// a Promise (held by the caller that issued it). The command moves from
// Pending to exactly one of Done, Canceled or Failed:
//
//	cmd, promise := command.New(req, command.WithSink(core))
//	go func() {
//	    defer cmd.Close() // fails with the default error if never resolved
//	    cmd.SendProgress(10)
//	    cmd.SendProgress(60)
//	    cmd.SendDone(result)
//	}()
//	resp, err := promise.Wait(ctx, func(p uint8) { fmt.Println(p) })
//
// # Ordering
//
// Progress events reach the promise in the order they were sent and always
// before the terminal event. Progress after resolution is dropped. A second
// terminal call returns ErrAlreadyResolved and is logged; the first outcome
// stands.
//
// # Progress Slices
//
// SendProgressPart maps part/whole onto a [shift, limit] window so a sub-task
// can report into its slice of an overall operation; Slice computes the
// window for the i-th of n sub-tasks.
//
// # Cancellation
//
// Promise.Cancel invokes the hook installed with Command.OnCancel. It is
// advisory: the owner may still complete or fail the command.
//
// # Tracking
//
// Tracker allocates request ids, routes Cancel by id, applies a timeout and
// fails all outstanding commands with CoreDisconnected on Close.
package command
