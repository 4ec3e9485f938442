// Package engine implements weft's incremental reconciliation engine.
//
// A Root owns one render target. Render seeds a work-in-progress pass; ticks
// walk the pass one fiber at a time, yielding when the idle slice runs low,
// and commit the finished pass to the host in one uninterrupted run.
//
// ARCHITECTURE:
//
// Fibers and generations:
// Every tree position in a pass is a fiber, stored in an arena and linked by
// fiberRef handles (parent, child, sibling, alternate). Each pass allocates
// into its own generation. Abandoning a pass drops its generation; a commit
// drops the generation it superseded. Refs into a dropped generation resolve
// to nil, so nothing can reach a discarded fiber.
//
// Render phase (interruptible):
//  1. Render or a state setter starts a pass: a fresh root fiber whose
//     alternate is the committed root. Any in-flight pass is abandoned.
//  2. Tick steps performUnitOfWork in strict pre-order. Component fibers are
//     rendered with their local state; host fibers get a detached handle.
//  3. reconcileChildren diffs each fiber's new child descriptors against the
//     alternate's child chain by position only.
//
// Commit phase (uninterruptible):
//  1. Deletions are removed from their nearest host ancestor.
//  2. Placements are attached and updates applied in pre-order.
//  3. The pass becomes the committed baseline.
//
// Host failures are not retried. They abort the pass and surface from Tick
// as a *PassError. A failure before the commit touches the host leaves the
// previous baseline valid. A failure after some mutations were applied
// leaves the host matching neither tree; the Root is then diverged and
// refuses further passes with ErrHostDiverged until Render remounts it into
// a new container.
//
// Local state:
// UseState correlates cells across renders by call order only. Calls must
// be unconditional and in a fixed order; WithHookOrderCheck detects changes
// in the number or types of cells.
package engine
