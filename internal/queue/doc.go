// Package queue holds work items in memory and exposes helpers for driving
// their lifecycle.
//
// The Store owns every WorkItem for its entire lifetime: readers receive
// copies, and all mutation goes through whole-item replace-by-id, which gives
// last-writer-wins semantics per item. Insertion order is preserved and is
// the processing order (FIFO among pending items); the queue is deliberately
// not persisted across process restarts.
//
// Treat this package as the single source of truth for queue semantics; when
// you add new statuses update the enum here and the engine's transitions.
package queue
