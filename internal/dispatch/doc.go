// Package dispatch orchestrates the handling of one inbound event: decode
// the envelope, build a launch request from the placement context, submit it
// to the orchestration backend, and report the outcome.
//
// Handle is the whole lifecycle. There is no queue, no retry loop, and no
// state carried between invocations; concurrent invocations share only the
// read-only placement context. Every error is absorbed at this boundary and
// converted into exactly one structured outcome log record.
package dispatch
