// Package certificates decides when course certificates may be shown to a
// learner and runs the work of a certificate generation request.
//
// Policy answers visibility questions from a course, a certificate record,
// the learner's enrollment and an injected flag snapshot. Generator carries a
// single generation request through its precondition and reports an Outcome
// for the scheduler driving it.
package certificates
