// Package flow declares the asynchronous stream protocol the library is
// built on: a Publisher hands a Subscription to each Subscriber, the
// Subscriber signals demand with Request, and the Publisher answers with at
// most that many OnNext calls followed by at most one of OnError or
// OnComplete.
//
// The rules every participant must follow:
//
//   - OnSubscribe is the first signal a Subscriber receives.
//   - OnNext is never delivered beyond the demand requested so far.
//   - OnError and OnComplete are mutually exclusive and terminal; nothing
//     follows them.
//   - Signals to one Subscriber are delivered serially, never concurrently.
//   - Request(n) with n <= 0 is a contract violation that the Publisher
//     reports through OnError.
//   - After Cancel the Publisher eventually stops signalling.
//
// The package holds interfaces and small adapters only; engines supply the
// implementations.
package flow
