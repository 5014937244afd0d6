// Package memory provides process-lifetime implementations of driven ports.
//
// ThrottleStore is the default refresh throttle backend: losing it on restart
// only allows one extra refresh per key. CredentialsStore keeps a token for
// callers that must not touch the database, such as adapter tests.
package memory
