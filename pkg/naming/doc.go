// Package naming encodes session, device and channel identities into
// folder and file names, and decodes them back.
//
// A name token has the form
//
//	kind.YYYYMMDDTHHMMSS.uuid[.info]
//
// for example "session.20250314T092653.6f1c2d1e-....-....-....-............".
// The timestamp is local time and sorts lexically.
//
// Decoding never fails loudly: a token that does not follow the scheme
// yields ok == false and callers fall back to other handling. The embedded
// timestamp is informational only; a decoded Name carries the decode time
// in Decoded and the raw text in Stamp.
package naming
