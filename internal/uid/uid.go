/*
Package uid – request correlation IDs.

Generates the per-request invocation ID carried in the Amz-Sdk-Invocation-Id
header so a request can be traced across retries in debug output.
*/
package uid

import (
	"crypto/rand"
	"fmt"
)

// UUID returns an RFC-4122 v4 UUID string.
func UUID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("uid: crypto/rand read failed: " + err.Error())
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // variant bits
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		b[0:4], b[4:6], b[6:8], b[8:10], b[10:])
}
