package lnwire

// MaxMessagePayload is the maximum allowed length, in bytes, for a message
// payload after decryption, per the Brontide framing rule in §4.4 of the
// bridge's transport design: the 2-byte big-endian length prefix can
// encode at most 65535.
const MaxMessagePayload = 65535
