package packet

// Client opcodes.
const (
	C_OPCODE_VERSION byte = 0x01 // protocol handshake
	C_OPCODE_CREATE  byte = 0x02 // create a named entity
	C_OPCODE_GET     byte = 0x03 // fetch one entity by id
	C_OPCODE_COUNT   byte = 0x04 // fetch registry length
)

// Server opcodes.
const (
	S_OPCODE_VERSION byte = 0x81 // handshake reply
	S_OPCODE_CREATED byte = 0x82 // creation result to the caller
	S_OPCODE_ENTITY  byte = 0x83 // entity lookup result
	S_OPCODE_COUNT   byte = 0x84 // registry length
	S_OPCODE_SPAWN   byte = 0x85 // creation broadcast to other sessions
	S_OPCODE_ERROR   byte = 0xFF // request-level failure (e.g. unknown id)
)

// ProtocolVersion is echoed in the handshake. Bumped on wire changes.
const ProtocolVersion uint16 = 1
