package broker

import "strings"

// clientClass is the result of classifying a HELLO payload. Kept as a
// small total function over the hello fields, per the design note that
// this classifier must stay pure and exhaustively testable.
type clientClass int

const (
	classUnknown clientClass = iota
	classRenderer
	classProducer
	classProducerLite
)

func (c clientClass) String() string {
	switch c {
	case classRenderer:
		return "renderer"
	case classProducer:
		return "producer"
	case classProducerLite:
		return "producer-lite"
	default:
		return "unknown"
	}
}

// producerBuildTag is the legacy agent_build substring that marks a
// connection as a full producer even when client_type is absent.
const producerBuildTag = "producer"

// classifyClient implements the HELLO classification rule from the
// broker's handshake handling, in the same precedence order as the
// original: client_type=="python" and client_type=="agent" decide the
// class immediately and unconditionally. Only when client_type matches
// neither (including empty) does the legacy agent_build producer-tag
// check get a say, falling back to renderer otherwise.
func classifyClient(clientType, agentBuild string) clientClass {
	switch clientType {
	case "python":
		return classProducerLite
	case "agent":
		return classRenderer
	}
	if strings.Contains(agentBuild, producerBuildTag) {
		return classProducer
	}
	return classRenderer
}

// isProducerLike reports whether a class sources figures rather than
// displaying them (no session-graph window entry).
func isProducerLike(c clientClass) bool {
	return c == classProducer || c == classProducerLite
}
