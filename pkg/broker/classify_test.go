package broker

import "testing"

func TestClassifyClient(t *testing.T) {
	cases := []struct {
		name       string
		clientType string
		agentBuild string
		want       clientClass
	}{
		{"python is producer-lite", "python", "", classProducerLite},
		{"agent is renderer", "agent", "", classRenderer},
		{"empty client_type is renderer", "", "", classRenderer},
		{"unrecognized client_type falls back to renderer", "bogus", "", classRenderer},
		{"client_type=python takes precedence over agent_build producer tag", "python", "build-producer-v3", classProducerLite},
		{"client_type=agent takes precedence over agent_build producer tag", "agent", "nightly-producer", classRenderer},
		{"producer build tag applies when client_type is empty", "", "producer-2024", classProducer},
		{"producer build tag applies when client_type is unrecognized", "bogus", "xproducerx", classProducer},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyClient(c.clientType, c.agentBuild)
			if got != c.want {
				t.Fatalf("classifyClient(%q, %q) = %s, want %s", c.clientType, c.agentBuild, got, c.want)
			}
		})
	}
}

func TestIsProducerLike(t *testing.T) {
	if !isProducerLike(classProducer) {
		t.Fatal("classProducer must be producer-like")
	}
	if !isProducerLike(classProducerLite) {
		t.Fatal("classProducerLite must be producer-like")
	}
	if isProducerLike(classRenderer) {
		t.Fatal("classRenderer must not be producer-like")
	}
	if isProducerLike(classUnknown) {
		t.Fatal("classUnknown must not be producer-like")
	}
}
