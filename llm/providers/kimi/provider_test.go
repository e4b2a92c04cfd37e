package kimi

import "testing"

func TestModels_Alias(t *testing.T) {
	mi, ok := Models().Lookup("moonshot-v1-auto")
	if !ok || mi.Name != "moonshot-v1-128k" || mi.Provider != ProviderName {
		t.Fatalf("Lookup(%q)=%+v ok=%v", "moonshot-v1-auto", mi, ok)
	}
}

func TestNew_Preset(t *testing.T) {
	n := New()
	if n.Provider != ProviderName {
		t.Fatalf("provider=%q", n.Provider)
	}
	if _, ok := n.Models.Lookup("gpt-4o"); ok {
		t.Fatalf("openai models leaked into the kimi preset")
	}
}
