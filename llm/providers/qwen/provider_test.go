package qwen

import "testing"

func TestModels_Alias(t *testing.T) {
	mi, ok := Models().Lookup("qwen-max-latest")
	if !ok || mi.Name != "qwen-max" || mi.Provider != ProviderName {
		t.Fatalf("Lookup(%q)=%+v ok=%v", "qwen-max-latest", mi, ok)
	}
}

func TestNew_Preset(t *testing.T) {
	n := New()
	if n.Provider != ProviderName {
		t.Fatalf("provider=%q", n.Provider)
	}
	if _, ok := n.Models.Lookup("gpt-4o"); ok {
		t.Fatalf("openai models leaked into the qwen preset")
	}
}
