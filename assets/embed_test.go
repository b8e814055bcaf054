package assets

import "testing"

func TestDefaultManifest(t *testing.T) {
	m, err := DefaultManifest()
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	want := map[string]string{"saveworld": "fn_saveworld.png", "tier4": "fn_t4.png", "attack": "fn_attack.png"}
	got := map[string]string{}
	for _, d := range m.Templates {
		got[d.Name] = d.Path
	}
	for name, path := range want {
		if got[name] != path {
			t.Fatalf("template %s: path %q, want %q", name, got[name], path)
		}
	}
	if len(m.Templates) != 16 {
		t.Fatalf("expected 16 templates, got %d", len(m.Templates))
	}
}
