package host

import (
	"bytes"
	"testing"
)

func TestUIConfig_UpdateConfigMerges(t *testing.T) {
	c := NewUIConfig()

	err := c.UpdateConfig(ConfigPatch{
		"componentProps": map[string]any{
			"AgentDesktopView": map[string]any{"splitterOrientation": "vertical"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	err = c.UpdateConfig(ConfigPatch{
		"componentProps": ConfigPatch{
			"AgentDesktopView": ConfigPatch{"showPanel2": true},
		},
	})
	if err != nil {
		t.Fatalf("UpdateConfig failed: %v", err)
	}

	if !c.Bool(ShowPanel2Path) {
		t.Error("Expected showPanel2 to be true")
	}
	if got := c.Get("componentProps.AgentDesktopView.splitterOrientation").String(); got != "vertical" {
		t.Errorf("Expected sibling key to survive merge, got %q", got)
	}
}

func TestUIConfig_ReapplyIsNoop(t *testing.T) {
	c := NewUIConfig()
	patch := ConfigPatch{"componentProps": map[string]any{
		"AgentDesktopView": map[string]any{"showPanel2": false},
	}}

	if err := c.UpdateConfig(patch); err != nil {
		t.Fatal(err)
	}
	first := c.JSON()
	if err := c.UpdateConfig(patch); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, c.JSON()) {
		t.Errorf("Document changed on reapply: %s vs %s", first, c.JSON())
	}
}

func TestUIConfig_DottedKeysAreEscaped(t *testing.T) {
	c := NewUIConfig()
	if err := c.UpdateConfig(ConfigPatch{"theme.name": "dark"}); err != nil {
		t.Fatal(err)
	}
	if got := c.Get(`theme\.name`).String(); got != "dark" {
		t.Errorf("Expected dotted key stored literally, got %q in %s", got, c.JSON())
	}
}

func TestUIConfig_MissingFlagReadsFalse(t *testing.T) {
	if NewUIConfig().Bool(ShowPanel2Path) {
		t.Error("Missing flag should read as false")
	}
}
