package config

import (
	"testing"
)

func TestRuntimeKeyRegistry(t *testing.T) {
	SetRuntime(&RuntimeConfig{
		BackendKeys:  map[string]struct{}{"bk1": {}},
		FrontendKeys: map[string]struct{}{"fk1": {}, "fk2": {}},
		AdminKeys:    map[string]struct{}{"ak1": {}},
	})
	t.Cleanup(func() { SetRuntime(nil) })

	if _, ok := GetBackendKeys()["bk1"]; !ok {
		t.Fatalf("backend key missing: %v", GetBackendKeys())
	}
	if len(GetFrontendKeys()) != 2 {
		t.Fatalf("frontend keys: %v", GetFrontendKeys())
	}
	if _, ok := GetAdminKeys()["ak1"]; !ok {
		t.Fatalf("admin key missing: %v", GetAdminKeys())
	}

	// accessors hand out copies, not the stored maps
	got := GetBackendKeys()
	got["injected"] = struct{}{}
	if _, ok := GetBackendKeys()["injected"]; ok {
		t.Fatalf("registry map leaked to caller")
	}
}

func TestRuntimeKeyRegistryUnset(t *testing.T) {
	SetRuntime(nil)
	if n := len(GetBackendKeys()); n != 0 {
		t.Fatalf("unset registry should yield empty maps, got %d", n)
	}
}

func TestLoadEnvOverridesBuildsKeyMaps(t *testing.T) {
	t.Setenv("RELAYLOG_API_BACKEND_KEYS", "bk1, bk2")
	t.Setenv("RELAYLOG_API_FRONTEND_KEYS", "fk1")
	t.Setenv("RELAYLOG_API_ADMIN_KEYS", "ak1")

	cfg := &Config{}
	rc, envUsed := LoadEnvOverrides(cfg)
	if !envUsed {
		t.Fatalf("env overrides not detected")
	}
	if len(rc.BackendKeys) != 2 || len(rc.FrontendKeys) != 1 || len(rc.AdminKeys) != 1 {
		t.Fatalf("key maps: %+v", rc)
	}
	if _, ok := rc.BackendKeys["bk2"]; !ok {
		t.Fatalf("list parsing dropped a key: %v", rc.BackendKeys)
	}
}
