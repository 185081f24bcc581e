package cache

import (
	"testing"

	"github.com/finsift/finsift/models"
)

func TestKeyVariesWithOptions(t *testing.T) {
	base := Key("https://a.example/products/x", "", true)
	if Key("https://a.example/products/x", "", true) != base {
		t.Error("key not deterministic")
	}
	if Key("https://a.example/products/y", "", true) == base {
		t.Error("key ignores URL")
	}
	if Key("https://a.example/products/x", "#offer", true) == base {
		t.Error("key ignores selector")
	}
	if Key("https://a.example/products/x", "", false) == base {
		t.Error("key ignores redaction flag")
	}
}

func TestGetRespectsMaxAge(t *testing.T) {
	c := New(10)
	resp := &models.ExtractResponse{Success: true}
	c.Set("k", resp)

	if _, hit := c.Get("k", 0); hit {
		t.Error("maxAge 0 must bypass the cache")
	}
	got, hit := c.Get("k", 60_000)
	if !hit || got != resp {
		t.Error("expected fresh hit")
	}
	if _, hit := c.Get("missing", 60_000); hit {
		t.Error("unexpected hit for absent key")
	}
}

func TestSetEvictsAtCapacity(t *testing.T) {
	c := New(2)
	c.Set("a", &models.ExtractResponse{})
	c.Set("b", &models.ExtractResponse{})
	c.Set("c", &models.ExtractResponse{})

	if len(c.store) != 2 {
		t.Errorf("store size = %d, want 2", len(c.store))
	}
}
