// ABOUTME: Tests for the TTL cache
// ABOUTME: Validates expiration, overwrite, and explicit clearing

package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(1 * time.Second)
	defer c.Close()

	c.Set("profile:resnet18_e5", 3.2)

	val, found := c.Get("profile:resnet18_e5")
	if !found {
		t.Error("Expected to find profile:resnet18_e5")
	}
	if val != 3.2 {
		t.Errorf("Expected 3.2, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")

	// Should exist immediately
	_, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1 immediately")
	}

	// Wait for expiration
	time.Sleep(80 * time.Millisecond)

	_, found = c.Get("key1")
	if found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Close()

	c.SetWithTTL("key1", "value1", 1*time.Second)

	time.Sleep(50 * time.Millisecond)

	// Custom TTL outlives the default
	_, found := c.Get("key1")
	if !found {
		t.Error("Expected key1 to survive past the default TTL")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(1 * time.Second)
	defer c.Close()

	c.Set("key1", "value1")
	c.Clear("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to be cleared")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := New(1 * time.Second)
	defer c.Close()

	c.Set("key1", "old")
	c.Set("key1", "new")

	val, _ := c.Get("key1")
	if val != "new" {
		t.Errorf("Expected new, got %v", val)
	}
}
