package generate

import (
	"reflect"
	"testing"
	"time"
)

func TestCandidateCacheGetSet(t *testing.T) {
	c := NewCandidateCache(time.Minute, 8)
	defer c.Close()

	if got := c.Get("आज"); got != nil {
		t.Errorf("expected miss, got %q", got)
	}
	c.Set("आज", []string{"मौसम", "रात"})
	if got := c.Get("आज"); !reflect.DeepEqual(got, []string{"मौसम", "रात"}) {
		t.Errorf("unexpected cached value %q", got)
	}
}

func TestCandidateCacheSkipsEmpty(t *testing.T) {
	c := NewCandidateCache(time.Minute, 8)
	defer c.Close()

	c.Set("आज", nil)
	c.Set("कल", []string{})
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCandidateCacheCapacity(t *testing.T) {
	c := NewCandidateCache(time.Minute, 2)
	defer c.Close()

	c.Set("a", []string{"x"})
	c.Set("b", []string{"y"})
	c.Set("c", []string{"z"})
	if c.Len() != 2 {
		t.Errorf("expected capacity-bounded cache of 2, got %d", c.Len())
	}
}

func TestCandidateCacheExpires(t *testing.T) {
	c := NewCandidateCache(20*time.Millisecond, 8)
	defer c.Close()

	c.Set("आज", []string{"मौसम"})
	time.Sleep(50 * time.Millisecond)
	if got := c.Get("आज"); got != nil {
		t.Errorf("expected expired entry, got %q", got)
	}
}
