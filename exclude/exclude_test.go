package exclude

import "testing"

func TestSubdomainMatch(t *testing.T) {
	f := New([]string{"example.com"})

	if !f.IsExcluded("example.com") {
		t.Error("example.com should be excluded")
	}
	if !f.IsExcluded("sub.example.com") {
		t.Error("sub.example.com should be excluded by pattern example.com")
	}
	if !f.IsExcluded("a.b.example.com") {
		t.Error("a.b.example.com should be excluded by pattern example.com")
	}
	if f.IsExcluded("example.org") {
		t.Error("example.org should not be excluded")
	}
	if f.IsExcluded("notexample.com") {
		t.Error("notexample.com should not be excluded")
	}
}

func TestOctetPatterns(t *testing.T) {
	f := New([]string{"192.168.*.*"})

	if !f.IsExcluded("192.168.5.9") {
		t.Error("192.168.5.9 should be excluded by 192.168.*.*")
	}
	if !f.IsExcluded("192.168.0.255") {
		t.Error("192.168.0.255 should be excluded by 192.168.*.*")
	}
	if f.IsExcluded("192.167.5.9") {
		t.Error("192.167.5.9 should not be excluded by 192.168.*.*")
	}
}

func TestOctetSegmentCount(t *testing.T) {
	// The octet rule requires an equal segment count; the glob rule does
	// not apply here because the host differs before the wildcards.
	f := New([]string{"10.0.*.*"})
	if f.IsExcluded("10.1.2.3") {
		t.Error("10.1.2.3 should not be excluded by 10.0.*.*")
	}
	if !f.IsExcluded("10.0.2.3") {
		t.Error("10.0.2.3 should be excluded by 10.0.*.*")
	}
}

func TestEmptyHostFailsSafe(t *testing.T) {
	f := New([]string{"example.com"})
	if !f.IsExcluded("") {
		t.Error("empty host should be excluded")
	}
	if !f.IsExcluded("   ") {
		t.Error("blank host should be excluded")
	}

	// Even with no patterns at all, an unparseable host stays out.
	empty := New(nil)
	if !empty.IsExcluded("") {
		t.Error("empty host should be excluded with empty pattern list")
	}
	if empty.IsExcluded("example.com") {
		t.Error("no patterns: nothing else should be excluded")
	}
}

func TestCaseInsensitive(t *testing.T) {
	f := New([]string{"EXAMPLE.com"})
	if !f.IsExcluded("Example.COM") {
		t.Error("matching should ignore case on both sides")
	}
	if !f.IsExcluded("Sub.Example.Com") {
		t.Error("subdomain matching should ignore case")
	}
}

func TestWildcards(t *testing.T) {
	f := New([]string{"reddit-*.com", "ads?.tracker.net"})

	if !f.IsExcluded("reddit-video.com") {
		t.Error("reddit-video.com should match reddit-*.com")
	}
	if !f.IsExcluded("reddit-static.com") {
		t.Error("reddit-static.com should match reddit-*.com")
	}
	if !f.IsExcluded("ads1.tracker.net") {
		t.Error("ads1.tracker.net should match ads?.tracker.net")
	}
	if f.IsExcluded("ads12.tracker.net") {
		t.Error("ads12.tracker.net should not match ads?.tracker.net")
	}
}

func TestMalformedPatternNeverMatches(t *testing.T) {
	f := New([]string{"[invalid"})
	if f.IsExcluded("example.com") {
		t.Error("malformed pattern should not match anything")
	}
}
