package source

import (
	"strings"
	"testing"
)

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"facebook", "https://www.facebook.com/story/1", "Facebook"},
		{"fb short", "https://fb.com/x", "Facebook"},
		{"linkedin", "https://www.linkedin.com/posts/abc", "LinkedIn"},
		{"medium", "https://medium.com/@someone/post", "Medium"},
		{"medium subdomain", "https://blog.medium.com/post", "Medium"},
		{"twitter", "https://twitter.com/user/status/1", "Twitter/X"},
		{"x", "https://x.com/user/status/1", "Twitter/X"},
		{"youtube", "https://www.youtube.com/watch?v=abc", "YouTube"},
		{"youtu.be", "https://youtu.be/abc", "YouTube"},
		{"reddit", "https://old.reddit.com/r/golang", "Reddit"},
		{"instagram", "https://instagram.com/p/abc", "Instagram"},
		{"tiktok", "https://www.tiktok.com/@user/video/1", "TikTok"},
		{"github", "https://github.com/golang/go", "GitHub"},
		{"stackoverflow", "https://stackoverflow.com/questions/1", "Stack Overflow"},
		{"unknown host strips www", "https://www.example.com/a", "example.com"},
		{"unknown host keeps subdomain", "https://blog.example.org/a", "blog.example.org"},
		{"host with port", "http://localhost:8080/x", "localhost"},
		{"lookalike host is not twitter", "https://dropbox.com/s/abc", "dropbox.com"},
		{"empty", "", TextCapture},
		{"garbage", "::not a url::", TextCapture},
		{"no host", "just-some-text", TextCapture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectSource(tt.url)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{"bare link", "https://example.com/a", "https://example.com/a", true},
		{"link inside text", "look at this http://example.com/x?y=1 later", "http://example.com/x?y=1", true},
		{"first of many", "https://a.com and https://b.com", "https://a.com", true},
		{"no link", "remember to buy milk", "", false},
		{"scheme required", "www.example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractURL(tt.text)
			if found != tt.found {
				t.Errorf("Expected found=%v, got %v", tt.found, found)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestTextTitle(t *testing.T) {
	if got := TextTitle("short note"); got != "short note" {
		t.Errorf("Expected 'short note', got %q", got)
	}

	long := strings.Repeat("a", 150)
	if got := TextTitle(long); len(got) != 100 {
		t.Errorf("Expected 100 characters, got %d", len(got))
	}

	cyrillic := strings.Repeat("ж", 120)
	got := TextTitle(cyrillic)
	if n := len([]rune(got)); n != 100 {
		t.Errorf("Expected 100 runes, got %d", n)
	}
}
