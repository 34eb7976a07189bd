package format

import (
	"strings"
	"testing"
	"time"

	"github.com/chanwatch/sidecar/internal/session"
)

func TestBuildChannelWatchingBody(t *testing.T) {
	n := Build("Channels DVR - Watching TV", Fields{
		ChannelName:   "ABC",
		ChannelNumber: "7",
		Device:        "LivingRoom",
		IP:            "192.168.1.10",
		Source:        "Primary",
	}, DisplayOptions{
		ChannelName: true, ChannelNumber: true, Device: true, Source: true, IP: true,
	}, "http://x/logo.png")

	if n.Title != "Channels DVR - Watching TV" {
		t.Fatalf("unexpected title: %q", n.Title)
	}
	for _, want := range []string{"ABC", "Channel: 7", "Device: LivingRoom", "Device IP: 192.168.1.10", "Source: Primary"} {
		if !strings.Contains(n.Body, want) {
			t.Fatalf("body missing %q: %q", want, n.Body)
		}
	}
	if n.ImageURL != "http://x/logo.png" {
		t.Fatalf("unexpected image: %q", n.ImageURL)
	}
}

func TestBuildOmitsDisabledFields(t *testing.T) {
	n := Build("t", Fields{ChannelName: "ABC", Device: "Foo"}, DisplayOptions{ChannelName: true}, "")
	if strings.Contains(n.Body, "Foo") {
		t.Fatalf("expected Device to be omitted, got %q", n.Body)
	}
}

func TestTotalStreamsOnlyWithSource(t *testing.T) {
	n := Build("t", Fields{Source: "Primary", TotalStreams: 3}, DisplayOptions{Source: true}, "")
	if !strings.Contains(n.Body, "Total Streams: 3") {
		t.Fatalf("expected total streams line, got %q", n.Body)
	}
	n2 := Build("t", Fields{TotalStreams: 3}, DisplayOptions{Source: true}, "")
	if strings.Contains(n2.Body, "Total Streams") {
		t.Fatalf("expected no total streams line without source, got %q", n2.Body)
	}
}

func TestShouldSendNotificationCooldown(t *testing.T) {
	s := session.New()
	if !ShouldSendNotification(s, "k", time.Second) {
		t.Fatal("expected first send to be allowed")
	}
	s.RecordNotification("k")
	if ShouldSendNotification(s, "k", time.Minute) {
		t.Fatal("expected send to be gated within cooldown")
	}
}

func TestTruncateCast(t *testing.T) {
	if got := TruncateCast([]string{"A", "B"}, 3); got != "A, B" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := TruncateCast([]string{"A", "B", "C", "D"}, 3); got != "A, B, C, …" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := TruncateCast(nil, 3); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
