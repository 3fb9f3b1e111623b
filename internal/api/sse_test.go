// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"io"
	"strings"
	"testing"

	"github.com/jeranaias/tradedeck/internal/stream"
)

func sseSource(body string) *SSESource {
	return NewSSESource(io.NopCloser(strings.NewReader(body)))
}

func TestSSESourceTaggedData(t *testing.T) {
	src := sseSource("data: {\"event_type\":\"content\",\"data\":\"Hel\"}\n\n" +
		"data: {\"type\":\"reasoning\",\"data\":{\"text\":\"hmm\"}}\n\n")

	first, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if first.Kind != stream.KindContent || first.Text() != "Hel" {
		t.Errorf("first = %s %q", first.Kind, first.Text())
	}

	second, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if second.Kind != stream.KindReasoning || second.Text() != "hmm" {
		t.Errorf("second = %s %q", second.Kind, second.Text())
	}

	if _, err := src.Next(); err != io.EOF {
		t.Errorf("err = %v, want EOF", err)
	}
}

func TestSSESourceEventLineAsTag(t *testing.T) {
	// Untagged payload: the SSE event name carries the kind.
	src := sseSource("event: interrupted\ndata: {\"round\":2}\n\n")

	chunk, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Kind != stream.KindInterrupted || chunk.Round() != 2 {
		t.Errorf("chunk = %s round=%d", chunk.Kind, chunk.Round())
	}
}

func TestSSESourceDoneSentinel(t *testing.T) {
	src := sseSource("data: {\"content\":\"x\"}\n\ndata: [DONE]\n\ndata: {\"content\":\"never\"}\n\n")

	if _, err := src.Next(); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Next(); err != io.EOF {
		t.Errorf("err = %v, want EOF at [DONE]", err)
	}
}

func TestSSESourceSkipsMalformed(t *testing.T) {
	src := sseSource("data: not json at all\n\n" +
		"data: {\"event_type\":\"content\",\"data\":\"ok\"}\n\n")

	chunk, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Text() != "ok" {
		t.Errorf("Text = %q", chunk.Text())
	}
}

func TestSSESourceMultiLineData(t *testing.T) {
	// Multi-line data fields join with newlines per the SSE spec.
	src := sseSource("data: {\"event_type\":\"content\",\n" +
		"data: \"data\":\"joined\"}\n\n")

	chunk, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Text() != "joined" {
		t.Errorf("Text = %q", chunk.Text())
	}
}

func TestSSESourceFinalEventWithoutBlankLine(t *testing.T) {
	src := sseSource("data: {\"event_type\":\"done\",\"data\":{\"content\":\"fin\"}}")

	chunk, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Kind != stream.KindDone || chunk.Text() != "fin" {
		t.Errorf("chunk = %s %q", chunk.Kind, chunk.Text())
	}
	if _, err := src.Next(); err != io.EOF {
		t.Errorf("err = %v, want EOF", err)
	}
}
