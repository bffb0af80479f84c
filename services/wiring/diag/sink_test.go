// Copyright (C) 2025 Wirecheck Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package diag

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestCollector(t *testing.T) {
	t.Run("preserves report order", func(t *testing.T) {
		collector := NewCollector()
		collector.Report("first")
		collector.Report("second")

		messages := collector.Messages()
		if len(messages) != 2 || messages[0] != "first" || messages[1] != "second" {
			t.Errorf("unexpected messages %v", messages)
		}
		if collector.Len() != 2 {
			t.Errorf("unexpected length %d", collector.Len())
		}
	})

	t.Run("messages returns a copy", func(t *testing.T) {
		collector := NewCollector()
		collector.Report("original")

		messages := collector.Messages()
		messages[0] = "mutated"
		if collector.Messages()[0] != "original" {
			t.Error("Messages must not expose internal state")
		}
	})

	t.Run("concurrent reporting", func(t *testing.T) {
		collector := NewCollector()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				collector.Report("message")
			}()
		}
		wg.Wait()
		if collector.Len() != 50 {
			t.Errorf("expected 50 messages, got %d", collector.Len())
		}
	})
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := &SlogSink{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	sink.Report("no implementation found for com.shop.Gateway")

	if !strings.Contains(buf.String(), "no implementation found") {
		t.Errorf("diagnostic not logged: %s", buf.String())
	}
}

func TestTee(t *testing.T) {
	first := NewCollector()
	second := NewCollector()

	Tee{first, second}.Report("shared")
	if first.Len() != 1 || second.Len() != 1 {
		t.Errorf("expected both sinks to receive the message, got %d and %d", first.Len(), second.Len())
	}
}
