// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink(t *testing.T) {
	s := NewMemory()

	got, err := s.Read()
	require.NoError(t, err)
	assert.Empty(t, got, "fresh sink should be empty")

	require.NoError(t, s.Write("fmt.Println(1)"))
	got, err = s.Read()
	require.NoError(t, err)
	assert.Equal(t, "fmt.Println(1)", got)

	// Write replaces, never appends.
	require.NoError(t, s.Write("second"))
	got, _ = s.Read()
	assert.Equal(t, "second", got)
}

func TestTextSinkInterface(t *testing.T) {
	// Both implementations satisfy the capability.
	var _ TextSink = NewMemory()
	var _ TextSink = NewClipboard()
}
