// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *E
		kind Kind
	}{
		{name: "auth", err: New(KindAuth, "not logged in"), want: Auth, kind: KindAuth},
		{name: "validation", err: New(KindValidation, "select a file"), want: Validation, kind: KindValidation},
		{name: "wrapped transport", err: fmt.Errorf("load page: %w", Status(503, "503 Service Unavailable")), want: Transport, kind: KindTransport},
		{name: "decode with cause", err: Wrap(KindDecode, "bad body", stderrors.New("eof")), want: Decode, kind: KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.want))
			assert.Equal(t, tt.kind, KindOf(tt.err))
			for _, other := range []*E{Auth, Validation, Transport, Decode} {
				if other != tt.want {
					assert.False(t, stderrors.Is(tt.err, other), "unexpected match with %s", other.Kind)
				}
			}
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "Invalid JSON format", Message(fmt.Errorf("submit: %w", New(KindValidation, "Invalid JSON format"))))
	assert.Equal(t, "plain", Message(stderrors.New("plain")))
	assert.Equal(t, "bad body: eof", Wrap(KindDecode, "bad body", stderrors.New("eof")).Error())
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
}
