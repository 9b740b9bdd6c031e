package ux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/felixgeelhaar/releng/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	assert.Nil(t, NewErrorWithSuggestion(nil, "anything"))

	err := NewErrorWithSuggestion(errors.New("test error"), "do this")
	assert.Equal(t, "test error\n\nSuggestion: do this", err.Error())

	err = NewErrorWithSuggestion(errors.New("test error"), "")
	assert.Equal(t, "test error", err.Error())
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		suggestion string
	}{
		{"permission denied", errors.New("open scripts/iib.sh: permission denied"), "readable"},
		{"certificate", errors.New("x509: certificate signed by unknown authority"), "--insecure"},
		{"network", errors.New("dial tcp: lookup registry.example: no such host"), "network connection"},
		{"auth", errors.New("GET https://quay.io/v2/: unauthorized"), "Log in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(tt.err)

			var withSuggestion *ErrorWithSuggestion
			require.True(t, errors.As(enhanced, &withSuggestion))
			assert.Contains(t, withSuggestion.Suggestion, tt.suggestion)
			assert.ErrorIs(t, enhanced, tt.err)
		})
	}
}

func TestEnhanceErrorLeavesOthers(t *testing.T) {
	assert.Nil(t, EnhanceError(nil))

	plain := errors.New("something else")
	assert.Same(t, plain, EnhanceError(plain))

	coded := relerrors.NewProcessLaunchError([]string{"bash"}, errors.New("permission denied"))
	assert.Same(t, coded, EnhanceError(coded))
}
