package digest

import (
	"context"
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRegistry starts an in-memory registry and returns its host
func setupTestRegistry(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(registry.New())
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)

	return u.Host
}

func TestRegistrySourceDigest(t *testing.T) {
	host := setupTestRegistry(t)
	imageRef := host + "/rh-osbs/mtv-operator-bundle:v2.9.0"

	img, err := random.Image(1024, 1)
	require.NoError(t, err)

	ref, err := name.ParseReference(imageRef, name.Insecure)
	require.NoError(t, err)
	require.NoError(t, remote.Write(ref, img))

	want, err := img.Digest()
	require.NoError(t, err)

	source := NewRegistrySource(RegistryOptions{Insecure: true}, nil)
	got, err := source.Digest(context.Background(), imageRef)
	require.NoError(t, err)

	assert.Equal(t, want.String(), got)
}

func TestRegistrySourceMissingTagIsEmpty(t *testing.T) {
	host := setupTestRegistry(t)

	source := NewRegistrySource(RegistryOptions{Insecure: true}, nil)
	got, err := source.Digest(context.Background(), host+"/rh-osbs/missing:v1")
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestRegistrySourceBadReferenceIsEmpty(t *testing.T) {
	source := NewRegistrySource(RegistryOptions{}, nil)
	got, err := source.Digest(context.Background(), "UPPER/Case:bad tag")
	require.NoError(t, err)

	assert.Empty(t, got)
}

func TestClassifyRegistryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RegistryErrorType
	}{
		{"401", &transport.Error{StatusCode: 401}, ErrTypeAuthentication},
		{"403", &transport.Error{StatusCode: 403}, ErrTypePermission},
		{"404", &transport.Error{StatusCode: 404}, ErrTypeNotFound},
		{"429", &transport.Error{StatusCode: 429}, ErrTypeNetwork},
		{"503", &transport.Error{StatusCode: 503}, ErrTypeNetwork},
		{"418", &transport.Error{StatusCode: 418}, ErrTypeUnknown},
		{"unauthorized message", errors.New("UNAUTHORIZED: unauthorized to access repository"), ErrTypeAuthentication},
		{"manifest unknown message", errors.New("MANIFEST_UNKNOWN: manifest unknown"), ErrTypeNotFound},
		{"anything else", errors.New("boom"), ErrTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyRegistryError(tt.err, "registry.io/x:v1")

			var regErr *RegistryError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, tt.want, regErr.Type)
			assert.Equal(t, "registry.io/x:v1", regErr.Reference)
		})
	}

	assert.Nil(t, ClassifyRegistryError(nil, "x"))
}

func TestClassifyRegistryErrorBadName(t *testing.T) {
	_, parseErr := name.ParseReference("UPPER/Case:bad tag")
	require.Error(t, parseErr)

	err := ClassifyRegistryError(parseErr, "UPPER/Case:bad tag")

	var regErr *RegistryError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, ErrTypeInvalidRef, regErr.Type)
}
