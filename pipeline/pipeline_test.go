package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToNative(t *testing.T) {
	result, err := Convert(context.Background(), []byte("hello *world*\n"), "t.qmd", TargetNative)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, string(result.Output), `Para [Str "hello",Space,Emph [Str "world"]]`)
}

func TestConvertToJSON(t *testing.T) {
	result, err := Convert(context.Background(), []byte("hello world\n"), "t.qmd", TargetJSON)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, string(result.Output), `"pandoc-api-version"`)
}

func TestConvertToQMDRoundTrips(t *testing.T) {
	src := "hello world\n"
	result, err := Convert(context.Background(), []byte(src), "t.qmd", TargetQMD)
	require.NoError(t, err)
	assert.Equal(t, src, string(result.Output))
}

func TestConvertUnresolvedReferenceIsErrorDiagnostic(t *testing.T) {
	result, err := Convert(context.Background(), []byte("see it[^missing]\n"), "t.qmd", TargetJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
	require.NotEmpty(t, result.Diagnostics)
}

func TestConvertUnknownTargetIsInternalFailure(t *testing.T) {
	_, err := Convert(context.Background(), []byte("x\n"), "t.qmd", Target("bogus"))
	require.Error(t, err)
}
