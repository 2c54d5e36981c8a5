package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

type fakeParameterAPI struct {
	values map[string]string
	err    error
	calls  []ssm.GetParameterInput
}

func (f *fakeParameterAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls = append(f.calls, *in)
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.ToString(in.Name)]
	if !ok {
		return nil, &types.ParameterNotFound{Message: aws.String("not found")}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestSSMResolver_Success(t *testing.T) {
	api := &fakeParameterAPI{values: map[string]string{"/test/param": "test-value"}}
	rec := logging.NewRecorder()
	resolver := NewSSMResolver(api, rec)

	value, err := resolver.Resolve(context.Background(), hellodb.SecretReference{Name: "/test/param", WithDecryption: true})
	require.NoError(t, err)
	assert.Equal(t, "test-value", value)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "/test/param", aws.ToString(api.calls[0].Name))
	assert.True(t, aws.ToBool(api.calls[0].WithDecryption))
	assert.True(t, rec.Contains("Fetched parameter: /test/param"))
	assert.False(t, rec.Contains("test-value"), "secret value must never be logged")
}

func TestSSMResolver_DecryptionDefaultsToFalse(t *testing.T) {
	api := &fakeParameterAPI{values: map[string]string{"/u": "user"}}
	resolver := NewSSMResolver(api, logging.NewNullLogger())

	_, err := resolver.Resolve(context.Background(), hellodb.SecretReference{Name: "/u"})
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	require.NotNil(t, api.calls[0].WithDecryption)
	assert.False(t, *api.calls[0].WithDecryption)
}

func TestSSMResolver_NotFoundContainsName(t *testing.T) {
	names := []string{"/missing/param", "plain-name", "/app/prod/db/password"}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			rec := logging.NewRecorder()
			resolver := NewSSMResolver(&fakeParameterAPI{}, rec)

			_, err := resolver.Resolve(context.Background(), hellodb.SecretReference{Name: name})
			require.Error(t, err)

			var secretErr *hellodb.SecretError
			require.ErrorAs(t, err, &secretErr)
			assert.Equal(t, hellodb.SecretNotFound, secretErr.Kind)
			assert.Contains(t, err.Error(), name)
			assert.Equal(t, "Secret '"+name+"' does not exist", err.Error())
			assert.True(t, rec.Contains("Failed to fetch parameter "+name))
		})
	}
}

func TestSSMResolver_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind hellodb.SecretErrorKind
		wantMsg  string
	}{
		{
			name:     "modeled not found",
			err:      &types.ParameterNotFound{Message: aws.String("nope")},
			wantKind: hellodb.SecretNotFound,
			wantMsg:  "Secret '/p' does not exist",
		},
		{
			name:     "generic not found code",
			err:      &smithy.GenericAPIError{Code: "ParameterNotFound", Message: "nope"},
			wantKind: hellodb.SecretNotFound,
			wantMsg:  "Secret '/p' does not exist",
		},
		{
			name:     "access denied",
			err:      &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized to perform ssm:GetParameter"},
			wantKind: hellodb.SecretAccessDenied,
			wantMsg:  "Access denied to secret '/p'",
		},
		{
			name:     "legacy access denied code",
			err:      &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"},
			wantKind: hellodb.SecretAccessDenied,
			wantMsg:  "Access denied to secret '/p'",
		},
		{
			name:     "modeled invalid key",
			err:      &types.InvalidKeyId{Message: aws.String("bad key")},
			wantKind: hellodb.SecretInvalidKey,
			wantMsg:  "Invalid KMS key for secret '/p'",
		},
		{
			name:     "kms access denied",
			err:      &smithy.GenericAPIError{Code: "KMSAccessDeniedException", Message: "kms"},
			wantKind: hellodb.SecretInvalidKey,
			wantMsg:  "Invalid KMS key for secret '/p'",
		},
		{
			name:     "throttling",
			err:      &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"},
			wantKind: hellodb.SecretOther,
			wantMsg:  "Failed to retrieve secret '/p': Rate exceeded",
		},
		{
			name:     "transport error",
			err:      errors.New("dial tcp: i/o timeout"),
			wantKind: hellodb.SecretOther,
			wantMsg:  "Failed to retrieve secret '/p': dial tcp: i/o timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewSSMResolver(&fakeParameterAPI{err: tt.err}, logging.NewNullLogger())

			_, err := resolver.Resolve(context.Background(), hellodb.SecretReference{Name: "/p"})

			var secretErr *hellodb.SecretError
			require.ErrorAs(t, err, &secretErr)
			assert.Equal(t, tt.wantKind, secretErr.Kind)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.ErrorIs(t, err, hellodb.ErrSecretResolution)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSSMResolver_EmptyName(t *testing.T) {
	api := &fakeParameterAPI{}
	resolver := NewSSMResolver(api, logging.NewNullLogger())

	_, err := resolver.Resolve(context.Background(), hellodb.SecretReference{})

	var secretErr *hellodb.SecretError
	require.ErrorAs(t, err, &secretErr)
	assert.Equal(t, hellodb.SecretOther, secretErr.Kind)
	assert.Equal(t, "secret name is required", err.Error())
	assert.Empty(t, api.calls, "store must not be called for an empty name")
}

type nilValueAPI struct{}

func (nilValueAPI) GetParameter(context.Context, *ssm.GetParameterInput, ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{}}, nil
}

func TestSSMResolver_EmptyResponse(t *testing.T) {
	resolver := NewSSMResolver(nilValueAPI{}, logging.NewNullLogger())

	_, err := resolver.Resolve(context.Background(), hellodb.SecretReference{Name: "/p"})

	var secretErr *hellodb.SecretError
	require.ErrorAs(t, err, &secretErr)
	assert.Equal(t, hellodb.SecretOther, secretErr.Kind)
	assert.Contains(t, err.Error(), "no value")
}

func TestNewSSMResolver_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewSSMResolver(nil, logging.NewNullLogger()) })
	assert.Panics(t, func() { NewSSMResolver(&fakeParameterAPI{}, nil) })
}

func TestLoadAWSConfig_RequiresRegion(t *testing.T) {
	_, err := LoadAWSConfig(context.Background(), "", 3, 0)
	assert.Error(t, err)
}

func TestLoadAWSConfig_AppliesRetryBound(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := LoadAWSConfig(context.Background(), "eu-west-1", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)

	client := NewSSMClient(cfg)
	assert.NotNil(t, client)
}
