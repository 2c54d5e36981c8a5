package secrets

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/vvka-141/hellodb/internal/logging"
	"github.com/vvka-141/hellodb/pkg/hellodb"
)

// ParameterAPI is the subset of *ssm.Client the resolver needs.
type ParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMResolver implements hellodb.SecretResolver on top of Parameter Store.
type SSMResolver struct {
	client ParameterAPI
	logger hellodb.Logger
}

// NewSSMResolver creates a resolver. Panics if client or logger is nil.
func NewSSMResolver(client ParameterAPI, logger hellodb.Logger) *SSMResolver {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SSMResolver{client: client, logger: logger}
}

// Resolve fetches the plaintext value of ref.
// Every failure is returned as a *hellodb.SecretError.
func (r *SSMResolver) Resolve(ctx context.Context, ref hellodb.SecretReference) (string, error) {
	if ref.Name == "" {
		return "", hellodb.NewSecretError(hellodb.SecretOther, "", errors.New("secret name is required"))
	}

	logger := logging.FromContext(ctx, r.logger)
	logger.Verbose("Fetching parameter: %s (decrypt=%t)", ref.Name, ref.WithDecryption)

	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(ref.Name),
		WithDecryption: aws.Bool(ref.WithDecryption),
	})
	if err != nil {
		secretErr := classify(ref.Name, err)
		logger.Error("Failed to fetch parameter %s: kind=%s code=%s message=%s",
			ref.Name, secretErr.Kind, errorCode(err), errorMessage(err))
		return "", secretErr
	}

	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		logger.Error("Failed to fetch parameter %s: empty response", ref.Name)
		return "", hellodb.NewSecretError(hellodb.SecretOther, ref.Name, errors.New("parameter store returned no value"))
	}

	logger.Info("Fetched parameter: %s", ref.Name)
	return *out.Parameter.Value, nil
}

// classify maps a Parameter Store error onto a SecretError kind. Modeled
// exceptions are matched first, then the raw API error code.
func classify(name string, err error) *hellodb.SecretError {
	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return hellodb.NewSecretError(hellodb.SecretNotFound, name, err)
	}
	var invalidKey *types.InvalidKeyId
	if errors.As(err, &invalidKey) {
		return hellodb.NewSecretError(hellodb.SecretInvalidKey, name, err)
	}

	switch errorCode(err) {
	case "ParameterNotFound":
		return hellodb.NewSecretError(hellodb.SecretNotFound, name, err)
	case "AccessDenied", "AccessDeniedException", "UnauthorizedOperation":
		return hellodb.NewSecretError(hellodb.SecretAccessDenied, name, err)
	case "InvalidKeyId", "KMSAccessDeniedException", "KMSDisabledException", "KMSInvalidStateException":
		return hellodb.NewSecretError(hellodb.SecretInvalidKey, name, err)
	}

	return hellodb.NewSecretError(hellodb.SecretOther, name, messageError{err})
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func errorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}

// messageError presents the API's own message instead of the SDK's
// operation-prefixed error string, while keeping the chain intact.
type messageError struct {
	err error
}

func (e messageError) Error() string { return errorMessage(e.err) }
func (e messageError) Unwrap() error { return e.err }

var _ hellodb.SecretResolver = (*SSMResolver)(nil)

