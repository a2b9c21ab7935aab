package nike

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Code is the stable numeric identifier carried by every error this package returns.
type Code int

// Factory errors.
const (
	CodeInvalidCallbackURL  Code = 102
	CodeUnknownGateway      Code = 103
	CodeInvalidGatewayCall  Code = 104
	CodeGatewayConstruction Code = 105
	CodeMissingClientID     Code = 106
	CodeMissingClientSecret Code = 107
	CodeMissingCallbackURL  Code = 108
	CodeMissingTokenStore   Code = 109
	CodeCredentials         Code = 110
	CodeServiceFactory      Code = 111
	CodeDependencyInjection Code = 112
)

// Authentication errors.
const (
	CodeInvalidAuthorizationURL Code = 201
	CodeTokenRetrieval          Code = 202
	CodeTokenExchange           Code = 203
	CodeTokenClear              Code = 204
	CodeTokenVerification       Code = 205
	CodeTokenLookup             Code = 206
)

// Request pipeline errors.
const (
	CodeTransport     Code = 401
	CodeResponseParse Code = 402
	CodeJSONDecode    Code = 403
)

// Endpoint errors.
const (
	CodeActivityFetch   Code = 602
	CodeActivityAdd     Code = 606
	CodeActivitiesFetch Code = 611
	CodeAggregation     Code = 701
)

// Token storage errors.
const (
	CodeTokenStorageInit Code = 1401
	CodeInvalidBackend   Code = 1402
	CodeTokenPersist     Code = 1403
)

type codeInfo struct {
	text     string
	category goerrors.Category
}

var codeCatalog = map[Code]codeInfo{
	CodeInvalidCallbackURL:  {"NIKE_INVALID_CALLBACK_URL", goerrors.CategoryValidation},
	CodeUnknownGateway:      {"NIKE_UNKNOWN_GATEWAY", goerrors.CategoryNotFound},
	CodeInvalidGatewayCall:  {"NIKE_INVALID_GATEWAY_CALL", goerrors.CategoryBadInput},
	CodeGatewayConstruction: {"NIKE_GATEWAY_CONSTRUCTION", goerrors.CategoryInternal},
	CodeMissingClientID:     {"NIKE_MISSING_CLIENT_ID", goerrors.CategoryBadInput},
	CodeMissingClientSecret: {"NIKE_MISSING_CLIENT_SECRET", goerrors.CategoryBadInput},
	CodeMissingCallbackURL:  {"NIKE_MISSING_CALLBACK_URL", goerrors.CategoryBadInput},
	CodeMissingTokenStore:   {"NIKE_MISSING_TOKEN_STORE", goerrors.CategoryBadInput},
	CodeCredentials:         {"NIKE_CREDENTIALS", goerrors.CategoryValidation},
	CodeServiceFactory:      {"NIKE_SERVICE_FACTORY", goerrors.CategoryInternal},
	CodeDependencyInjection: {"NIKE_DEPENDENCY_INJECTION", goerrors.CategoryInternal},

	CodeInvalidAuthorizationURL: {"NIKE_INVALID_AUTHORIZATION_URL", goerrors.CategoryExternal},
	CodeTokenRetrieval:          {"NIKE_TOKEN_RETRIEVAL", goerrors.CategoryAuth},
	CodeTokenExchange:           {"NIKE_TOKEN_EXCHANGE", goerrors.CategoryAuth},
	CodeTokenClear:              {"NIKE_TOKEN_CLEAR", goerrors.CategoryAuth},
	CodeTokenVerification:       {"NIKE_TOKEN_VERIFICATION", goerrors.CategoryAuth},
	CodeTokenLookup:             {"NIKE_TOKEN_LOOKUP", goerrors.CategoryAuth},

	CodeTransport:     {"NIKE_TRANSPORT", goerrors.CategoryExternal},
	CodeResponseParse: {"NIKE_RESPONSE_PARSE", goerrors.CategoryExternal},
	CodeJSONDecode:    {"NIKE_JSON_DECODE", goerrors.CategoryExternal},

	CodeActivityFetch:   {"NIKE_ACTIVITY_FETCH", goerrors.CategoryOperation},
	CodeActivityAdd:     {"NIKE_ACTIVITY_ADD", goerrors.CategoryOperation},
	CodeActivitiesFetch: {"NIKE_ACTIVITIES_FETCH", goerrors.CategoryOperation},
	CodeAggregation:     {"NIKE_AGGREGATION_FETCH", goerrors.CategoryOperation},

	CodeTokenStorageInit: {"NIKE_TOKEN_STORAGE_INIT", goerrors.CategoryInternal},
	CodeInvalidBackend:   {"NIKE_INVALID_BACKEND", goerrors.CategoryBadInput},
	CodeTokenPersist:     {"NIKE_TOKEN_PERSIST", goerrors.CategoryInternal},
}

// TextCode returns the symbolic name of the code, e.g. NIKE_UNKNOWN_GATEWAY.
func (c Code) TextCode() string {
	if info, ok := codeCatalog[c]; ok {
		return info.text
	}
	return fmt.Sprintf("NIKE_%d", int(c))
}

// Category returns the go-errors category the code belongs to.
func (c Code) Category() goerrors.Category {
	if info, ok := codeCatalog[c]; ok {
		return info.category
	}
	return goerrors.CategoryInternal
}

func newError(code Code, message string) *goerrors.Error {
	return goerrors.New(message, code.Category()).
		WithCode(int(code)).
		WithTextCode(code.TextCode())
}

// wrapError links source as the cause of a new coded error. The source keeps
// its own code and stays reachable through Source.
func wrapError(source error, code Code, message string) *goerrors.Error {
	err := newError(code, message)
	err.Source = source
	return err
}

// CodeOf returns the code of the outermost coded error in err's chain, or 0.
func CodeOf(err error) Code {
	var richErr *goerrors.Error
	if errors.As(err, &richErr) {
		return Code(richErr.Code)
	}
	return 0
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var richErr *goerrors.Error
		if !errors.As(err, &richErr) {
			return false
		}
		if Code(richErr.Code) == code {
			return true
		}
		err = richErr.Source
	}
	return false
}
