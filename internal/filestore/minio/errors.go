package minio

import (
	"context"
	"errors"
	"net/http"

	miniogo "github.com/minio/minio-go/v7"

	"github.com/koustreak/typegen/internal/errs"
)

// codeKinds classifies S3 error codes that matter when reading or replacing
// a single output object. Codes are checked before the HTTP status because
// some gateways answer with a generic status.
var codeKinds = map[string]errs.ErrKind{
	"NoSuchBucket": errs.ErrKindNotFound,
	"NoSuchKey":    errs.ErrKindNotFound,

	"AccessDenied":          errs.ErrKindPermissionDenied,
	"AllAccessDisabled":     errs.ErrKindPermissionDenied,
	"InvalidAccessKeyId":    errs.ErrKindPermissionDenied,
	"SignatureDoesNotMatch": errs.ErrKindPermissionDenied,
	"ExpiredToken":          errs.ErrKindPermissionDenied,

	"InvalidBucketName": errs.ErrKindInvalidInput,
	"InvalidObjectName": errs.ErrKindInvalidInput,
	"KeyTooLongError":   errs.ErrKindInvalidInput,
	"EntityTooLarge":    errs.ErrKindInvalidInput,

	"RequestTimeout": errs.ErrKindTimeout,
	"SlowDown":       errs.ErrKindTimeout,

	"XMinioStorageFull": errs.ErrKindQueryFailed,
	"InternalError":     errs.ErrKindQueryFailed,
}

// mapError translates a MinIO SDK error into a *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var resp miniogo.ErrorResponse
	if !errors.As(err, &resp) {
		// no S3 response at all: DNS, TLS, refused connection
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	if kind, ok := codeKinds[resp.Code]; ok {
		return errs.Wrap(kind, msg, err)
	}
	return errs.Wrap(statusKind(resp.StatusCode), msg, err)
}

func statusKind(status int) errs.ErrKind {
	switch {
	case status == http.StatusNotFound:
		return errs.ErrKindNotFound
	case status == http.StatusForbidden, status == http.StatusUnauthorized:
		return errs.ErrKindPermissionDenied
	case status == http.StatusBadRequest:
		return errs.ErrKindInvalidInput
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return errs.ErrKindTimeout
	case status >= 500:
		return errs.ErrKindConnectionFailed
	}
	return errs.ErrKindQueryFailed
}
