package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation  Kind = "VALIDATION_ERROR"
	KindConstraint  Kind = "CONSTRAINT_VIOLATION"
	KindNotFound    Kind = "NOT_FOUND"
	KindNoData      Kind = "NO_DATA"
	KindStoreClosed Kind = "STORE_CLOSED"
	KindIO          Kind = "IO_FAILURE"
	KindInternal    Kind = "INTERNAL_ERROR"
)

// Metadata describes how a failure kind is presented to API clients.
type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	ShowDetails   bool
}

var metadataByKind = map[Kind]Metadata{
	KindValidation: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "Kode barang dan nama barang wajib diisi",
		ShowDetails:   true,
	},
	KindConstraint: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "Kode barang sudah digunakan",
	},
	KindNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "Data tidak ditemukan",
	},
	KindNoData: {
		HTTPStatus:    http.StatusUnprocessableEntity,
		PublicMessage: "Tidak ada data untuk diekspor",
	},
	KindStoreClosed: {
		HTTPStatus:    http.StatusServiceUnavailable,
		PublicMessage: "Database tidak tersedia",
	},
	KindIO: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "Terjadi kesalahan saat mengakses penyimpanan",
	},
	KindInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "Internal Server Error",
	},
}

func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

// Error is the typed failure surfaced by the store and the export pipeline.
// Two errors compare equal under errors.Is when their kinds match.
type Error struct {
	kind    Kind
	message string
	details any
	cause   error
}

var (
	ErrValidation  = New(KindValidation, "validation failed")
	ErrConstraint  = New(KindConstraint, "constraint violation")
	ErrNotFound    = New(KindNotFound, "not found")
	ErrNoData      = New(KindNoData, "no data to export")
	ErrStoreClosed = New(KindStoreClosed, "store is closed")
	ErrIO          = New(KindIO, "io failure")
)

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{kind: kind, message: message, cause: err}
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.details = details
	return &cp
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.kind == t.kind
}

// KindOf reports the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
