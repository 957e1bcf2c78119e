package responses

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

// APIError is the wire shape of a failure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

const formatParam = "format"

// WriteResult serializes payload as JSON or, when format=csv is requested,
// as a flattened CSV. Aggregate payloads serialize directly; the envelope
// fields live on the result structs themselves.
func WriteResult(w http.ResponseWriter, r *http.Request, payload any) {
	if strings.EqualFold(r.URL.Query().Get(formatParam), "csv") {
		writeCSV(w, payload)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// WriteNoContent signals a valid-but-empty result.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps an error to its wire-level representation. NoContent gets
// a bare 204; everything else gets the error envelope with the public
// message for codes that hide internals.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	if typed.Code() == pkgerrors.CodeNoContent {
		WriteNoContent(w)
		return
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeReferenceNotFound:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil && typed.Code() != pkgerrors.CodeValidation {
		logg.Error(ctx, "request.error", err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}

// writeCSV flattens the payload to one header row plus one data row, keeping
// the same field set as the JSON form. Nested lists serialize as an embedded
// JSON string within a single cell so the envelope shape survives.
func writeCSV(w http.ResponseWriter, payload any) {
	header, row, err := flatten(payload)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{Error: APIError{
			Code:    string(pkgerrors.CodeInternal),
			Message: "csv serialization failed",
		}})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(header)
	_ = cw.Write(row)
	cw.Flush()
}

// flatten walks the payload's exported fields in declaration order, using
// json tags for column names.
func flatten(payload any) (header []string, row []string, err error) {
	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("nil payload")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("csv payload must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty := jsonName(field)
		if name == "-" {
			continue
		}

		value := v.Field(i)
		if omitEmpty && value.IsZero() {
			continue
		}

		cell, err := cellValue(value)
		if err != nil {
			return nil, nil, err
		}
		header = append(header, name)
		row = append(row, cell)
	}
	return header, row, nil
}

func jsonName(field reflect.StructField) (name string, omitEmpty bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

func cellValue(v reflect.Value) (string, error) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return fmt.Sprintf("%t", v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", v.Float()), nil
	default:
		raw, err := json.Marshal(v.Interface())
		if err != nil {
			return "", fmt.Errorf("marshaling csv cell: %w", err)
		}
		return string(raw), nil
	}
}
